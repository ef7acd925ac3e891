// provider.go --  This file is part of goFD project.
// Mirzaeva Irina, 2024
//
//	goFD is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------

package orbital

import (
	"fmt"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"go.uber.org/zap"
)

// Orbital is one atomic orbital sampled on the local block of a grid.
type Orbital struct {
	Name   string
	L      int
	Values []float64 // unpadded local block, z fastest
	// Weight is occ/(2l+1) times the number of atoms of the species.
	Weight float64
}

// Provider supplies the orbitals a stencil is calibrated on.
type Provider interface {
	Orbitals(topo *grid.Topology) ([]Orbital, error)
}

// Gaussian provides the occupied STO-3G orbitals of every species of a
// molecule, each centred in the middle of the cell.
type Gaussian struct {
	Atoms  []Atom
	logger *zap.Logger
}

type Option func(*Gaussian)

func WithLogger(l *zap.Logger) Option {
	return func(g *Gaussian) {
		if l != nil {
			g.logger = l
		}
	}
}

func NewGaussian(atoms []Atom, opts ...Option) *Gaussian {
	g := &Gaussian{Atoms: atoms, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Species returns the distinct symbols in order of first appearance and the
// number of atoms of each.
func (g *Gaussian) Species() ([]string, map[string]int) {
	var order []string
	count := make(map[string]int)
	for _, a := range g.Atoms {
		s := a.Symbol()
		if count[s] == 0 {
			order = append(order, s)
		}
		count[s]++
	}
	return order, count
}

// Functions returns the contracted Gaussians Orbitals samples, with their
// names, angular momenta and weights.
func (g *Gaussian) Functions(topo *grid.Topology) ([]AO, []Orbital, error) {
	if len(g.Atoms) == 0 {
		return nil, nil, ErrNoAtoms
	}
	centre := topo.Basis().ToCartesian([3]float64{0.5, 0.5, 0.5})
	species, count := g.Species()

	var aos []AO
	var meta []Orbital
	for _, s := range species {
		shells, err := STO3G(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", err, s)
		}
		for _, sh := range shells {
			if sh.Occ <= 0 {
				continue
			}
			w := sh.Occ / float64(2*sh.L+1) * float64(count[s])
			for _, l := range sh.Cartesians() {
				aos = append(aos, AO{PGs: sh.PGs, Coords: centre, L: l})
				meta = append(meta, Orbital{Name: componentName(s, sh, l), L: sh.L, Weight: w})
			}
		}
	}
	return aos, meta, nil
}

// Orbitals samples every occupied orbital on the local block of topo.
func (g *Gaussian) Orbitals(topo *grid.Topology) ([]Orbital, error) {
	aos, res, err := g.Functions(topo)
	if err != nil {
		return nil, err
	}
	for i, ao := range aos {
		res[i].Values, err = ao.Sample(topo)
		if err != nil {
			return nil, err
		}
		g.logger.Debug("sampled orbital", zap.String("name", res[i].Name), zap.Float64("weight", res[i].Weight))
	}
	return res, nil
}

func componentName(symbol string, sh Shell, l [3]int) string {
	if sh.L == 0 {
		return symbol + " " + sh.Name
	}
	axes := "xyz"
	for k := 0; k < 3; k++ {
		if l[k] == 1 {
			return symbol + " " + sh.Name + axes[k:k+1]
		}
	}
	return symbol + " " + sh.Name
}
