// operator.go --  This file is part of goFD project.
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

package fdop

import (
	"fmt"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/halo"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"github.com/MirzaevaIV/goFD/internal/stencil"
)

// Operator applies one stencil repeatedly to unpadded blocks of a topology.
// It owns scratch fields and is not safe for concurrent use.
type Operator struct {
	topo    *grid.Topology
	set     *stencil.Set
	halo    halo.Exchange
	applier *Applier

	src, dst *grid.Field
}

// NewOperator obtains the stencil of the given order from provider and
// binds it to topo. A nil applier uses NewApplier().
func NewOperator(topo *grid.Topology, provider stencil.Provider, order int, exch halo.Exchange, applier *Applier) (*Operator, error) {
	w := order / 2
	if w < 1 {
		w = 1
	}
	src := topo.NewField(w)
	set, err := provider.Stencil(topo, order, src.Strides())
	if err != nil {
		return nil, fmt.Errorf("fdop: stencil for %v: %w", topo.Lattice(), err)
	}
	if applier == nil {
		applier = NewApplier()
	}
	return &Operator{
		topo:    topo,
		set:     set,
		halo:    exch,
		applier: applier,
		src:     src,
		dst:     topo.NewField(w),
	}, nil
}

// Set returns the stencil in use.
func (o *Operator) Set() *stencil.Set { return o.set }

// Laplacian writes the Laplacian of x into dst (both unpadded local blocks).
// With a decomposed topology this is a collective call through the halo
// exchange.
func (o *Operator) Laplacian(dst, x []float64) error {
	if len(dst) != o.topo.LocalPoints() {
		return fmt.Errorf("%w: output of %d values for %d points", ErrLayout, len(dst), o.topo.LocalPoints())
	}
	if err := o.src.Pack(x); err != nil {
		return err
	}
	if err := o.halo.Fill(o.src); err != nil {
		return err
	}
	if _, err := o.applier.Apply(o.dst, o.src, o.set); err != nil {
		return err
	}
	o.dst.Unpack(dst)
	return nil
}

// KineticEnergy returns the kinetic energy of x under this operator.
func (o *Operator) KineticEnergy(x []float64, group reduce.Group) (float64, error) {
	lap := make([]float64, len(x))
	if err := o.Laplacian(lap, x); err != nil {
		return 0, err
	}
	return KineticEnergy(x, lap, o.topo, group)
}
