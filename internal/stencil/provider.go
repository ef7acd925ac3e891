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

package stencil

import (
	"fmt"

	"github.com/MirzaevaIV/goFD/internal/grid"
)

// Provider hands out the stencil used for a topology.
type Provider interface {
	Stencil(topo *grid.Topology, order int, strides grid.Strides) (*Set, error)
}

// FamilyProvider picks the closed-form family of the lattice tag and falls
// back to the Builder for lattices without one. Force, when set, is used
// for every lattice.
type FamilyProvider struct {
	Builder *Builder
	Force   Family
}

// NewFamilyProvider returns a provider whose fallback builder is
// configured with opts.
func NewFamilyProvider(opts ...Option) *FamilyProvider {
	return &FamilyProvider{Builder: NewBuilder(opts...)}
}

// Family returns the family used for topo.
func (p *FamilyProvider) Family(topo *grid.Topology) Family {
	if p.Force != nil {
		return p.Force
	}
	if f, ok := FamilyFor(topo.Lattice()); ok {
		return f
	}
	return Generalized{Builder: p.Builder}
}

func (p *FamilyProvider) Stencil(topo *grid.Topology, order int, strides grid.Strides) (*Set, error) {
	return p.Family(topo).ComputeStencil(topo, order, strides)
}

// FixedProvider always returns a copy of Set re-addressed to the requested
// strides, e.g. coefficients produced by a calibration run.
type FixedProvider struct {
	Set *Set
}

func (p FixedProvider) Stencil(_ *grid.Topology, order int, strides grid.Strides) (*Set, error) {
	if p.Set == nil {
		return nil, fmt.Errorf("%w: no coefficients loaded", ErrVectorLength)
	}
	if p.Set.Order != order {
		return nil, fmt.Errorf("%w: stored order %d, requested %d", ErrInvalidOrder, p.Set.Order, order)
	}
	return p.Set.WithStrides(strides), nil
}
