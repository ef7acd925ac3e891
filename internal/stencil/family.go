// family.go --  This file is part of goFD project.
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
	"github.com/MirzaevaIV/goFD/internal/grid"
)

// Family computes the stencil of one lattice family.
type Family interface {
	Name() string
	ComputeStencil(topo *grid.Topology, order int, strides grid.Strides) (*Set, error)
}

// Orthorhombic covers simple cubic, tetragonal and orthorhombic cells:
// the three axes with unit weight.
type Orthorhombic struct{}

func (Orthorhombic) Name() string { return "orthorhombic" }

func (Orthorhombic) ComputeStencil(topo *grid.Topology, order int, strides grid.Strides) (*Set, error) {
	if err := checkOrder(order, MinOrder); err != nil {
		return nil, err
	}
	return assemble(topo, order, strides, []pick{
		{Directions[0], 1}, {Directions[1], 1}, {Directions[2], 1},
	})
}

// CubicFC uses the 12 nearest neighbours of the face-centred cubic
// primitive cell: the axes and the x-y, x-z, y-z diagonals, weight 1/2.
type CubicFC struct{}

func (CubicFC) Name() string { return "cubic_fc" }

func (CubicFC) ComputeStencil(topo *grid.Topology, order int, strides grid.Strides) (*Set, error) {
	if err := checkOrder(order, MinOrder); err != nil {
		return nil, err
	}
	return assemble(topo, order, strides, []pick{
		{Directions[0], 0.5}, {Directions[1], 0.5}, {Directions[2], 0.5},
		{Directions[4], 0.5}, {Directions[6], 0.5}, {Directions[8], 0.5},
	})
}

// CubicBC uses the 8 nearest neighbours of the body-centred cubic
// primitive cell: the axes and the xyz diagonal, weight 3/4.
type CubicBC struct{}

func (CubicBC) Name() string { return "cubic_bc" }

func (CubicBC) ComputeStencil(topo *grid.Topology, order int, strides grid.Strides) (*Set, error) {
	if err := checkOrder(order, MinOrder); err != nil {
		return nil, err
	}
	return assemble(topo, order, strides, []pick{
		{Directions[0], 0.75}, {Directions[1], 0.75}, {Directions[2], 0.75},
		{Directions[9], 0.75},
	})
}

// Hexagonal uses the six in-plane neighbours (x, y, x-y, weight 2/3) and
// the two axial ones (z, weight 1).
type Hexagonal struct{}

func (Hexagonal) Name() string { return "hexagonal" }

func (Hexagonal) ComputeStencil(topo *grid.Topology, order int, strides grid.Strides) (*Set, error) {
	if err := checkOrder(order, MinOrder); err != nil {
		return nil, err
	}
	return assemble(topo, order, strides, []pick{
		{Directions[0], 2.0 / 3.0}, {Directions[1], 2.0 / 3.0}, {Directions[2], 1},
		{Directions[4], 2.0 / 3.0},
	})
}

// Generalized delegates to a Builder and works for any lattice.
type Generalized struct {
	Builder *Builder
}

func (Generalized) Name() string { return "generalized" }

func (g Generalized) ComputeStencil(topo *grid.Topology, order int, strides grid.Strides) (*Set, error) {
	b := g.Builder
	if b == nil {
		b = NewBuilder()
	}
	return b.Build(topo, order, strides)
}

var families = map[grid.Lattice]Family{
	grid.CubicPrimitive:        Orthorhombic{},
	grid.TetragonalPrimitive:   Orthorhombic{},
	grid.OrthorhombicPrimitive: Orthorhombic{},
	grid.CubicFC:               CubicFC{},
	grid.CubicBC:               CubicBC{},
	grid.Hexagonal:             Hexagonal{},
}

// FamilyFor returns the closed-form family of a lattice tag and whether
// one exists.
func FamilyFor(tag grid.Lattice) (Family, bool) {
	f, ok := families[tag]
	return f, ok
}

// FamilyByName resolves "orthorhombic", "cubic_fc", "cubic_bc",
// "hexagonal" or "generalized".
func FamilyByName(name string, b *Builder) (Family, bool) {
	switch name {
	case "generalized":
		return Generalized{Builder: b}, true
	}
	for _, f := range families {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}
