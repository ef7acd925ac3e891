// energy.go --  This file is part of goFD project.
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
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"gonum.org/v1/gonum/floats"
)

// KineticEnergy returns -1/2 (Omega/N) sum x*lapx over the whole grid for
// unpadded local blocks x and lapx. It is a collective call on group.
func KineticEnergy(x, lapx []float64, topo *grid.Topology, group reduce.Group) (float64, error) {
	if len(x) != len(lapx) || len(x) != topo.LocalPoints() {
		return 0, fmt.Errorf("%w: %d and %d values for %d local points", ErrLayout, len(x), len(lapx), topo.LocalPoints())
	}
	local := -0.5 * topo.VolumeElement() * floats.Dot(x, lapx)
	return group.SumScalar(local), nil
}

// FieldKineticEnergy is KineticEnergy over the interiors of padded fields.
func FieldKineticEnergy(x, lapx *grid.Field, topo *grid.Topology, group reduce.Group) (float64, error) {
	if !x.SameShape(lapx) || x.Dims != topo.Dims() {
		return 0, fmt.Errorf("%w: fields %v and %v on block %v", ErrLayout, x.Dims, lapx.Dims, topo.Dims())
	}
	sum := 0.0
	for ix := 0; ix < x.Dims[0]; ix++ {
		for iy := 0; iy < x.Dims[1]; iy++ {
			lo := x.Index(ix, iy, 0)
			hi := lo + x.Dims[2]
			sum += floats.Dot(x.Data[lo:hi], lapx.Data[lo:hi])
		}
	}
	return group.SumScalar(-0.5 * topo.VolumeElement() * sum), nil
}
