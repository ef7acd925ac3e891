// direction.go --  This file is part of goFD project.
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

	"golang.org/x/exp/slices"
)

// Direction is one of the 13 symmetry-distinct neighbour directions of a
// 3D grid, given as a crystal step.
type Direction struct {
	Index int
	Name  string
	Step  [3]int
}

// IsAxis reports whether d runs along a lattice vector.
func (d Direction) IsAxis() bool { return d.Index < 3 }

// Directions lists the axes first, then face diagonals, then body diagonals.
var Directions = [13]Direction{
	{0, "x", [3]int{1, 0, 0}},
	{1, "y", [3]int{0, 1, 0}},
	{2, "z", [3]int{0, 0, 1}},
	{3, "xy", [3]int{1, 1, 0}},
	{4, "x-y", [3]int{1, -1, 0}},
	{5, "xz", [3]int{1, 0, 1}},
	{6, "x-z", [3]int{1, 0, -1}},
	{7, "yz", [3]int{0, 1, 1}},
	{8, "y-z", [3]int{0, 1, -1}},
	{9, "xyz", [3]int{1, 1, 1}},
	{10, "xy-z", [3]int{1, 1, -1}},
	{11, "x-yz", [3]int{1, -1, 1}},
	{12, "-xyz", [3]int{-1, 1, 1}},
}

// DirectionByName looks a direction up by its name.
func DirectionByName(name string) (Direction, error) {
	i := slices.IndexFunc(Directions[:], func(d Direction) bool { return d.Name == name })
	if i < 0 {
		return Direction{}, fmt.Errorf("%w: %q", ErrUnknownDirection, name)
	}
	return Directions[i], nil
}
