// errors.go --  This file is part of goFD project.
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

package grid

import "errors"

var (
	// ErrDegenerateBasis is returned when the lattice vectors are (numerically)
	// linearly dependent.
	ErrDegenerateBasis = errors.New("grid: degenerate lattice basis")

	// ErrBadDims is returned for non-positive grid sizes or a process grid
	// that does not divide the global grid.
	ErrBadDims = errors.New("grid: invalid grid dimensions")

	// ErrUnknownLattice is returned when a lattice tag or name is not known.
	ErrUnknownLattice = errors.New("grid: unknown lattice type")

	// ErrBadCellDM is returned when celldm parameters are out of range.
	ErrBadCellDM = errors.New("grid: invalid celldm parameters")

	// ErrFieldShape is returned when a buffer does not match a field shape.
	ErrFieldShape = errors.New("grid: field shape mismatch")
)
