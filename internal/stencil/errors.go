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

package stencil

import "errors"

var (
	// ErrInvalidOrder is returned for odd orders and orders outside the
	// supported range.
	ErrInvalidOrder = errors.New("stencil: invalid approximation order")

	// ErrNoSolution is returned when no subset of significant directions
	// reproduces the metric of the lattice.
	ErrNoSolution = errors.New("stencil: no consistent set of directions")

	// ErrVectorLength is returned when a coefficient vector does not match
	// the number of free coefficients of a set.
	ErrVectorLength = errors.New("stencil: coefficient vector length mismatch")

	// ErrUnknownDirection is returned when a stored direction name is not one
	// of the 13 neighbour directions.
	ErrUnknownDirection = errors.New("stencil: unknown direction")
)
