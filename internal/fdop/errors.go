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

package fdop

import "errors"

var (
	// ErrUnsupportedLattice is returned by ApplyLegacy for lattice tags
	// without a hand-derived kernel. Nothing is written in that case.
	ErrUnsupportedLattice = errors.New("fdop: lattice type not implemented")

	// ErrLayout is returned when fields and coefficient offsets disagree.
	ErrLayout = errors.New("fdop: field layout mismatch")
)
