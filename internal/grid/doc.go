// doc.go --  This file is part of goFD project.
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

// Package grid holds the geometry shared by every finite-difference
// component: the lattice basis, the Bravais lattice tag, the (possibly
// domain-decomposed) real-space grid and halo-padded fields living on it.
//
// All values are immutable once built. A Topology is constructed once per
// run and passed by pointer to builders, appliers and calibrators.
//
// Index layout of a padded field with halo width w:
//
//	incy = dimz + 2w
//	incx = (dimy + 2w) * (dimz + 2w)
//	idx  = ix*incx + iy*incy + iz
//
// with interior points at ix in [w, dimx+w) (same for y and z).
package grid
