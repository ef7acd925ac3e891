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

// Package stencil builds finite-difference Laplacian stencils on arbitrary
// three-dimensional lattices.
//
// A stencil is written as a sum of one-dimensional second differences along
// a small set of crystal directions d:
//
//	L f(r) = c0 f(r) + sum_d sum_k c_{d,k} (f(r + k s_d) + f(r - k s_d))
//
// with c_{d,k} = w_d a_k / L_d^2, where a_k are the one-dimensional Taylor
// weights of the requested order, L_d is the real-space length of the
// crystal step s_d and w_d are metric weights satisfying
// sum_d w_d u_d u_d^T = I. The centre coefficient is always minus the sum of
// all neighbour coefficients, so constants are annihilated exactly.
//
// Two ways to obtain a stencil are provided: the Builder searches the 13
// symmetry-distinct directions for a consistent metric, and the closed-form
// families (Orthorhombic, CubicFC, CubicBC, Hexagonal) reproduce the
// hand-derived lattice stencils for any even order.
package stencil
