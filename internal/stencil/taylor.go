// taylor.go --  This file is part of goFD project.
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

	"gonum.org/v1/gonum/mat"
)

const (
	MinOrder = 2
	MaxOrder = 12
)

// TaylorWeights returns the weights a_1..a_m (m = order/2) of the symmetric
// second difference
//
//	f''(x) h^2 ~ sum_k a_k (f(x+kh) + f(x-kh) - 2 f(x))
//
// They solve sum_k a_k k^2 = 1 and sum_k a_k k^(2j) = 0 for j = 2..m.
func TaylorWeights(order int) ([]float64, error) {
	if err := checkOrder(order, MinOrder); err != nil {
		return nil, err
	}
	m := order / 2

	// unknowns b_k = a_k k^2, rows j = 0..m-1: sum_k b_k (k^2)^j = delta_j0
	vand := mat.NewDense(m, m, nil)
	for j := 0; j < m; j++ {
		for k := 1; k <= m; k++ {
			x := float64(k * k)
			p := 1.0
			for i := 0; i < j; i++ {
				p *= x
			}
			vand.Set(j, k-1, p)
		}
	}
	rhs := mat.NewVecDense(m, nil)
	rhs.SetVec(0, 1)

	var b mat.VecDense
	if err := b.SolveVec(vand, rhs); err != nil {
		return nil, fmt.Errorf("stencil: taylor system of order %d: %w", order, err)
	}
	res := make([]float64, m)
	for k := 1; k <= m; k++ {
		res[k-1] = b.AtVec(k-1) / float64(k*k)
	}
	return res, nil
}

func checkOrder(order, lowest int) error {
	if order%2 != 0 || order < lowest || order > MaxOrder {
		return fmt.Errorf("%w: %d (even, %d..%d)", ErrInvalidOrder, order, lowest, MaxOrder)
	}
	return nil
}
