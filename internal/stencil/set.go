// set.go --  This file is part of goFD project.
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
	"gonum.org/v1/gonum/mat"
)

// Entry is a single neighbour coefficient with its linear offset.
type Entry struct {
	Coeff  float64
	Offset int
}

// Term holds the coefficients of one included direction; Coeffs[k-1]
// multiplies the neighbours at +-k steps.
type Term struct {
	Direction Direction
	Weight    float64
	Length    float64
	Coeffs    []float64
}

// Set is a complete Laplacian stencil.
type Set struct {
	Order   int
	Center  float64
	Strides grid.Strides
	Terms   []Term
}

// HalfWidth is the number of neighbours on each side, and the halo width
// a field needs for this stencil.
func (s *Set) HalfWidth() int { return s.Order / 2 }

// Offset returns the linear offset of the k-th neighbour of term t.
func (s *Set) Offset(t, k int) int {
	return k * s.Strides.Offset(s.Terms[t].Direction.Step)
}

// Entries lists every neighbour coefficient, ordered by direction, then
// radial distance, the +k neighbour before the -k one.
func (s *Set) Entries() []Entry {
	res := make([]Entry, 0, 2*s.NumCoeffs())
	for t := range s.Terms {
		for k, c := range s.Terms[t].Coeffs {
			off := s.Offset(t, k+1)
			res = append(res, Entry{Coeff: c, Offset: off}, Entry{Coeff: c, Offset: -off})
		}
	}
	return res
}

// Includes reports whether direction d carries coefficients.
func (s *Set) Includes(d Direction) bool {
	for _, t := range s.Terms {
		if t.Direction.Index == d.Index {
			return true
		}
	}
	return false
}

// NumCoeffs is the number of free (off-centre) coefficients.
func (s *Set) NumCoeffs() int {
	n := 0
	for _, t := range s.Terms {
		n += len(t.Coeffs)
	}
	return n
}

// Vector flattens the free coefficients (direction-major).
func (s *Set) Vector() []float64 {
	res := make([]float64, 0, s.NumCoeffs())
	for _, t := range s.Terms {
		res = append(res, t.Coeffs...)
	}
	return res
}

// SetVector replaces the free coefficients and re-derives the centre.
func (s *Set) SetVector(v []float64) error {
	if len(v) != s.NumCoeffs() {
		return fmt.Errorf("%w: got %d, want %d", ErrVectorLength, len(v), s.NumCoeffs())
	}
	i := 0
	for t := range s.Terms {
		i += copy(s.Terms[t].Coeffs, v[i:])
	}
	s.updateCenter()
	return nil
}

func (s *Set) updateCenter() {
	sum := 0.0
	for _, t := range s.Terms {
		for _, c := range t.Coeffs {
			sum += c
		}
	}
	s.Center = -2.0 * sum
}

// Clone returns a deep copy.
func (s *Set) Clone() *Set {
	res := &Set{Order: s.Order, Center: s.Center, Strides: s.Strides, Terms: make([]Term, len(s.Terms))}
	for i, t := range s.Terms {
		t.Coeffs = append([]float64(nil), t.Coeffs...)
		res.Terms[i] = t
	}
	return res
}

// WithStrides returns a copy addressing a differently padded layout.
func (s *Set) WithStrides(strides grid.Strides) *Set {
	res := s.Clone()
	res.Strides = strides
	return res
}

// Correction returns the truncation correction of s: the difference
// between the order-p and order-(p-2) Taylor weights on the same
// directions, metric weights and step lengths.
func (s *Set) Correction() (*Set, error) {
	if err := checkOrder(s.Order, 4); err != nil {
		return nil, err
	}
	hi, err := TaylorWeights(s.Order)
	if err != nil {
		return nil, err
	}
	lo, err := TaylorWeights(s.Order - 2)
	if err != nil {
		return nil, err
	}
	res := s.Clone()
	for i := range res.Terms {
		t := &res.Terms[i]
		scale := t.Weight / (t.Length * t.Length)
		for k := range t.Coeffs {
			d := hi[k]
			if k < len(lo) {
				d -= lo[k]
			}
			t.Coeffs[k] = scale * d
		}
	}
	res.updateCenter()
	return res, nil
}

// AddScaled returns s + alpha*other. Both sets must share their layout.
func (s *Set) AddScaled(alpha float64, other *Set) (*Set, error) {
	if s.NumCoeffs() != other.NumCoeffs() || len(s.Terms) != len(other.Terms) {
		return nil, fmt.Errorf("%w: sets differ in shape", ErrVectorLength)
	}
	v := s.Vector()
	for i, c := range other.Vector() {
		v[i] += alpha * c
	}
	res := s.Clone()
	if err := res.SetVector(v); err != nil {
		return nil, err
	}
	return res, nil
}

// Table returns the coefficients as a matrix: one row per direction, one
// column per radial distance, plus the centre in the last row.
func (s *Set) Table() *mat.Dense {
	m := s.HalfWidth()
	res := mat.NewDense(len(s.Terms)+1, m, nil)
	for i, t := range s.Terms {
		for k, c := range t.Coeffs {
			res.Set(i, k, c)
		}
	}
	res.Set(len(s.Terms), 0, s.Center)
	return res
}

// Names returns the names of the included directions.
func (s *Set) Names() []string {
	res := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		res[i] = t.Direction.Name
	}
	return res
}
