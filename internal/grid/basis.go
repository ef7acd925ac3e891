// basis.go --  This file is part of goFD project.
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

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Basis holds the lattice vectors a0, a1, a2 as rows, in bohr.
type Basis [3][3]float64

func (b Basis) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		b[0][0], b[0][1], b[0][2],
		b[1][0], b[1][1], b[1][2],
		b[2][0], b[2][1], b[2][2],
	})
}

// Det is the signed triple product a0 . (a1 x a2).
func (b Basis) Det() float64 {
	return mat.Det(b.dense())
}

// Volume is the cell volume |det|.
func (b Basis) Volume() float64 {
	return math.Abs(b.Det())
}

// Sides returns the lengths of the three lattice vectors.
func (b Basis) Sides() [3]float64 {
	var res [3]float64
	for i := range b {
		res[i] = math.Sqrt(dot(b[i], b[i]))
	}
	return res
}

// Validate returns ErrDegenerateBasis when the vectors span (almost) no volume.
func (b Basis) Validate() error {
	s := b.Sides()
	scale := s[0] * s[1] * s[2]
	if scale == 0 || b.Volume() < 1e-10*scale {
		return ErrDegenerateBasis
	}
	return nil
}

// Reciprocal returns vectors b_j with a_i . b_j = delta_ij (no 2*pi factor).
func (b Basis) Reciprocal() (Basis, error) {
	if err := b.Validate(); err != nil {
		return Basis{}, err
	}
	var inv mat.Dense
	if err := inv.Inverse(b.dense()); err != nil {
		return Basis{}, fmt.Errorf("%w: %v", ErrDegenerateBasis, err)
	}
	// columns of A^-1 are the reciprocal vectors
	var res Basis
	for j := 0; j < 3; j++ {
		for k := 0; k < 3; k++ {
			res[j][k] = inv.At(k, j)
		}
	}
	return res, nil
}

// IsOrthogonal reports whether all pairs of lattice vectors are orthogonal
// within a relative tolerance tol.
func (b Basis) IsOrthogonal(tol float64) bool {
	s := b.Sides()
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if math.Abs(dot(b[i], b[j])) > tol*s[i]*s[j] {
				return false
			}
		}
	}
	return true
}

// ToCartesian maps crystal coordinates to Cartesian ones.
func (b Basis) ToCartesian(c [3]float64) [3]float64 {
	var res [3]float64
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			res[k] += c[i] * b[i][k]
		}
	}
	return res
}

// BasisFromCellDM generates lattice vectors from the ibrav tag and the six
// celldm parameters: a, b/a, c/a, cos(alpha), cos(beta), cos(gamma).
func BasisFromCellDM(tag Lattice, celldm [6]float64) (Basis, error) {
	var a0, a1, a2 [3]float64
	alat := celldm[0]
	if alat <= 0 {
		return Basis{}, fmt.Errorf("%w: celldm[0] must be positive", ErrBadCellDM)
	}

	switch tag {
	case CubicPrimitive:
		a0[0] = alat
		a1[1] = alat
		a2[2] = alat
	case CubicFC:
		t := alat / 2.0
		a0 = [3]float64{t, t, 0}
		a1 = [3]float64{0, t, t}
		a2 = [3]float64{t, 0, t}
	case CubicBC:
		t := alat / 2.0
		a0 = [3]float64{t, t, -t}
		a1 = [3]float64{-t, t, t}
		a2 = [3]float64{t, -t, t}
	case Hexagonal:
		if celldm[2] <= 0 {
			return Basis{}, fmt.Errorf("%w: hexagonal lattice needs c/a", ErrBadCellDM)
		}
		a0[0] = alat
		a1[0] = alat / 2.0
		a1[1] = alat * math.Sqrt(3) / 2.0
		a2[2] = alat * celldm[2]
	case TrigonalPrimitive:
		if celldm[3] <= -0.5 || celldm[3] >= 1 {
			return Basis{}, fmt.Errorf("%w: trigonal cos(alpha) out of range", ErrBadCellDM)
		}
		t1 := math.Sqrt(1.0 + 2.0*celldm[3])
		t2 := math.Sqrt(1.0 - celldm[3])
		a0 = [3]float64{0, math.Sqrt2 * alat * t2 / math.Sqrt(3), alat * t1 / math.Sqrt(3)}
		a1[0] = alat * t2 / math.Sqrt2
		a1[1] = -a1[0] / math.Sqrt(3)
		a1[2] = a0[2]
		a2 = [3]float64{-a1[0], a1[1], a0[2]}
	case TetragonalPrimitive:
		if celldm[2] <= 0 {
			return Basis{}, fmt.Errorf("%w: tetragonal lattice needs c/a", ErrBadCellDM)
		}
		a0[0] = alat
		a1[1] = alat
		a2[2] = alat * celldm[2]
	case TetragonalBC:
		if celldm[2] <= 0 {
			return Basis{}, fmt.Errorf("%w: tetragonal lattice needs c/a", ErrBadCellDM)
		}
		t := alat / 2.0
		c := celldm[2] * alat / 2.0
		a0 = [3]float64{t, t, c}
		a1 = [3]float64{t, -t, c}
		a2 = [3]float64{-t, -t, c}
	case OrthorhombicPrimitive:
		if celldm[1] <= 0 || celldm[2] <= 0 {
			return Basis{}, fmt.Errorf("%w: orthorhombic lattice needs b/a and c/a", ErrBadCellDM)
		}
		a0[0] = alat
		a1[1] = alat * celldm[1]
		a2[2] = alat * celldm[2]
	case MonoclinicPrimitive:
		if celldm[1] <= 0 || celldm[2] <= 0 || math.Abs(celldm[3]) >= 1 {
			return Basis{}, fmt.Errorf("%w: monoclinic lattice parameters", ErrBadCellDM)
		}
		sine := math.Sqrt(1.0 - celldm[3]*celldm[3])
		a0[0] = alat
		a1[0] = alat * celldm[1] * celldm[3]
		a1[1] = alat * celldm[1] * sine
		a2[2] = alat * celldm[2]
	case TriclinicPrimitive:
		if celldm[1] <= 0 || celldm[2] <= 0 || math.Abs(celldm[5]) >= 1 {
			return Basis{}, fmt.Errorf("%w: triclinic lattice parameters", ErrBadCellDM)
		}
		singam := math.Sqrt(1.0 - celldm[5]*celldm[5])
		arg := (1.0 + 2.0*celldm[3]*celldm[4]*celldm[5] -
			celldm[3]*celldm[3] - celldm[4]*celldm[4] - celldm[5]*celldm[5]) / (1.0 - celldm[5]*celldm[5])
		if arg <= 0 {
			return Basis{}, fmt.Errorf("%w: triclinic angles do not form a cell", ErrBadCellDM)
		}
		a0[0] = alat
		a1[0] = alat * celldm[1] * celldm[5]
		a1[1] = alat * celldm[1] * singam
		a2[0] = alat * celldm[2] * celldm[4]
		a2[1] = alat * celldm[2] * (celldm[3] - celldm[4]*celldm[5]) / singam
		a2[2] = alat * celldm[2] * math.Sqrt(arg)
	default:
		return Basis{}, fmt.Errorf("%w: %v", ErrUnknownLattice, tag)
	}

	b := Basis{a0, a1, a2}
	if err := b.Validate(); err != nil {
		return Basis{}, err
	}
	return b, nil
}

func dot(v1, v2 [3]float64) float64 {
	return v1[0]*v2[0] + v1[1]*v2[1] + v1[2]*v2[2]
}
