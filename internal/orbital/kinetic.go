// kinetic.go --  This file is part of goFD project.
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

package orbital

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Analytic integrals of isolated s-type orbitals. They are the closed-form
// check of the grid kinetic energies.

func qq(v1, v2 [3]float64) float64 {
	d := sub(v2, v1)
	return d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
}

func checkS(m []AO) error {
	for i, ao := range m {
		if ao.L != [3]int{} {
			return fmt.Errorf("%w: orbital %d has L=%v", ErrNotSType, i, ao.L)
		}
	}
	return nil
}

// Overlap returns S_ij = <i|j> for s-type orbitals.
func Overlap(m []AO) (*mat.Dense, error) {
	if err := checkS(m); err != nil {
		return nil, err
	}
	n := len(m)
	res := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for _, a := range m[i].PGs {
				for _, b := range m[j].PGs {
					norm := a.NormCoeff(m[i].L) * b.NormCoeff(m[j].L)
					p := a.Alpha + b.Alpha
					q := a.Alpha * b.Alpha / p
					q2 := qq(m[i].Coords, m[j].Coords)
					sum += norm * a.Coeff * b.Coeff * math.Exp(-q*q2) * math.Pow(math.Pi/p, 1.5)
				}
			}
			res.Set(i, j, sum)
		}
	}
	return res, nil
}

// Kinetic returns T_ij = <i|-1/2 lap|j> for s-type orbitals.
func Kinetic(m []AO) (*mat.Dense, error) {
	if err := checkS(m); err != nil {
		return nil, err
	}
	n := len(m)
	res := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for _, a := range m[i].PGs {
				for _, b := range m[j].PGs {
					norm := a.NormCoeff(m[i].L) * b.NormCoeff(m[j].L)
					p := a.Alpha + b.Alpha
					q := a.Alpha * b.Alpha / p
					q2 := qq(m[i].Coords, m[j].Coords)

					var pg2 float64
					for k := 0; k < 3; k++ {
						pk := (a.Alpha*m[i].Coords[k]+b.Alpha*m[j].Coords[k])/p - m[j].Coords[k]
						pg2 += pk*pk + 0.5/p
					}
					s := norm * a.Coeff * b.Coeff * math.Exp(-q*q2) * math.Pow(math.Pi/p, 1.5)
					sum += 3*b.Alpha*s - 2*b.Alpha*b.Alpha*s*pg2
				}
			}
			res.Set(i, j, sum)
		}
	}
	return res, nil
}

// KineticEnergy is <ao|-1/2 lap|ao>/<ao|ao> of one s-type orbital.
func KineticEnergy(ao AO) (float64, error) {
	s, err := Overlap([]AO{ao})
	if err != nil {
		return 0, err
	}
	t, err := Kinetic([]AO{ao})
	if err != nil {
		return 0, err
	}
	return t.At(0, 0) / s.At(0, 0), nil
}
