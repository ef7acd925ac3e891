// gaussian.go --  This file is part of goFD project.
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

// Package orbital samples contracted Gaussian atomic orbitals on periodic
// grids. The orbitals are the test functions stencil coefficients are
// calibrated on.
package orbital

import (
	"math"

	"github.com/MirzaevaIV/goFD/internal/grid"
)

type PrimitiveGaussian struct {
	Alpha float64
	Coeff float64
}

// NormCoeff normalizes x^lx y^ly z^lz exp(-alpha r^2).
func (p PrimitiveGaussian) NormCoeff(l [3]int) float64 {
	n := math.Pow(2*p.Alpha/math.Pi, 0.75)
	sum := l[0] + l[1] + l[2]
	if sum == 0 {
		return n
	}
	n *= math.Pow(4*p.Alpha, float64(sum)/2)
	return n / math.Sqrt(doubleFactorial(2*l[0]-1)*doubleFactorial(2*l[1]-1)*doubleFactorial(2*l[2]-1))
}

func doubleFactorial(n int) float64 {
	res := 1.0
	for ; n > 1; n -= 2 {
		res *= float64(n)
	}
	return res
}

// AO is a contracted Cartesian Gaussian centred at Coords (bohr).
type AO struct {
	PGs    []PrimitiveGaussian
	Coords [3]float64
	L      [3]int
}

// Value evaluates the orbital at the Cartesian displacement d from its centre.
func (ao AO) Value(d [3]float64) float64 {
	r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
	poly := 1.0
	for i := 0; i < 3; i++ {
		for k := 0; k < ao.L[i]; k++ {
			poly *= d[i]
		}
	}
	res := 0.0
	for _, pg := range ao.PGs {
		res += pg.Coeff * pg.NormCoeff(ao.L) * math.Exp(-pg.Alpha*r2)
	}
	return poly * res
}

// Sample evaluates ao at every interior point of the local block of topo,
// using the periodic image of the centre nearest to each point. The result
// is an unpadded block (z fastest).
func (ao AO) Sample(topo *grid.Topology) ([]float64, error) {
	recip, err := topo.Basis().Reciprocal()
	if err != nil {
		return nil, err
	}
	b := topo.Basis()
	d := topo.Dims()
	res := make([]float64, 0, topo.LocalPoints())
	for ix := 0; ix < d[0]; ix++ {
		for iy := 0; iy < d[1]; iy++ {
			for iz := 0; iz < d[2]; iz++ {
				r := topo.Point(ix, iy, iz)
				res = append(res, ao.Value(minimumImage(b, recip, sub(r, ao.Coords))))
			}
		}
	}
	return res, nil
}

// minimumImage folds the displacement v into the Wigner-Seitz-like
// parallelepiped centred on the origin.
func minimumImage(b, recip grid.Basis, v [3]float64) [3]float64 {
	var c [3]float64
	for j := 0; j < 3; j++ {
		c[j] = recip[j][0]*v[0] + recip[j][1]*v[1] + recip[j][2]*v[2]
		c[j] -= math.Round(c[j])
	}
	return b.ToCartesian(c)
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}
