// sto3g.go --  This file is part of goFD project.
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

// Shell is one occupied atomic shell of a free atom.
type Shell struct {
	Name string
	L    int
	Occ  float64
	PGs  []PrimitiveGaussian
}

// Cartesians returns the angular parts of the 2l+1 components of the shell
// (s and p only).
func (s Shell) Cartesians() [][3]int {
	if s.L == 1 {
		return [][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	return [][3]int{{0, 0, 0}}
}

func contraction(alphas, coeffs [3]float64) []PrimitiveGaussian {
	res := make([]PrimitiveGaussian, 3)
	for i := range res {
		res[i] = PrimitiveGaussian{Alpha: alphas[i], Coeff: coeffs[i]}
	}
	return res
}

var (
	sto3g1s = [3]float64{0.1543289673e+00, 0.5353281423e+00, 0.4446345422e+00}
	sto3g2s = [3]float64{-0.9996722919e-01, 0.3995128261e+00, 0.7001154689e+00}
	sto3g2p = [3]float64{0.1559162750e+00, 0.6076837186e+00, 0.3919573931e+00}
	sto3gSP = map[string][2][3]float64{
		"C": {{0.7161683735e+02, 0.1304509632e+02, 0.3530512160e+01}, {0.2941249355e+01, 0.6834830964e+00, 0.2222899159e+00}},
		"N": {{0.9910616896e+02, 0.1805231239e+02, 0.4885660238e+01}, {0.3780455879e+01, 0.8784966449e+00, 0.2857143744e+00}},
		"O": {{0.1307093214e+03, 0.2380886605e+02, 0.6443608313e+01}, {0.5033151319e+01, 0.1169596125e+01, 0.3803889600e+00}},
	}
	secondRowValence = map[string]float64{"C": 2, "N": 3, "O": 4}
)

// STO3G returns the minimal-basis shells of the element with their
// ground-state occupations.
func STO3G(symbol string) ([]Shell, error) {
	switch symbol {
	case "H":
		return []Shell{{"1s", 0, 1, contraction([3]float64{0.3425250914e+01, 0.6239137298e+00, 0.1688554040e+00}, sto3g1s)}}, nil
	case "He":
		return []Shell{{"1s", 0, 2, contraction([3]float64{0.6362421394e+01, 0.1158922999e+01, 0.3136497915e+00}, sto3g1s)}}, nil
	}
	sp, ok := sto3gSP[symbol]
	if !ok {
		return nil, ErrNoBasis
	}
	return []Shell{
		{"1s", 0, 2, contraction(sp[0], sto3g1s)},
		{"2s", 0, 2, contraction(sp[1], sto3g2s)},
		{"2p", 1, secondRowValence[symbol], contraction(sp[1], sto3g2p)},
	}, nil
}
