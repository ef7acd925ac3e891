// bins.go --  This file is part of goFD project.
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

package spectral

import (
	"math"
	"math/cmplx"
)

// FreqBins returns the power spectrum of field collected in shells of |G|.
// Shell i holds the coefficients whose |G| rounds to i in units of the
// shortest reciprocal grid step. The bins sum to 1 unless field is zero.
func (f *FFT) FreqBins(field []float64) ([]float64, error) {
	if err := f.load(field); err != nil {
		return nil, err
	}
	f.transform(true)

	gmax := 0.0
	for _, g := range f.gmag {
		gmax = math.Max(gmax, g)
	}
	bins := make([]float64, int(math.Round(gmax))+1)
	norm := 0.0
	for i, c := range f.buf {
		p := cmplx.Abs(c)
		p *= p
		bins[int(math.Round(f.gmag[i]))] += p
		norm += p
	}
	if norm == 0 {
		return bins, nil
	}
	for i := range bins {
		bins[i] /= norm
	}
	return bins, nil
}
