// fft.go --  This file is part of goFD project.
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

// Package spectral evaluates the Laplacian of periodic grid functions in
// Fourier space. It is the reference the finite-difference stencils are
// calibrated against.
package spectral

import (
	"errors"
	"fmt"
	"math"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

var ErrLength = errors.New("spectral: field length does not match the local block")

// Transform returns the Laplacian of an unpadded local block.
type Transform interface {
	ForwardThenLaplacian(field []float64) ([]float64, error)
}

// FFT is the plane-wave Laplacian of the whole cell. On a decomposed
// topology every rank gathers the global field through the reduction group
// and transforms it redundantly, so calls are collective. An FFT keeps work
// buffers and is not safe for concurrent use.
type FFT struct {
	topo  *grid.Topology
	group reduce.Group

	ffts  [3]*fourier.CmplxFFT
	gsq   []float64 // |G|^2 per coefficient, global layout
	gmag  []float64 // |G| in units of the shortest reciprocal step
	buf   []complex128
	lines [3][]complex128
}

// NewFFT prepares transforms for the global grid of topo. A nil group is
// treated as reduce.Local.
func NewFFT(topo *grid.Topology, group reduce.Group) (*FFT, error) {
	recip, err := topo.Basis().Reciprocal()
	if err != nil {
		return nil, fmt.Errorf("spectral: %w", err)
	}
	if group == nil {
		group = reduce.Local{}
	}
	n := topo.Global()
	f := &FFT{
		topo:  topo,
		group: group,
		gsq:   make([]float64, topo.GlobalPoints()),
		gmag:  make([]float64, topo.GlobalPoints()),
		buf:   make([]complex128, topo.GlobalPoints()),
	}
	for i := 0; i < 3; i++ {
		f.ffts[i] = fourier.NewCmplxFFT(n[i])
		f.lines[i] = make([]complex128, n[i])
	}

	bmin := math.Inf(1)
	for _, l := range recip.Sides() {
		bmin = math.Min(bmin, l)
	}
	for i0 := 0; i0 < n[0]; i0++ {
		m0 := float64(freq(i0, n[0]))
		for i1 := 0; i1 < n[1]; i1++ {
			m1 := float64(freq(i1, n[1]))
			for i2 := 0; i2 < n[2]; i2++ {
				m2 := float64(freq(i2, n[2]))
				var g [3]float64
				for k := 0; k < 3; k++ {
					g[k] = 2 * math.Pi * (m0*recip[0][k] + m1*recip[1][k] + m2*recip[2][k])
				}
				idx := (i0*n[1]+i1)*n[2] + i2
				f.gsq[idx] = g[0]*g[0] + g[1]*g[1] + g[2]*g[2]
				f.gmag[idx] = math.Sqrt(f.gsq[idx]) / (2 * math.Pi * bmin)
			}
		}
	}
	return f, nil
}

// freq maps an FFT index to its signed frequency; the Nyquist index of an
// even axis is taken as negative.
func freq(i, n int) int {
	if 2*i >= n {
		return i - n
	}
	return i
}

// ForwardThenLaplacian returns the Laplacian of field computed as
// F^-1[-|G|^2 F[field]].
func (f *FFT) ForwardThenLaplacian(field []float64) ([]float64, error) {
	if err := f.load(field); err != nil {
		return nil, err
	}
	f.transform(true)
	for i := range f.buf {
		f.buf[i] *= complex(-f.gsq[i], 0)
	}
	f.transform(false)

	norm := 1.0 / float64(f.topo.GlobalPoints())
	res := make([]float64, f.topo.LocalPoints())
	f.scatter(res, func(c complex128) float64 { return real(c) * norm })
	return res, nil
}

// load gathers the global field into buf.
func (f *FFT) load(field []float64) error {
	if len(field) != f.topo.LocalPoints() {
		return fmt.Errorf("%w: %d values for %d points", ErrLength, len(field), f.topo.LocalPoints())
	}
	global := make([]float64, f.topo.GlobalPoints())
	n := f.topo.Global()
	d := f.topo.Dims()
	off := f.topo.Offset()
	for ix := 0; ix < d[0]; ix++ {
		for iy := 0; iy < d[1]; iy++ {
			row := ((ix+off[0])*n[1] + iy + off[1]) * n[2]
			copy(global[row+off[2]:row+off[2]+d[2]], field[(ix*d[1]+iy)*d[2]:(ix*d[1]+iy+1)*d[2]])
		}
	}
	if f.topo.Decomposed() {
		f.group.SumVector(global)
	}
	for i, v := range global {
		f.buf[i] = complex(v, 0)
	}
	return nil
}

// scatter writes this rank's block of buf into dst through conv.
func (f *FFT) scatter(dst []float64, conv func(complex128) float64) {
	n := f.topo.Global()
	d := f.topo.Dims()
	off := f.topo.Offset()
	for ix := 0; ix < d[0]; ix++ {
		for iy := 0; iy < d[1]; iy++ {
			row := ((ix+off[0])*n[1] + iy + off[1]) * n[2]
			for iz := 0; iz < d[2]; iz++ {
				dst[(ix*d[1]+iy)*d[2]+iz] = conv(f.buf[row+off[2]+iz])
			}
		}
	}
}

// transform runs the separable 3D transform of buf in place, unnormalized.
func (f *FFT) transform(forward bool) {
	n := f.topo.Global()
	strides := [3]int{n[1] * n[2], n[2], 1}
	for axis := 0; axis < 3; axis++ {
		line := f.lines[axis]
		s := strides[axis]
		for start := 0; start < len(f.buf); start++ {
			// visit every line of this axis once, from its first element
			if (start/s)%n[axis] != 0 {
				continue
			}
			for k := range line {
				line[k] = f.buf[start+k*s]
			}
			if forward {
				f.ffts[axis].Coefficients(line, line)
			} else {
				f.ffts[axis].Sequence(line, line)
			}
			for k := range line {
				f.buf[start+k*s] = line[k]
			}
		}
	}
}

// ResidualRMS is the root mean square of fd - ref over the whole grid.
// It is a collective call on group.
func ResidualRMS(fd, ref []float64, group reduce.Group) (float64, error) {
	if len(fd) != len(ref) {
		return 0, fmt.Errorf("%w: %d and %d values", ErrLength, len(fd), len(ref))
	}
	if group == nil {
		group = reduce.Local{}
	}
	sq := make([]float64, len(fd))
	for i := range fd {
		d := fd[i] - ref[i]
		sq[i] = d * d
	}
	var sum float64
	if len(sq) > 0 {
		sum = stat.Mean(sq, nil) * float64(len(sq))
	}
	total := group.SumScalar(float64(len(sq)))
	if total == 0 {
		return 0, nil
	}
	return math.Sqrt(group.SumScalar(sum) / total), nil
}
