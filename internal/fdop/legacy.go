// legacy.go --  This file is part of goFD project.
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

package fdop

import (
	"fmt"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// isotropyLimit is the anisotropy below which the orthorhombic kernel
// treats all three steps as equal.
const isotropyLimit = 1.0000001

// Spacings are the crystal grid spacings and lattice vector lengths a
// legacy kernel needs.
type Spacings struct {
	H     [3]float64
	Sides [3]float64
}

// SpacingsOf extracts the spacings of a topology.
func SpacingsOf(topo *grid.Topology) Spacings {
	return Spacings{H: topo.Spacing(), Sides: topo.Sides()}
}

func (s Spacings) steps() [3]float64 {
	return [3]float64{s.H[0] * s.Sides[0], s.H[1] * s.Sides[1], s.H[2] * s.Sides[2]}
}

// uniform reports whether the steps along axes agree within isotropyLimit.
func (s Spacings) uniform(axes []int) bool {
	l := s.steps()
	lo, hi := l[axes[0]], l[axes[0]]
	for _, ax := range axes[1:] {
		lo, hi = min(lo, l[ax]), max(hi, l[ax])
	}
	return hi/lo < isotropyLimit
}

func (s Spacings) anisotropy() float64 {
	l := s.steps()
	return max(l[0], l[1], l[2]) / min(l[0], l[1], l[2])
}

type kernel func(a *Applier, dst, src *grid.Field, sp Spacings) float64

var legacyKernels = map[grid.Lattice]kernel{
	grid.CubicPrimitive:        orthorhombicKernel,
	grid.TetragonalPrimitive:   orthorhombicKernel,
	grid.OrthorhombicPrimitive: orthorhombicKernel,
	grid.CubicBC:               bccKernel,
	grid.CubicFC:               fccKernel,
	grid.Hexagonal:             hexagonalKernel,
}

// uniformAxes are the axes whose steps a kernel takes as one length.
var uniformAxes = map[grid.Lattice][]int{
	grid.CubicBC:   {0, 1, 2},
	grid.CubicFC:   {0, 1, 2},
	grid.Hexagonal: {0, 1},
}

// LegacyLattices lists the tags ApplyLegacy supports.
func LegacyLattices() []grid.Lattice {
	res := maps.Keys(legacyKernels)
	slices.Sort(res)
	return res
}

// ApplyLegacy applies the hand-unrolled second-order kernel of the lattice
// tag and returns its diagonal. Fields need a halo of at least 1.
func (a *Applier) ApplyLegacy(dst, src *grid.Field, tag grid.Lattice, sp Spacings) (float64, error) {
	k, ok := legacyKernels[tag]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedLattice, tag)
	}
	if !dst.SameShape(src) || src.Halo < 1 {
		return 0, fmt.Errorf("%w: legacy kernels need equal fields with halo >= 1", ErrLayout)
	}
	if axes, ok := uniformAxes[tag]; ok && !sp.uniform(axes) {
		return 0, fmt.Errorf("%w: %v kernel needs equal steps along axes %v, got %v", ErrLayout, tag, axes, sp.steps())
	}
	a.logger.Debug("legacy kernel", zap.Stringer("lattice", tag), zap.Float64("anisotropy", sp.anisotropy()))
	return k(a, dst, src, sp), nil
}

func orthorhombicKernel(a *Applier, dst, src *grid.Field, sp Spacings) float64 {
	l := sp.steps()
	fcx := 1.0 / (l[0] * l[0])
	fcy := 1.0 / (l[1] * l[1])
	fcz := 1.0 / (l[2] * l[2])
	cc := -2.0*fcx - 2.0*fcy - 2.0*fcz

	if sp.anisotropy() < isotropyLimit {
		isotropicKernel(a, dst, src, cc, fcx, src.Dims[1]%2 == 0)
		return cc
	}

	s := src.Strides()
	in, out := src.Data, dst.Data
	a.planes(src.Dims[0], func(x0, x1 int) {
		for ix := x0; ix < x1; ix++ {
			for iy := 0; iy < src.Dims[1]; iy++ {
				base := src.Index(ix, iy, 0)
				for i := base; i < base+src.Dims[2]; i++ {
					out[i] = cc*in[i] +
						fcx*in[i-s.X] + fcx*in[i+s.X] +
						fcy*in[i-s.Y] + fcy*in[i+s.Y] +
						fcz*in[i-1] + fcz*in[i+1]
				}
			}
		}
	})
	return cc
}

// seven is the isotropic 7-point update; both row loops go through it so
// they round identically.
func seven(cc, fc, c, xm, xp, ym, yp, zm, zp float64) float64 {
	return cc*c + fc*(xm+xp+ym+yp+zm+zp)
}

// isotropicKernel walks y two rows at a time when pairs is set (dimy even).
func isotropicKernel(a *Applier, dst, src *grid.Field, cc, fc float64, pairs bool) {
	s := src.Strides()
	in, out := src.Data, dst.Data
	dy, dz := src.Dims[1], src.Dims[2]
	a.planes(src.Dims[0], func(x0, x1 int) {
		for ix := x0; ix < x1; ix++ {
			if !pairs {
				for iy := 0; iy < dy; iy++ {
					base := src.Index(ix, iy, 0)
					for i := base; i < base+dz; i++ {
						out[i] = seven(cc, fc, in[i], in[i-s.X], in[i+s.X], in[i-s.Y], in[i+s.Y], in[i-1], in[i+1])
					}
				}
				continue
			}
			for iy := 0; iy < dy; iy += 2 {
				base := src.Index(ix, iy, 0)
				for i := base; i < base+dz; i++ {
					j := i + s.Y
					// the shared middle value in[j] is loaded once for both rows
					mid := in[j]
					out[i] = seven(cc, fc, in[i], in[i-s.X], in[i+s.X], in[i-s.Y], mid, in[i-1], in[i+1])
					out[j] = seven(cc, fc, mid, in[j-s.X], in[j+s.X], in[i], in[j+s.Y], in[j-1], in[j+1])
				}
			}
		}
	})
}

// bccKernel: neighbours along the axes and the (1,1,1) diagonal of the
// body-centred primitive cell, all at distance |a0| h.
func bccKernel(a *Applier, dst, src *grid.Field, sp Spacings) float64 {
	l := sp.steps()
	fc := 0.75 / (l[0] * l[0])
	cc := -8.0 * fc

	s := src.Strides()
	d := s.X + s.Y + 1
	in, out := src.Data, dst.Data
	a.planes(src.Dims[0], func(x0, x1 int) {
		for ix := x0; ix < x1; ix++ {
			for iy := 0; iy < src.Dims[1]; iy++ {
				base := src.Index(ix, iy, 0)
				for i := base; i < base+src.Dims[2]; i++ {
					out[i] = cc*in[i] +
						fc*in[i-d] +
						fc*in[i-s.X] +
						fc*in[i-s.Y] +
						fc*in[i-1] +
						fc*in[i+1] +
						fc*in[i+s.Y] +
						fc*in[i+s.X] +
						fc*in[i+d]
				}
			}
		}
	})
	return cc
}

// fccKernel: the 12 nearest neighbours of the face-centred primitive cell.
func fccKernel(a *Applier, dst, src *grid.Field, sp Spacings) float64 {
	l := sp.steps()
	fc := 1.0 / (2.0 * l[0] * l[0])
	cc := -6.0 / (l[0] * l[0])

	s := src.Strides()
	in, out := src.Data, dst.Data
	a.planes(src.Dims[0], func(x0, x1 int) {
		for ix := x0; ix < x1; ix++ {
			for iy := 0; iy < src.Dims[1]; iy++ {
				base := src.Index(ix, iy, 0)
				for i := base; i < base+src.Dims[2]; i++ {
					out[i] = cc*in[i] +
						fc*in[i-s.X] +
						fc*in[i-s.X+1] +
						fc*in[i-s.X+s.Y] +
						fc*in[i-s.Y] +
						fc*in[i-s.Y+1] +
						fc*in[i-1] +
						fc*in[i+1] +
						fc*in[i+s.Y-1] +
						fc*in[i+s.Y] +
						fc*in[i+s.X-s.Y] +
						fc*in[i+s.X-1] +
						fc*in[i+s.X]
				}
			}
		}
	})
	return cc
}

// hexagonalKernel: six in-plane neighbours at 60 degrees and two along c.
func hexagonalKernel(a *Applier, dst, src *grid.Field, sp Spacings) float64 {
	l := sp.steps()
	fc1 := 2.0 / (3.0 * l[0] * l[0])
	fc2 := 1.0 / (l[2] * l[2])
	cc := -4.0/(l[0]*l[0]) - 2.0*fc2

	s := src.Strides()
	in, out := src.Data, dst.Data
	a.planes(src.Dims[0], func(x0, x1 int) {
		for ix := x0; ix < x1; ix++ {
			for iy := 0; iy < src.Dims[1]; iy++ {
				base := src.Index(ix, iy, 0)
				for i := base; i < base+src.Dims[2]; i++ {
					out[i] = cc*in[i] +
						fc1*in[i+s.X] +
						fc1*in[i+s.X-s.Y] +
						fc1*in[i-s.Y] +
						fc1*in[i-s.X] +
						fc1*in[i-s.X+s.Y] +
						fc1*in[i+s.Y] +
						fc2*in[i+1] + fc2*in[i-1]
				}
			}
		}
	})
	return cc
}
