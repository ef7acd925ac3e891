// applier.go --  This file is part of goFD project.
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

// Package fdop applies finite-difference Laplacian stencils to halo-padded
// fields.
package fdop

import (
	"fmt"
	"runtime"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/stencil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Applier evaluates stencils over the interior of padded fields. Work is
// split by x-planes; each worker writes a disjoint slab of the output.
type Applier struct {
	workers int
	logger  *zap.Logger
}

type Option func(*Applier)

// WithWorkers sets the number of goroutines (default GOMAXPROCS).
func WithWorkers(n int) Option {
	return func(a *Applier) {
		if n > 0 {
			a.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Applier) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewApplier(opts ...Option) *Applier {
	a := &Applier{workers: runtime.GOMAXPROCS(0), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply writes set applied to src into the interior of dst and returns the
// centre coefficient. Halo values of src must be filled by the caller.
func (a *Applier) Apply(dst, src *grid.Field, set *stencil.Set) (float64, error) {
	if !dst.SameShape(src) {
		return 0, fmt.Errorf("%w: dst %v/%d, src %v/%d", ErrLayout, dst.Dims, dst.Halo, src.Dims, src.Halo)
	}
	if src.Halo < set.HalfWidth() {
		return 0, fmt.Errorf("%w: halo %d narrower than stencil half-width %d", ErrLayout, src.Halo, set.HalfWidth())
	}
	if set.Strides != src.Strides() {
		return 0, fmt.Errorf("%w: coefficient strides %+v, field strides %+v", ErrLayout, set.Strides, src.Strides())
	}

	var offs []int
	var coeffs []float64
	for t := range set.Terms {
		for k, c := range set.Terms[t].Coeffs {
			offs = append(offs, set.Offset(t, k+1))
			coeffs = append(coeffs, c)
		}
	}
	center := set.Center
	in, out := src.Data, dst.Data
	dims := src.Dims

	a.planes(dims[0], func(x0, x1 int) {
		for ix := x0; ix < x1; ix++ {
			for iy := 0; iy < dims[1]; iy++ {
				base := src.Index(ix, iy, 0)
				for i := base; i < base+dims[2]; i++ {
					acc := center * in[i]
					for j, off := range offs {
						acc += coeffs[j] * (in[i+off] + in[i-off])
					}
					out[i] = acc
				}
			}
		}
	})
	return center, nil
}

// planes runs fn over contiguous ranges of x-planes.
func (a *Applier) planes(n int, fn func(x0, x1 int)) {
	workers := a.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	var eg errgroup.Group
	chunk := (n + workers - 1) / workers
	for x0 := 0; x0 < n; x0 += chunk {
		x0 := x0
		x1 := min(x0+chunk, n)
		eg.Go(func() error {
			fn(x0, x1)
			return nil
		})
	}
	_ = eg.Wait()
}
