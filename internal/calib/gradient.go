// gradient.go --  This file is part of goFD project.
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

package calib

import (
	"context"
	"errors"
	"math"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"github.com/MirzaevaIV/goFD/internal/stencil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Overlaps returns the derivative of every sample's finite-difference
// kinetic energy with respect to every free coefficient of set:
//
//	o[i][j] = -1/2 (Omega/N) sum_r psi_i(r) (psi_i(r+s_j) + psi_i(r-s_j) - 2 psi_i(r))
//
// Samples are split over workers, each accumulating into its own matrix;
// the partial matrices are added serially and then summed over ranks.
func (c *Calibrator) Overlaps(samples []Sample, set *stencil.Set) *mat.Dense {
	n, m := len(samples), set.NumCoeffs()
	workers := max(1, min(c.workers, n))
	vol := c.topo.VolumeElement()

	parts := make([]*mat.Dense, workers)
	var eg errgroup.Group
	for w := range parts {
		w := w
		parts[w] = mat.NewDense(n, m, nil)
		eg.Go(func() error {
			for i := w; i < n; i += workers {
				overlapRow(parts[w].RawRowView(i), samples[i].Field, set, vol)
			}
			return nil
		})
	}
	_ = eg.Wait()

	res := mat.NewDense(n, m, nil)
	for _, p := range parts {
		res.Add(res, p)
	}
	c.group.SumMatrix(res)
	return res
}

func overlapRow(row []float64, f *grid.Field, set *stencil.Set, vol float64) {
	in := f.Data
	j := 0
	for t := range set.Terms {
		for k := 1; k <= len(set.Terms[t].Coeffs); k++ {
			off := set.Offset(t, k)
			sum := 0.0
			for ix := 0; ix < f.Dims[0]; ix++ {
				for iy := 0; iy < f.Dims[1]; iy++ {
					base := f.Index(ix, iy, 0)
					for i := base; i < base+f.Dims[2]; i++ {
						sum += in[i] * (in[i+off] + in[i-off] - 2*in[i])
					}
				}
			}
			row[j] = -0.5 * vol * sum
			j++
		}
	}
}

// gradient runs L-BFGS on the weighted squared kinetic energy error.
func (c *Calibrator) gradient(ctx context.Context, res *Result, log *zap.Logger) error {
	ov := c.Overlaps(res.Samples, res.Reference)
	for i := range res.Samples {
		res.Samples[i].Overlaps = ov.RawRowView(i)
	}

	work := res.Reference.Clone()
	obj := &objective{c: c, samples: res.Samples, set: work}
	state := &State{}
	rec := &lossRecorder{ctx: ctx, group: c.group, log: log, state: state}

	// a stationary start is returned unchanged
	x0 := res.Reference.Vector()
	stop := c.gradTol
	if stop <= 0 {
		stop = stationaryGradient
	}
	g0 := make([]float64, len(x0))
	obj.grad(g0, x0)
	if obj.err != nil {
		return obj.err
	}
	if floats.Norm(g0, math.Inf(1)) <= stop {
		loss := obj.loss(x0)
		if obj.err != nil {
			return obj.err
		}
		res.Set = res.Reference.Clone()
		res.State = &State{
			Coeffs:   x0,
			Gradient: g0,
			Loss:     []float64{loss},
		}
		res.InitialGradient = append([]float64(nil), g0...)
		log.Info("optimization finished",
			zap.String("status", "stationary start"),
			zap.Int("iterations", 0),
			zap.Float64("loss", res.State.Loss[0]))
		return nil
	}

	method := &optimize.LBFGS{}
	settings := &optimize.Settings{
		// the starting location counts as the first major iteration
		MajorIterations: c.iterations + 1,
		Converger:       optimize.NeverTerminate{},
		Recorder:        rec,
	}
	if c.gradTol > 0 {
		settings.GradientThreshold = c.gradTol
		method.GradStopThreshold = c.gradTol
	}

	out, err := optimize.Minimize(optimize.Problem{Func: obj.loss, Grad: obj.grad}, x0, settings, method)
	if obj.err != nil {
		return obj.err
	}
	switch {
	case err == nil:
	case errors.Is(err, optimize.ErrLinesearcherFailure), errors.Is(err, optimize.ErrNoProgress):
		log.Warn("line search stopped early", zap.Error(err))
	case rec.cancelled:
		return ctx.Err()
	default:
		return err
	}
	if out == nil {
		return errors.New("calib: optimizer returned no result")
	}

	final := res.Reference.Clone()
	if err := final.SetVector(out.Location.X); err != nil {
		return err
	}
	res.Set = final

	state.Coeffs = final.Vector()
	if out.Location.Gradient != nil {
		state.Gradient = append([]float64(nil), out.Location.Gradient...)
	}
	state.Iteration = max(0, out.Stats.MajorIterations-1)
	if len(state.Loss) < out.Stats.MajorIterations {
		state.Loss = append(state.Loss, out.Location.F)
	}
	res.State = state
	res.InitialGradient = rec.initial
	log.Info("optimization finished",
		zap.Stringer("status", out.Status),
		zap.Int("iterations", state.Iteration),
		zap.Float64("loss", out.Location.F))
	return nil
}

// objective evaluates the loss through the stencil applier. The kinetic
// energies of the last evaluated point are cached since L-BFGS asks for
// the value and the gradient at the same point.
type objective struct {
	c       *Calibrator
	samples []Sample
	set     *stencil.Set

	lastX  []float64
	lastKE []float64
	err    error
}

func (o *objective) energies(x []float64) []float64 {
	if o.lastX != nil && floats.Equal(o.lastX, x) {
		return o.lastKE
	}
	if err := o.set.SetVector(x); err != nil {
		o.err = err
		return nil
	}
	ke, err := o.c.kinetic(o.samples, o.set)
	if err != nil {
		o.err = err
		return nil
	}
	o.lastX = append(o.lastX[:0], x...)
	o.lastKE = ke
	return ke
}

func (o *objective) loss(x []float64) float64 {
	ke := o.energies(x)
	if ke == nil {
		return math.NaN()
	}
	sum := 0.0
	for i, s := range o.samples {
		d := ke[i] - s.KERef
		sum += s.Weight * d * d
	}
	return sum
}

func (o *objective) grad(grad, x []float64) {
	for j := range grad {
		grad[j] = 0
	}
	ke := o.energies(x)
	if ke == nil {
		floats.AddConst(math.NaN(), grad)
		return
	}
	for i, s := range o.samples {
		floats.AddScaled(grad, 2*s.Weight*(ke[i]-s.KERef), s.Overlaps)
	}
}

// lossRecorder logs every accepted L-BFGS step and stops the run when the
// context is cancelled on any rank.
type lossRecorder struct {
	ctx   context.Context
	group reduce.Group
	log   *zap.Logger
	state *State

	initial   []float64
	cancelled bool
}

func (r *lossRecorder) Init() error { return nil }

func (r *lossRecorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op != optimize.MajorIteration {
		return nil
	}
	r.state.Loss = append(r.state.Loss, loc.F)
	gnorm := 0.0
	if loc.Gradient != nil {
		gnorm = floats.Norm(loc.Gradient, math.Inf(1))
		if r.initial == nil {
			r.initial = append([]float64(nil), loc.Gradient...)
		}
	}
	r.log.Info("iteration",
		zap.Int("iter", stats.MajorIterations-1),
		zap.Float64("loss", loc.F),
		zap.Float64("gradient", gnorm))

	flag := 0.0
	if r.ctx.Err() != nil {
		flag = 1
	}
	if r.group.SumScalar(flag) > 0 {
		r.cancelled = true
		if err := r.ctx.Err(); err != nil {
			return err
		}
		return context.Canceled
	}
	return nil
}
