// calib.go --  This file is part of goFD project.
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

// Package calib tunes finite-difference stencil coefficients so that the
// kinetic energies of atomic orbitals match their plane-wave values.
package calib

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/MirzaevaIV/goFD/internal/fdop"
	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/halo"
	"github.com/MirzaevaIV/goFD/internal/orbital"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"github.com/MirzaevaIV/goFD/internal/spectral"
	"github.com/MirzaevaIV/goFD/internal/stencil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedOrder = errors.New("calib: gradient calibration is implemented for order 8 only")
	ErrWeightMismatch   = errors.New("calib: occupation weights do not match the orbitals")
	ErrNoOrbitals       = errors.New("calib: no orbitals to calibrate on")
	ErrUnknownStrategy  = errors.New("calib: unknown strategy")
)

// DefaultIterations is the L-BFGS iteration budget.
const DefaultIterations = 20

// stationaryGradient is the infinity norm of the loss gradient below which
// the starting coefficients are taken as optimal.
const stationaryGradient = 1e-12

// slopeLimit is the smallest |dKE/dc| an orbital needs to take part in the
// linear fit.
const slopeLimit = 1e-5

type Strategy int

const (
	// StrategyLinearFit scales the truncation correction of the stencil by
	// a two-point fit of the kinetic energy error.
	StrategyLinearFit Strategy = iota
	// StrategyGradient minimizes the weighted squared kinetic energy error
	// over all free coefficients with L-BFGS.
	StrategyGradient
)

var strategyNames = map[Strategy]string{
	StrategyLinearFit: "linear",
	StrategyGradient:  "gradient",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Sample is one orbital prepared for calibration.
type Sample struct {
	Name   string
	Values []float64   // unpadded local block
	Field  *grid.Field // padded, halo filled
	// Overlaps[j] is dKE/dc_j; only filled by the gradient strategy.
	Overlaps []float64
	KERef    float64
	Weight   float64
}

// State is the progress of one L-BFGS run.
type State struct {
	Coeffs   []float64
	Gradient []float64
	// Iteration counts accepted L-BFGS steps.
	Iteration int
	// Loss[0] is the loss of the starting coefficients.
	Loss []float64
}

type Result struct {
	RunID     string
	Strategy  Strategy
	Reference *stencil.Set
	Set       *stencil.Set
	// Scale multiplies the truncation correction (linear fit only).
	Scale float64
	// State is nil for the linear fit.
	State           *State
	InitialGradient []float64
	Samples         []Sample
	// KEStart and KEFinal are the finite-difference kinetic energies of
	// the samples with the reference and the calibrated coefficients.
	KEStart, KEFinal []float64
}

// Calibrator is bound to one topology. Calibrate is collective over the
// reduction group when the topology is decomposed.
type Calibrator struct {
	topo        *grid.Topology
	provider    stencil.Provider
	group       reduce.Group
	halo        halo.Exchange
	spectral    spectral.Transform
	applier     *fdop.Applier
	logger      *zap.Logger
	iterations  int
	gradTol     float64
	strict      bool
	workers     int
	occupations []float64
}

type Option func(*Calibrator)

func WithLogger(l *zap.Logger) Option {
	return func(c *Calibrator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithGroup sets the reduction group of the ranks sharing the topology.
func WithGroup(g reduce.Group) Option {
	return func(c *Calibrator) { c.group = g }
}

func WithHalo(h halo.Exchange) Option {
	return func(c *Calibrator) { c.halo = h }
}

// WithSpectral replaces the plane-wave reference Laplacian.
func WithSpectral(t spectral.Transform) Option {
	return func(c *Calibrator) { c.spectral = t }
}

func WithApplier(a *fdop.Applier) Option {
	return func(c *Calibrator) { c.applier = a }
}

// WithProvider sets the source of the starting coefficients.
func WithProvider(p stencil.Provider) Option {
	return func(c *Calibrator) { c.provider = p }
}

func WithIterations(n int) Option {
	return func(c *Calibrator) {
		if n > 0 {
			c.iterations = n
		}
	}
}

// WithGradientTolerance stops L-BFGS once the infinity norm of the gradient
// drops below tol. Zero runs the full iteration budget.
func WithGradientTolerance(tol float64) Option {
	return func(c *Calibrator) { c.gradTol = tol }
}

// WithStrictWeights turns an occupation/orbital count mismatch into an error.
func WithStrictWeights(on bool) Option {
	return func(c *Calibrator) { c.strict = on }
}

// WithWorkers bounds the goroutines used for overlaps and stencil sweeps.
func WithWorkers(n int) Option {
	return func(c *Calibrator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithOccupations overrides the orbital weights, one per orbital.
func WithOccupations(w []float64) Option {
	return func(c *Calibrator) { c.occupations = w }
}

func New(topo *grid.Topology, opts ...Option) *Calibrator {
	c := &Calibrator{
		topo:       topo,
		logger:     zap.NewNop(),
		iterations: DefaultIterations,
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.group == nil {
		c.group = reduce.Local{}
	}
	if c.provider == nil {
		c.provider = stencil.NewFamilyProvider(stencil.WithLogger(c.logger))
	}
	if c.halo == nil {
		if topo.Decomposed() {
			c.halo = halo.Gathered{Topo: topo, Group: c.group}
		} else {
			c.halo = halo.Periodic{}
		}
	}
	if c.applier == nil {
		c.applier = fdop.NewApplier(fdop.WithWorkers(c.workers), fdop.WithLogger(c.logger))
	}
	return c
}

// Calibrate tunes the stencil of the given order on orbitals.
func (c *Calibrator) Calibrate(ctx context.Context, orbitals []orbital.Orbital, order int, strategy Strategy) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(orbitals) == 0 {
		return nil, ErrNoOrbitals
	}
	if strategy == StrategyGradient && order != 8 {
		return nil, fmt.Errorf("%w: order %d", ErrUnsupportedOrder, order)
	}
	if _, ok := strategyNames[strategy]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, strategy)
	}

	res := &Result{RunID: uuid.NewString(), Strategy: strategy}
	log := c.logger.With(zap.String("run", res.RunID))
	log.Info("calibration started",
		zap.Stringer("strategy", strategy),
		zap.Int("order", order),
		zap.Int("orbitals", len(orbitals)),
		zap.Stringer("grid", c.topo))

	weights, err := c.weights(orbitals, log)
	if err != nil {
		return nil, err
	}

	w := order / 2
	strides := grid.StridesFor(c.topo.Dims(), w)
	ref, err := c.provider.Stencil(c.topo, order, strides)
	if err != nil {
		return nil, fmt.Errorf("calib: reference stencil: %w", err)
	}
	res.Reference = ref

	res.Samples, err = c.samples(orbitals, weights, w)
	if err != nil {
		return nil, err
	}
	res.KEStart, err = c.kinetic(res.Samples, ref)
	if err != nil {
		return nil, err
	}

	switch strategy {
	case StrategyLinearFit:
		err = c.linearFit(res, log)
	case StrategyGradient:
		err = c.gradient(ctx, res, log)
	}
	if err != nil {
		return nil, err
	}

	res.KEFinal, err = c.kinetic(res.Samples, res.Set)
	if err != nil {
		return nil, err
	}
	for i, s := range res.Samples {
		log.Debug("kinetic energy",
			zap.String("orbital", s.Name),
			zap.Float64("spectral", s.KERef),
			zap.Float64("start", res.KEStart[i]),
			zap.Float64("final", res.KEFinal[i]))
	}
	log.Info("calibration finished", zap.Float64("scale", res.Scale))
	return res, nil
}

// weights resolves one weight per orbital.
func (c *Calibrator) weights(orbitals []orbital.Orbital, log *zap.Logger) ([]float64, error) {
	res := make([]float64, len(orbitals))
	for i, o := range orbitals {
		res[i] = o.Weight
	}
	if c.occupations == nil {
		return res, nil
	}
	if len(c.occupations) != len(orbitals) {
		if c.strict {
			return nil, fmt.Errorf("%w: %d weights for %d orbitals", ErrWeightMismatch, len(c.occupations), len(orbitals))
		}
		log.Warn("occupation weights ignored",
			zap.Int("weights", len(c.occupations)),
			zap.Int("orbitals", len(orbitals)))
		return res, nil
	}
	copy(res, c.occupations)
	return res, nil
}

// samples pads every orbital, fills its halo and computes the spectral
// kinetic energy. Collective.
func (c *Calibrator) samples(orbitals []orbital.Orbital, weights []float64, w int) ([]Sample, error) {
	if c.spectral == nil {
		fft, err := spectral.NewFFT(c.topo, c.group)
		if err != nil {
			return nil, err
		}
		c.spectral = fft
	}
	res := make([]Sample, len(orbitals))
	for i, o := range orbitals {
		f := c.topo.NewField(w)
		if err := f.Pack(o.Values); err != nil {
			return nil, fmt.Errorf("calib: orbital %s: %w", o.Name, err)
		}
		if err := c.halo.Fill(f); err != nil {
			return nil, err
		}
		lap, err := c.spectral.ForwardThenLaplacian(o.Values)
		if err != nil {
			return nil, err
		}
		ke, err := fdop.KineticEnergy(o.Values, lap, c.topo, c.group)
		if err != nil {
			return nil, err
		}
		res[i] = Sample{Name: o.Name, Values: o.Values, Field: f, KERef: ke, Weight: weights[i]}
	}
	return res, nil
}

// kinetic evaluates the finite-difference kinetic energy of every sample.
// Collective.
func (c *Calibrator) kinetic(samples []Sample, set *stencil.Set) ([]float64, error) {
	res := make([]float64, len(samples))
	if len(samples) == 0 {
		return res, nil
	}
	dst := c.topo.NewField(samples[0].Field.Halo)
	for i, s := range samples {
		if _, err := c.applier.Apply(dst, s.Field, set); err != nil {
			return nil, err
		}
		ke, err := fdop.FieldKineticEnergy(s.Field, dst, c.topo, c.group)
		if err != nil {
			return nil, err
		}
		res[i] = ke
	}
	return res, nil
}
