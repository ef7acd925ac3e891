// builder.go --  This file is part of goFD project.
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

package stencil

import (
	"cmp"
	"fmt"
	"math"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultWeightPower = 3.0
	DefaultCutoff      = 0.1

	metricTolerance = 1e-10
	svdRcond        = 1e-12
	zeroWeight      = 1e-12
)

// Builder constructs Laplacian stencils for arbitrary lattices.
type Builder struct {
	offdiag     bool
	weightPower float64
	cutoff      float64
	logger      *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithOffDiagonal enables or disables the diagonal directions. Without
// them only the three axes are used with unit metric weight.
func WithOffDiagonal(on bool) Option {
	return func(b *Builder) { b.offdiag = on }
}

// WithWeightPower sets the exponent p of the significance (L_min/L_d)^p.
func WithWeightPower(p float64) Option {
	return func(b *Builder) { b.weightPower = p }
}

// WithCutoff sets the significance below which a diagonal is never used.
func WithCutoff(c float64) Option {
	return func(b *Builder) { b.cutoff = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder returns a builder with off-diagonal terms enabled, weight
// power 3 and cutoff 0.1 unless overridden.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		offdiag:     true,
		weightPower: DefaultWeightPower,
		cutoff:      DefaultCutoff,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildStencil is a shorthand for NewBuilder with the given knobs.
func BuildStencil(topo *grid.Topology, order int, strides grid.Strides, offdiag bool, weightPower float64) (*Set, error) {
	return NewBuilder(WithOffDiagonal(offdiag), WithWeightPower(weightPower)).Build(topo, order, strides)
}

type candidate struct {
	dir          Direction
	length       float64
	unit         [3]float64
	significance float64
}

// Build returns the stencil of the given order for topo. Offsets are
// computed with strides.
func (b *Builder) Build(topo *grid.Topology, order int, strides grid.Strides) (*Set, error) {
	if err := checkOrder(order, 4); err != nil {
		return nil, err
	}
	if err := topo.Basis().Validate(); err != nil {
		return nil, err
	}

	cands := b.candidates(topo)
	if !b.offdiag {
		if !topo.Basis().IsOrthogonal(1e-8) {
			b.logger.Warn("off-diagonal terms disabled on a non-orthogonal lattice, stencil is not a Laplacian",
				zap.Stringer("lattice", topo.Lattice()))
		}
		return assemble(topo, order, strides, []pick{
			{Directions[0], 1}, {Directions[1], 1}, {Directions[2], 1},
		})
	}

	included := append([]candidate(nil), cands[:3]...)
	var rest []candidate
	for _, c := range cands[3:] {
		if c.significance >= b.cutoff {
			rest = append(rest, c)
		}
	}
	slices.SortStableFunc(rest, func(x, y candidate) int {
		return cmp.Compare(x.length, y.length)
	})

	var weights []float64
	for {
		w, ok := solveMetric(included)
		if ok {
			weights = w
			break
		}
		if len(rest) == 0 {
			return nil, fmt.Errorf("%w: lattice %v with %d significant directions",
				ErrNoSolution, topo.Lattice(), len(included))
		}
		included = append(included, rest[0])
		rest = rest[1:]
	}

	picks := make([]pick, 0, len(included))
	for i, c := range included {
		if !c.dir.IsAxis() && math.Abs(weights[i]) < zeroWeight {
			continue
		}
		picks = append(picks, pick{c.dir, weights[i]})
		b.logger.Debug("stencil direction",
			zap.String("dir", c.dir.Name),
			zap.Float64("length", c.length),
			zap.Float64("significance", c.significance),
			zap.Float64("weight", weights[i]))
	}
	// keep the canonical direction order so coefficient vectors are stable
	slices.SortFunc(picks, func(x, y pick) int { return cmp.Compare(x.dir.Index, y.dir.Index) })
	return assemble(topo, order, strides, picks)
}

func (b *Builder) candidates(topo *grid.Topology) []candidate {
	res := make([]candidate, len(Directions))
	lmin := math.Inf(1)
	for i, d := range Directions {
		r := topo.Step(d.Step)
		l := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
		res[i] = candidate{dir: d, length: l, unit: [3]float64{r[0] / l, r[1] / l, r[2] / l}}
		lmin = math.Min(lmin, l)
	}
	for i := range res {
		res[i].significance = math.Pow(lmin/res[i].length, b.weightPower)
	}
	return res
}

// solveMetric finds weights with sum_d w_d u_d u_d^T = I, the minimum-norm
// least squares solution; ok is false when the residual is not zero.
func solveMetric(cands []candidate) ([]float64, bool) {
	n := len(cands)
	a := mat.NewDense(6, n, nil)
	for j, c := range cands {
		u := c.unit
		a.Set(0, j, u[0]*u[0])
		a.Set(1, j, u[1]*u[1])
		a.Set(2, j, u[2]*u[2])
		a.Set(3, j, u[0]*u[1])
		a.Set(4, j, u[0]*u[2])
		a.Set(5, j, u[1]*u[2])
	}
	rhs := mat.NewVecDense(6, []float64{1, 1, 1, 0, 0, 0})

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, false
	}
	rank := svd.Rank(svdRcond)
	if rank == 0 {
		return nil, false
	}
	var w mat.VecDense
	svd.SolveVecTo(&w, rhs, rank)

	var r mat.VecDense
	r.MulVec(a, &w)
	r.SubVec(&r, rhs)
	if mat.Norm(&r, 2) > metricTolerance {
		return nil, false
	}
	res := make([]float64, n)
	for i := range res {
		res[i] = w.AtVec(i)
	}
	return res, true
}

type pick struct {
	dir    Direction
	weight float64
}

func assemble(topo *grid.Topology, order int, strides grid.Strides, picks []pick) (*Set, error) {
	a, err := TaylorWeights(order)
	if err != nil {
		return nil, err
	}
	s := &Set{Order: order, Strides: strides}
	for _, p := range picks {
		r := topo.Step(p.dir.Step)
		l := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2])
		coeffs := make([]float64, len(a))
		for k := range a {
			coeffs[k] = p.weight * a[k] / (l * l)
		}
		s.Terms = append(s.Terms, Term{Direction: p.dir, Weight: p.weight, Length: l, Coeffs: coeffs})
	}
	s.updateCenter()
	return s, nil
}
