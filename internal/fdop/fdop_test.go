// fdop_test.go --  This file is part of goFD project.
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
	"math"
	"math/rand"
	"testing"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/halo"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"github.com/MirzaevaIV/goFD/internal/stencil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type lattice struct {
	name   string
	tag    grid.Lattice
	celldm [6]float64
	n      [3]int
}

var lattices = []lattice{
	{"sc", grid.CubicPrimitive, [6]float64{6}, [3]int{12, 12, 12}},
	{"ortho", grid.OrthorhombicPrimitive, [6]float64{6, 1.25, 0.8}, [3]int{12, 10, 14}},
	{"fcc", grid.CubicFC, [6]float64{8}, [3]int{12, 12, 12}},
	{"bcc", grid.CubicBC, [6]float64{6}, [3]int{12, 12, 12}},
	{"hex", grid.Hexagonal, [6]float64{5, 0, 1.6}, [3]int{12, 12, 16}},
}

func newTopology(t *testing.T, l lattice) *grid.Topology {
	t.Helper()
	b, err := grid.BasisFromCellDM(l.tag, l.celldm)
	require.NoError(t, err)
	topo, err := grid.NewTopology(b, l.tag, l.n)
	require.NoError(t, err)
	return topo
}

// fillAnalytic evaluates fn at every padded point, halo included, without
// periodic wrapping.
func fillAnalytic(topo *grid.Topology, f *grid.Field, fn func(r [3]float64) float64) {
	w := f.Halo
	for ix := -w; ix < f.Dims[0]+w; ix++ {
		for iy := -w; iy < f.Dims[1]+w; iy++ {
			for iz := -w; iz < f.Dims[2]+w; iz++ {
				f.Set(ix, iy, iz, fn(topo.Point(ix, iy, iz)))
			}
		}
	}
}

func randomField(topo *grid.Topology, w int, seed int64) *grid.Field {
	rng := rand.New(rand.NewSource(seed))
	f := topo.NewField(w)
	src := make([]float64, topo.LocalPoints())
	for i := range src {
		src[i] = rng.Float64() - 0.5
	}
	_ = f.Pack(src)
	_ = halo.Periodic{}.Fill(f)
	return f
}

func maxInterior(f *grid.Field, fn func(v float64) float64) float64 {
	res := 0.0
	for _, v := range f.Unpack(nil) {
		res = math.Max(res, fn(v))
	}
	return res
}

func TestApplyConstantAndQuadratic(t *testing.T) {
	for _, l := range lattices {
		t.Run(l.name, func(t *testing.T) {
			topo := newTopology(t, l)
			fam, ok := stencil.FamilyFor(l.tag)
			require.True(t, ok)
			for _, order := range []int{2, 4, 8, 12} {
				src := topo.NewField(order / 2)
				dst := topo.NewField(order / 2)
				set, err := fam.ComputeStencil(topo, order, src.Strides())
				require.NoError(t, err)

				fillAnalytic(topo, src, func([3]float64) float64 { return 3.7 })
				_, err = NewApplier().Apply(dst, src, set)
				require.NoError(t, err)
				assert.Less(t, maxInterior(dst, math.Abs), 1e-10*math.Abs(set.Center), "order %d constant", order)

				fillAnalytic(topo, src, func(r [3]float64) float64 {
					return r[0]*r[0] + r[1]*r[1] + r[2]*r[2]
				})
				_, err = NewApplier().Apply(dst, src, set)
				require.NoError(t, err)
				assert.Less(t, maxInterior(dst, func(v float64) float64 { return math.Abs(v - 6) }), 1e-6,
					"order %d quadratic", order)
			}
		})
	}
}

func TestGeneralizedQuadraticTriclinic(t *testing.T) {
	topo := newTopology(t, lattice{"tri", grid.TriclinicPrimitive, [6]float64{6, 1.1, 1.2, 0.2, 0.1, 0.3}, [3]int{10, 11, 12}})
	src := topo.NewField(3)
	dst := topo.NewField(3)
	set, err := stencil.NewBuilder().Build(topo, 6, src.Strides())
	require.NoError(t, err)

	fillAnalytic(topo, src, func(r [3]float64) float64 { return r[0]*r[0] - 2*r[1]*r[2] + 0.5*r[2]*r[2] })
	_, err = NewApplier().Apply(dst, src, set)
	require.NoError(t, err)
	assert.Less(t, maxInterior(dst, func(v float64) float64 { return math.Abs(v - 3) }), 1e-6)
}

// sineError is the worst error of the order-8 Laplacian of sin(2 pi x) on a
// unit cube sampled with n points.
func sineError(t *testing.T, n [3]int) float64 {
	t.Helper()
	b, err := grid.BasisFromCellDM(grid.CubicPrimitive, [6]float64{1})
	require.NoError(t, err)
	topo, err := grid.NewTopology(b, grid.CubicPrimitive, n)
	require.NoError(t, err)

	src := topo.NewField(4)
	dst := topo.NewField(4)
	fillAnalytic(topo, src, func(r [3]float64) float64 { return math.Sin(2 * math.Pi * r[0]) })
	require.NoError(t, halo.Periodic{}.Fill(src))

	set, err := stencil.NewBuilder().Build(topo, 8, src.Strides())
	require.NoError(t, err)
	_, err = NewApplier().Apply(dst, src, set)
	require.NoError(t, err)

	worst := 0.0
	for ix := 0; ix < n[0]; ix++ {
		want := -4 * math.Pi * math.Pi * math.Sin(2*math.Pi*float64(ix)/float64(n[0]))
		worst = math.Max(worst, math.Abs(dst.At(ix, 1, 1)-want))
	}
	return worst
}

func TestSineConvergence(t *testing.T) {
	tests := []struct {
		name          string
		coarse, fine  [3]int
		lower, higher float64
	}{
		// h = 1/8 against h = 1/16 on full cubes
		{"cube 8 to 16", [3]int{8, 8, 8}, [3]int{16, 16, 16}, 180, 300},
		{"rod 16 to 32", [3]int{16, 4, 4}, [3]int{32, 4, 4}, 200, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec, ef := sineError(t, tt.coarse), sineError(t, tt.fine)
			require.Greater(t, ef, 0.0)
			ratio := ec / ef
			assert.Greater(t, ratio, tt.lower, "errors %g %g", ec, ef)
			assert.Less(t, ratio, tt.higher, "errors %g %g", ec, ef)
		})
	}
}

func TestIsotropicPairsBitIdentical(t *testing.T) {
	topo := newTopology(t, lattice{"sc", grid.CubicPrimitive, [6]float64{7}, [3]int{10, 10, 10}})
	src := randomField(topo, 1, 7)
	one := topo.NewField(1)
	two := topo.NewField(1)

	a := NewApplier(WithWorkers(3))
	isotropicKernel(a, one, src, -6.0/0.49, 1.0/0.49, false)
	isotropicKernel(a, two, src, -6.0/0.49, 1.0/0.49, true)
	assert.Equal(t, one.Data, two.Data)

	// dimy even takes the paired loop through the public entry point
	sp := SpacingsOf(topo)
	require.Less(t, sp.anisotropy(), isotropyLimit)
	legacy := topo.NewField(1)
	cc, err := a.ApplyLegacy(legacy, src, grid.CubicPrimitive, sp)
	require.NoError(t, err)
	l := sp.steps()
	isotropicKernel(a, one, src, cc, 1.0/(l[0]*l[0]), false)
	assert.Equal(t, one.Data, legacy.Data)
}

func TestLegacyMatchesFamilies(t *testing.T) {
	for _, l := range lattices {
		t.Run(l.name, func(t *testing.T) {
			topo := newTopology(t, l)
			src := randomField(topo, 1, 3)
			want := topo.NewField(1)
			got := topo.NewField(1)

			fam, _ := stencil.FamilyFor(l.tag)
			set, err := fam.ComputeStencil(topo, 2, src.Strides())
			require.NoError(t, err)

			a := NewApplier()
			c1, err := a.Apply(want, src, set)
			require.NoError(t, err)
			c2, err := a.ApplyLegacy(got, src, l.tag, SpacingsOf(topo))
			require.NoError(t, err)

			assert.InDelta(t, c1, c2, 1e-12*math.Abs(c1))
			wv, gv := want.Unpack(nil), got.Unpack(nil)
			for i := range wv {
				require.InDelta(t, wv[i], gv[i], 1e-11*math.Abs(c1), "point %d", i)
			}
		})
	}
}

func TestLegacyUnsupportedLattice(t *testing.T) {
	topo := newTopology(t, lattice{"mono", grid.MonoclinicPrimitive, [6]float64{6, 1.1, 1.2, 0.3}, [3]int{6, 6, 6}})
	src := randomField(topo, 1, 1)
	dst := topo.NewField(1)
	for i := range dst.Data {
		dst.Data[i] = 42
	}
	_, err := NewApplier().ApplyLegacy(dst, src, topo.Lattice(), SpacingsOf(topo))
	require.ErrorIs(t, err, ErrUnsupportedLattice)
	for _, v := range dst.Data {
		require.Equal(t, 42.0, v)
	}
	assert.NotContains(t, LegacyLattices(), grid.MonoclinicPrimitive)
	assert.Contains(t, LegacyLattices(), grid.Hexagonal)
}

func TestLegacyUnequalSteps(t *testing.T) {
	tests := []struct {
		l  lattice
		ok bool
	}{
		{lattice{"fcc", grid.CubicFC, [6]float64{8}, [3]int{12, 10, 12}}, false},
		{lattice{"bcc", grid.CubicBC, [6]float64{6}, [3]int{12, 12, 14}}, false},
		{lattice{"hex in-plane", grid.Hexagonal, [6]float64{5, 0, 1.6}, [3]int{12, 10, 16}}, false},
		{lattice{"hex axial", grid.Hexagonal, [6]float64{5, 0, 1.6}, [3]int{12, 12, 10}}, true},
		{lattice{"ortho", grid.OrthorhombicPrimitive, [6]float64{6, 1.25, 0.8}, [3]int{12, 10, 14}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.l.name, func(t *testing.T) {
			topo := newTopology(t, tt.l)
			src := randomField(topo, 1, 5)
			dst := topo.NewField(1)
			_, err := NewApplier().ApplyLegacy(dst, src, tt.l.tag, SpacingsOf(topo))
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrLayout)
			for _, v := range dst.Data {
				require.Zero(t, v)
			}
		})
	}
}

func TestApplyLayoutErrors(t *testing.T) {
	topo := newTopology(t, lattices[0])
	set, err := stencil.Orthorhombic{}.ComputeStencil(topo, 8, grid.StridesFor(topo.Dims(), 4))
	require.NoError(t, err)

	_, err = NewApplier().Apply(topo.NewField(2), topo.NewField(2), set)
	require.ErrorIs(t, err, ErrLayout)
	_, err = NewApplier().Apply(topo.NewField(4), topo.NewField(5), set)
	require.ErrorIs(t, err, ErrLayout)
	_, err = NewApplier().Apply(topo.NewField(5), topo.NewField(5), set)
	require.ErrorIs(t, err, ErrLayout)
}

func TestWorkersAgree(t *testing.T) {
	topo := newTopology(t, lattices[2])
	src := randomField(topo, 4, 11)
	set, err := stencil.NewBuilder().Build(topo, 8, src.Strides())
	require.NoError(t, err)

	serial := topo.NewField(4)
	parallel := topo.NewField(4)
	_, err = NewApplier(WithWorkers(1)).Apply(serial, src, set)
	require.NoError(t, err)
	_, err = NewApplier(WithWorkers(5)).Apply(parallel, src, set)
	require.NoError(t, err)
	assert.Equal(t, serial.Data, parallel.Data)
}

func TestKineticEnergyDecomposed(t *testing.T) {
	b, err := grid.BasisFromCellDM(grid.CubicPrimitive, [6]float64{8})
	require.NoError(t, err)
	global := [3]int{8, 8, 8}
	gauss := func(r [3]float64) float64 {
		d := [3]float64{r[0] - 4, r[1] - 4, r[2] - 4}
		return math.Exp(-0.8 * (d[0]*d[0] + d[1]*d[1] + d[2]*d[2]))
	}
	sample := func(topo *grid.Topology) []float64 {
		d := topo.Dims()
		x := make([]float64, 0, topo.LocalPoints())
		for ix := 0; ix < d[0]; ix++ {
			for iy := 0; iy < d[1]; iy++ {
				for iz := 0; iz < d[2]; iz++ {
					x = append(x, gauss(topo.Point(ix, iy, iz)))
				}
			}
		}
		return x
	}

	single, err := grid.NewTopology(b, grid.CubicPrimitive, global)
	require.NoError(t, err)
	op, err := NewOperator(single, stencil.NewFamilyProvider(), 8, halo.Periodic{}, nil)
	require.NoError(t, err)
	want, err := op.KineticEnergy(sample(single), reduce.Local{})
	require.NoError(t, err)
	assert.Greater(t, want, 0.0)

	team := reduce.NewTeam(2)
	got := make([]float64, 2)
	err = team.Run(func(g reduce.Group) error {
		topo, err := grid.NewTopology(b, grid.CubicPrimitive, global, grid.WithDecomposition([3]int{2, 1, 1}, g.Rank()))
		if err != nil {
			return err
		}
		op, err := NewOperator(topo, stencil.NewFamilyProvider(), 8, halo.Gathered{Topo: topo, Group: g}, NewApplier(WithWorkers(1)))
		if err != nil {
			return err
		}
		ke, err := op.KineticEnergy(sample(topo), g)
		got[g.Rank()] = ke
		return err
	})
	require.NoError(t, err)
	assert.InDelta(t, want, got[0], 1e-12*want)
	assert.Equal(t, got[0], got[1])
}

func TestKineticEnergyLayout(t *testing.T) {
	topo := newTopology(t, lattices[0])
	_, err := KineticEnergy(make([]float64, 3), make([]float64, 3), topo, reduce.Local{})
	require.ErrorIs(t, err, ErrLayout)
	_, err = FieldKineticEnergy(topo.NewField(1), topo.NewField(2), topo, reduce.Local{})
	require.ErrorIs(t, err, ErrLayout)
}
