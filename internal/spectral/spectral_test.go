// spectral_test.go --  This file is part of goFD project.
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
	"testing"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/floats"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func topology(t *testing.T, tag grid.Lattice, celldm [6]float64, n [3]int, opts ...grid.TopologyOption) *grid.Topology {
	t.Helper()
	b, err := grid.BasisFromCellDM(tag, celldm)
	require.NoError(t, err)
	topo, err := grid.NewTopology(b, tag, n, opts...)
	require.NoError(t, err)
	return topo
}

// planeWave samples cos(2 pi m . s) at the local points, s in crystal units.
func planeWave(topo *grid.Topology, m [3]int) []float64 {
	d := topo.Dims()
	off := topo.Offset()
	h := topo.Spacing()
	res := make([]float64, 0, topo.LocalPoints())
	for ix := 0; ix < d[0]; ix++ {
		for iy := 0; iy < d[1]; iy++ {
			for iz := 0; iz < d[2]; iz++ {
				ph := float64(m[0]*(ix+off[0]))*h[0] + float64(m[1]*(iy+off[1]))*h[1] + float64(m[2]*(iz+off[2]))*h[2]
				res = append(res, math.Cos(2*math.Pi*ph))
			}
		}
	}
	return res
}

func gsq(t *testing.T, topo *grid.Topology, m [3]int) float64 {
	t.Helper()
	recip, err := topo.Basis().Reciprocal()
	require.NoError(t, err)
	sum := 0.0
	for k := 0; k < 3; k++ {
		g := 2 * math.Pi * (float64(m[0])*recip[0][k] + float64(m[1])*recip[1][k] + float64(m[2])*recip[2][k])
		sum += g * g
	}
	return sum
}

func TestPlaneWaveEigenvalue(t *testing.T) {
	cases := []struct {
		name   string
		tag    grid.Lattice
		celldm [6]float64
		n      [3]int
		m      [3]int
	}{
		{"sc", grid.CubicPrimitive, [6]float64{10}, [3]int{8, 8, 8}, [3]int{2, 0, 0}},
		{"ortho", grid.OrthorhombicPrimitive, [6]float64{8, 1.25, 1.5}, [3]int{8, 10, 12}, [3]int{1, -2, 3}},
		{"fcc", grid.CubicFC, [6]float64{10}, [3]int{8, 8, 8}, [3]int{1, 1, -2}},
		{"hex", grid.Hexagonal, [6]float64{6, 0, 1.6}, [3]int{6, 6, 10}, [3]int{1, 2, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			topo := topology(t, tc.tag, tc.celldm, tc.n)
			fft, err := NewFFT(topo, nil)
			require.NoError(t, err)

			x := planeWave(topo, tc.m)
			lap, err := fft.ForwardThenLaplacian(x)
			require.NoError(t, err)

			want := make([]float64, len(x))
			floats.ScaleTo(want, -gsq(t, topo, tc.m), x)
			assert.True(t, floats.EqualApprox(want, lap, 1e-9), "plane wave %v", tc.m)
		})
	}
}

func TestDecomposedMatchesSingle(t *testing.T) {
	celldm := [6]float64{10}
	n := [3]int{8, 8, 8}
	procs := [3]int{2, 1, 2}
	m := [3]int{1, 3, -1}

	single := topology(t, grid.CubicFC, celldm, n)
	fft, err := NewFFT(single, nil)
	require.NoError(t, err)
	whole, err := fft.ForwardThenLaplacian(planeWave(single, m))
	require.NoError(t, err)

	team := reduce.NewTeam(4)
	blocks := make([][]float64, 4)
	topos := make([]*grid.Topology, 4)
	err = team.Run(func(g reduce.Group) error {
		topo, err := grid.NewTopology(single.Basis(), grid.CubicFC, n, grid.WithDecomposition(procs, g.Rank()))
		if err != nil {
			return err
		}
		f, err := NewFFT(topo, g)
		if err != nil {
			return err
		}
		lap, err := f.ForwardThenLaplacian(planeWave(topo, m))
		if err != nil {
			return err
		}
		blocks[g.Rank()] = lap
		topos[g.Rank()] = topo
		return nil
	})
	require.NoError(t, err)

	for r, topo := range topos {
		d := topo.Dims()
		off := topo.Offset()
		for ix := 0; ix < d[0]; ix++ {
			for iy := 0; iy < d[1]; iy++ {
				for iz := 0; iz < d[2]; iz++ {
					got := blocks[r][(ix*d[1]+iy)*d[2]+iz]
					want := whole[((ix+off[0])*n[1]+iy+off[1])*n[2]+iz+off[2]]
					require.InDelta(t, want, got, 1e-12, "rank %d point %d %d %d", r, ix, iy, iz)
				}
			}
		}
	}
}

func TestLengthError(t *testing.T) {
	topo := topology(t, grid.CubicPrimitive, [6]float64{5}, [3]int{4, 4, 4})
	fft, err := NewFFT(topo, nil)
	require.NoError(t, err)
	_, err = fft.ForwardThenLaplacian(make([]float64, 10))
	assert.ErrorIs(t, err, ErrLength)
	_, err = fft.FreqBins(make([]float64, 10))
	assert.ErrorIs(t, err, ErrLength)
	_, err = ResidualRMS(make([]float64, 2), make([]float64, 3), nil)
	assert.ErrorIs(t, err, ErrLength)
}

func TestFreqBins(t *testing.T) {
	topo := topology(t, grid.CubicPrimitive, [6]float64{10}, [3]int{8, 8, 8})
	fft, err := NewFFT(topo, nil)
	require.NoError(t, err)

	bins, err := fft.FreqBins(planeWave(topo, [3]int{2, 0, 0}))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, floats.Sum(bins), 1e-12)
	assert.InDelta(t, 1.0, bins[2], 1e-12)

	zero, err := fft.FreqBins(make([]float64, topo.LocalPoints()))
	require.NoError(t, err)
	assert.Zero(t, floats.Sum(zero))
}

func TestResidualRMS(t *testing.T) {
	rms, err := ResidualRMS([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 2}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rms, 1e-15)

	rms, err = ResidualRMS(nil, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, rms)
}
