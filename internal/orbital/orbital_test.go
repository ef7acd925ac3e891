// orbital_test.go --  This file is part of goFD project.
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

import (
	"testing"

	"github.com/MirzaevaIV/goFD/internal/fdop"
	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"github.com/MirzaevaIV/goFD/internal/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func cubicCell(t *testing.T, a float64, n int) *grid.Topology {
	t.Helper()
	b, err := grid.BasisFromCellDM(grid.CubicPrimitive, [6]float64{a})
	require.NoError(t, err)
	topo, err := grid.NewTopology(b, grid.CubicPrimitive, [3]int{n, n, n})
	require.NoError(t, err)
	return topo
}

func gridNorm(topo *grid.Topology, v []float64) float64 {
	return topo.VolumeElement() * floats.Dot(v, v)
}

func TestParseAtoms(t *testing.T) {
	atoms, err := ParseAtoms([]string{
		"O 0.0 0.0 0.1173",
		"",
		"H 0.0 0.7572 -0.4692",
		"H 0.0 -0.7572 -0.4692",
	})
	require.NoError(t, err)
	require.Len(t, atoms, 3)
	assert.Equal(t, 8, atoms[0].Z)
	assert.Equal(t, "H3", atoms[2].Name)
	assert.Equal(t, "H", atoms[1].Symbol())
	assert.InDelta(t, 0.7572/a_B, atoms[1].Coords[1], 1e-12)

	_, err = ParseAtoms([]string{"Xx 0 0 0"})
	assert.ErrorIs(t, err, ErrUnknownElement)
	_, err = ParseAtoms([]string{"H 0 0"})
	assert.ErrorIs(t, err, ErrAtomFormat)
	_, err = ParseAtoms([]string{"H 0 zero 0"})
	assert.ErrorIs(t, err, ErrAtomFormat)
}

func TestHydrogenIntegrals(t *testing.T) {
	shells, err := STO3G("H")
	require.NoError(t, err)
	h := AO{PGs: shells[0].PGs}

	s, err := Overlap([]AO{h})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.At(0, 0), 1e-5)

	ke, err := KineticEnergy(h)
	require.NoError(t, err)
	assert.InDelta(t, 0.7600, ke, 1e-4)

	// two centres: symmetric and smaller than on-site
	far := AO{PGs: shells[0].PGs, Coords: [3]float64{1.4, 0, 0}}
	kin, err := Kinetic([]AO{h, far})
	require.NoError(t, err)
	assert.InDelta(t, kin.At(0, 1), kin.At(1, 0), 1e-12)
	assert.Less(t, kin.At(0, 1), kin.At(0, 0))

	_, err = KineticEnergy(AO{PGs: shells[0].PGs, L: [3]int{1, 0, 0}})
	assert.ErrorIs(t, err, ErrNotSType)
}

func TestSpectralKineticEnergyMatchesAnalytic(t *testing.T) {
	topo := cubicCell(t, 18, 54)
	shells, err := STO3G("H")
	require.NoError(t, err)
	ao := AO{PGs: shells[0].PGs, Coords: topo.Basis().ToCartesian([3]float64{0.5, 0.5, 0.5})}

	x, err := ao.Sample(topo)
	require.NoError(t, err)
	fft, err := spectral.NewFFT(topo, nil)
	require.NoError(t, err)
	lap, err := fft.ForwardThenLaplacian(x)
	require.NoError(t, err)
	ke, err := fdop.KineticEnergy(x, lap, topo, reduce.Local{})
	require.NoError(t, err)

	want, err := KineticEnergy(ao)
	require.NoError(t, err)
	assert.InEpsilon(t, want, ke/gridNorm(topo, x), 1e-4)
}

func TestGaussianProvider(t *testing.T) {
	topo := cubicCell(t, 18, 54)
	atoms, err := ParseAtoms([]string{
		"O 0.0 0.0 0.1173",
		"H 0.0 0.7572 -0.4692",
		"H 0.0 -0.7572 -0.4692",
	})
	require.NoError(t, err)

	orbs, err := NewGaussian(atoms).Orbitals(topo)
	require.NoError(t, err)
	require.Len(t, orbs, 6)

	names := make([]string, len(orbs))
	for i, o := range orbs {
		names[i] = o.Name
		assert.Len(t, o.Values, topo.LocalPoints())
	}
	assert.Equal(t, []string{"O 1s", "O 2s", "O 2px", "O 2py", "O 2pz", "H 1s"}, names)
	assert.InDelta(t, 2.0, orbs[0].Weight, 1e-15)
	assert.InDelta(t, 4.0/3.0, orbs[3].Weight, 1e-15)
	assert.InDelta(t, 2.0, orbs[5].Weight, 1e-15)
	assert.Equal(t, 1, orbs[2].L)

	// the 2p and valence s functions are normalized on the grid too
	for _, i := range []int{1, 2, 5} {
		assert.InDelta(t, 1.0, gridNorm(topo, orbs[i].Values), 1e-3, orbs[i].Name)
	}
}

func TestGaussianProviderErrors(t *testing.T) {
	topo := cubicCell(t, 10, 8)
	_, err := NewGaussian(nil).Orbitals(topo)
	assert.ErrorIs(t, err, ErrNoAtoms)

	atoms, err := ParseAtoms([]string{"F 0 0 0"})
	require.NoError(t, err)
	_, err = NewGaussian(atoms).Orbitals(topo)
	assert.ErrorIs(t, err, ErrNoBasis)
}

func TestMinimumImage(t *testing.T) {
	topo := cubicCell(t, 10, 10)
	b := topo.Basis()
	recip, err := b.Reciprocal()
	require.NoError(t, err)
	got := minimumImage(b, recip, [3]float64{9, -6, 2})
	assert.InDeltaSlice(t, []float64{-1, 4, 2}, got[:], 1e-12)
}
