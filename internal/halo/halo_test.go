// halo_test.go --  This file is part of goFD project.
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

package halo

import (
	"testing"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// value encodes the global grid position so wrapped ghosts can be checked.
func value(gx, gy, gz int) float64 {
	return float64(gx*10000 + gy*100 + gz)
}

func TestPeriodic(t *testing.T) {
	dims := [3]int{4, 5, 3}
	f := grid.NewField(dims, 2)
	for ix := 0; ix < dims[0]; ix++ {
		for iy := 0; iy < dims[1]; iy++ {
			for iz := 0; iz < dims[2]; iz++ {
				f.Set(ix, iy, iz, value(ix, iy, iz))
			}
		}
	}
	require.NoError(t, Periodic{}.Fill(f))

	assert.Equal(t, value(3, 0, 0), f.At(-1, 0, 0))
	assert.Equal(t, value(0, 4, 2), f.At(4, -1, -1))
	assert.Equal(t, value(1, 1, 1), f.At(5, 6, 4))
	assert.Equal(t, value(2, 3, 1), f.At(-2, -2, -2))
}

func TestGatheredMatchesPeriodic(t *testing.T) {
	basis, err := grid.BasisFromCellDM(grid.CubicPrimitive, [6]float64{6})
	require.NoError(t, err)
	global := [3]int{8, 6, 4}
	procs := [3]int{2, 1, 2}

	team := reduce.NewTeam(4)
	err = team.Run(func(g reduce.Group) error {
		topo, err := grid.NewTopology(basis, grid.CubicPrimitive, global, grid.WithDecomposition(procs, g.Rank()))
		if err != nil {
			return err
		}
		off := topo.Offset()
		f := topo.NewField(2)
		d := topo.Dims()
		for ix := 0; ix < d[0]; ix++ {
			for iy := 0; iy < d[1]; iy++ {
				for iz := 0; iz < d[2]; iz++ {
					f.Set(ix, iy, iz, value(ix+off[0], iy+off[1], iz+off[2]))
				}
			}
		}
		if err := (Gathered{Topo: topo, Group: g}).Fill(f); err != nil {
			return err
		}
		for ix := -2; ix < d[0]+2; ix++ {
			for iy := -2; iy < d[1]+2; iy++ {
				for iz := -2; iz < d[2]+2; iz++ {
					want := value(mod(ix+off[0], global[0]), mod(iy+off[1], global[1]), mod(iz+off[2], global[2]))
					assert.Equal(t, want, f.At(ix, iy, iz))
				}
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestGatheredShape(t *testing.T) {
	basis, err := grid.BasisFromCellDM(grid.CubicPrimitive, [6]float64{6})
	require.NoError(t, err)
	topo, err := grid.NewTopology(basis, grid.CubicPrimitive, [3]int{4, 4, 4})
	require.NoError(t, err)
	err = Gathered{Topo: topo, Group: reduce.Local{}}.Fill(grid.NewField([3]int{2, 2, 2}, 1))
	require.ErrorIs(t, err, ErrShape)
}
