// halo.go --  This file is part of goFD project.
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

// Package halo fills the ghost layers of padded fields for periodic cells.
package halo

import (
	"errors"
	"fmt"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/reduce"
)

var ErrShape = errors.New("halo: field does not match the topology")

// Exchange fills the halo of a padded field from the values owned by
// neighbouring points, wrapping periodically at the cell boundary.
type Exchange interface {
	Fill(f *grid.Field) error
}

// Periodic treats the field interior as the whole periodic cell.
type Periodic struct{}

func (Periodic) Fill(f *grid.Field) error {
	wrap(f, f.Unpack(nil), f.Dims, [3]int{})
	return nil
}

// Gathered fills halos of a decomposed grid: every rank contributes its block
// to a global buffer through the reduction group and reads its ghosts back.
// Fill is a collective call.
type Gathered struct {
	Topo  *grid.Topology
	Group reduce.Group
}

func (g Gathered) Fill(f *grid.Field) error {
	if f.Dims != g.Topo.Dims() {
		return fmt.Errorf("%w: field %v, local block %v", ErrShape, f.Dims, g.Topo.Dims())
	}
	n := g.Topo.Global()
	off := g.Topo.Offset()
	global := make([]float64, g.Topo.GlobalPoints())
	for ix := 0; ix < f.Dims[0]; ix++ {
		for iy := 0; iy < f.Dims[1]; iy++ {
			row := ((ix+off[0])*n[1] + iy + off[1]) * n[2]
			for iz := 0; iz < f.Dims[2]; iz++ {
				global[row+iz+off[2]] = f.At(ix, iy, iz)
			}
		}
	}
	g.Group.SumVector(global)
	wrap(f, global, n, off)
	return nil
}

// wrap fills the halo of f from a periodic cell of size n stored unpadded
// in cell; off is the position of f's first interior point in the cell.
func wrap(f *grid.Field, cell []float64, n, off [3]int) {
	w := f.Halo
	for ix := -w; ix < f.Dims[0]+w; ix++ {
		gx := mod(ix+off[0], n[0])
		xin := ix >= 0 && ix < f.Dims[0]
		for iy := -w; iy < f.Dims[1]+w; iy++ {
			gy := mod(iy+off[1], n[1])
			yin := iy >= 0 && iy < f.Dims[1]
			row := (gx*n[1] + gy) * n[2]
			for iz := -w; iz < f.Dims[2]+w; iz++ {
				if xin && yin && iz >= 0 && iz < f.Dims[2] {
					continue
				}
				f.Set(ix, iy, iz, cell[row+mod(iz+off[2], n[2])])
			}
		}
	}
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
