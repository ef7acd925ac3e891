// field.go --  This file is part of goFD project.
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

package grid

import "fmt"

// Strides are the linear index increments of a padded array along x and y;
// the z increment is always 1.
type Strides struct {
	X, Y int
}

// StridesFor returns the strides of a block of dims points padded by w on
// every side.
func StridesFor(dims [3]int, w int) Strides {
	return Strides{
		X: (dims[1] + 2*w) * (dims[2] + 2*w),
		Y: dims[2] + 2*w,
	}
}

// Offset is the linear offset of the crystal step n.
func (s Strides) Offset(n [3]int) int {
	return n[0]*s.X + n[1]*s.Y + n[2]
}

// Field is a halo-padded scalar field on the local grid block.
type Field struct {
	Dims [3]int
	Halo int
	Data []float64
}

// NewField allocates a zeroed padded field.
func NewField(dims [3]int, w int) *Field {
	n := (dims[0] + 2*w) * (dims[1] + 2*w) * (dims[2] + 2*w)
	return &Field{Dims: dims, Halo: w, Data: make([]float64, n)}
}

// Strides returns the index increments of the padded layout.
func (f *Field) Strides() Strides {
	return StridesFor(f.Dims, f.Halo)
}

// Padded returns the padded extents.
func (f *Field) Padded() [3]int {
	w := 2 * f.Halo
	return [3]int{f.Dims[0] + w, f.Dims[1] + w, f.Dims[2] + w}
}

// Index returns the padded linear index of the interior point (ix, iy, iz).
// Coordinates in [-Halo, 0) and [Dims, Dims+Halo) address the halo.
func (f *Field) Index(ix, iy, iz int) int {
	s := f.Strides()
	w := f.Halo
	return (ix+w)*s.X + (iy+w)*s.Y + iz + w
}

func (f *Field) At(ix, iy, iz int) float64 {
	return f.Data[f.Index(ix, iy, iz)]
}

func (f *Field) Set(ix, iy, iz int, v float64) {
	f.Data[f.Index(ix, iy, iz)] = v
}

// SameShape reports whether g has the same dims and halo as f.
func (f *Field) SameShape(g *Field) bool {
	return f.Dims == g.Dims && f.Halo == g.Halo && len(f.Data) == len(g.Data)
}

// Interior is the number of interior points.
func (f *Field) Interior() int {
	return f.Dims[0] * f.Dims[1] * f.Dims[2]
}

// Pack copies an unpadded block (z fastest) into the interior of f.
// Halo values are left untouched.
func (f *Field) Pack(src []float64) error {
	if len(src) != f.Interior() {
		return fmt.Errorf("%w: %d values for %v interior", ErrFieldShape, len(src), f.Dims)
	}
	dy, dz := f.Dims[1], f.Dims[2]
	for ix := 0; ix < f.Dims[0]; ix++ {
		for iy := 0; iy < dy; iy++ {
			row := (ix*dy + iy) * dz
			copy(f.Data[f.Index(ix, iy, 0):f.Index(ix, iy, dz)], src[row:row+dz])
		}
	}
	return nil
}

// Unpack copies the interior of f into an unpadded block. A nil dst is allocated.
func (f *Field) Unpack(dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, f.Interior())
	}
	dy, dz := f.Dims[1], f.Dims[2]
	for ix := 0; ix < f.Dims[0]; ix++ {
		for iy := 0; iy < dy; iy++ {
			row := (ix*dy + iy) * dz
			copy(dst[row:row+dz], f.Data[f.Index(ix, iy, 0):f.Index(ix, iy, dz)])
		}
	}
	return dst
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	g := &Field{Dims: f.Dims, Halo: f.Halo, Data: make([]float64, len(f.Data))}
	copy(g.Data, f.Data)
	return g
}
