// topology.go --  This file is part of goFD project.
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

import (
	"fmt"
	"math"
)

// Topology describes the global real-space grid of a cell and the sub-block
// owned by one rank. It is immutable.
type Topology struct {
	basis   Basis
	lattice Lattice
	global  [3]int
	procs   [3]int
	rank    int
	dims    [3]int
	offset  [3]int
}

// TopologyOption configures NewTopology.
type TopologyOption func(*Topology)

// WithDecomposition splits the global grid into procs[0]*procs[1]*procs[2]
// equal blocks; rank selects the block (z fastest).
func WithDecomposition(procs [3]int, rank int) TopologyOption {
	return func(t *Topology) {
		t.procs = procs
		t.rank = rank
	}
}

// NewTopology validates the basis and the grid and computes the local block.
func NewTopology(basis Basis, lattice Lattice, global [3]int, opts ...TopologyOption) (*Topology, error) {
	t := &Topology{
		basis:   basis,
		lattice: lattice,
		global:  global,
		procs:   [3]int{1, 1, 1},
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := basis.Validate(); err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		if global[i] <= 0 || t.procs[i] <= 0 {
			return nil, fmt.Errorf("%w: global %v, procs %v", ErrBadDims, global, t.procs)
		}
		if global[i]%t.procs[i] != 0 {
			return nil, fmt.Errorf("%w: %d points on axis %d not divisible by %d ranks",
				ErrBadDims, global[i], i, t.procs[i])
		}
	}
	size := t.procs[0] * t.procs[1] * t.procs[2]
	if t.rank < 0 || t.rank >= size {
		return nil, fmt.Errorf("%w: rank %d outside [0, %d)", ErrBadDims, t.rank, size)
	}

	coords := [3]int{
		t.rank / (t.procs[1] * t.procs[2]),
		(t.rank / t.procs[2]) % t.procs[1],
		t.rank % t.procs[2],
	}
	for i := 0; i < 3; i++ {
		t.dims[i] = global[i] / t.procs[i]
		t.offset[i] = coords[i] * t.dims[i]
	}
	return t, nil
}

func (t *Topology) Basis() Basis      { return t.basis }
func (t *Topology) Lattice() Lattice  { return t.lattice }
func (t *Topology) Global() [3]int    { return t.global }
func (t *Topology) Dims() [3]int      { return t.dims }
func (t *Topology) Offset() [3]int    { return t.offset }
func (t *Topology) Procs() [3]int     { return t.procs }
func (t *Topology) Rank() int         { return t.rank }
func (t *Topology) Sides() [3]float64 { return t.basis.Sides() }

// Size is the number of ranks sharing the grid.
func (t *Topology) Size() int { return t.procs[0] * t.procs[1] * t.procs[2] }

// Decomposed reports whether the grid is split over more than one rank.
func (t *Topology) Decomposed() bool { return t.Size() > 1 }

// LocalPoints is the number of interior points owned by this rank.
func (t *Topology) LocalPoints() int { return t.dims[0] * t.dims[1] * t.dims[2] }

// GlobalPoints is the number of points in the whole cell.
func (t *Topology) GlobalPoints() int { return t.global[0] * t.global[1] * t.global[2] }

// Spacing returns the crystal-coordinate grid spacings h_i = 1/N_i.
func (t *Topology) Spacing() [3]float64 {
	return [3]float64{
		1.0 / float64(t.global[0]),
		1.0 / float64(t.global[1]),
		1.0 / float64(t.global[2]),
	}
}

// StepLengths returns the real-space distance between neighbouring points
// along each lattice vector.
func (t *Topology) StepLengths() [3]float64 {
	h := t.Spacing()
	s := t.Sides()
	return [3]float64{h[0] * s[0], h[1] * s[1], h[2] * s[2]}
}

// VolumeElement is the cell volume per grid point.
func (t *Topology) VolumeElement() float64 {
	return t.basis.Volume() / float64(t.GlobalPoints())
}

// Anisotropy is the ratio of the largest to the smallest grid step.
func (t *Topology) Anisotropy() float64 {
	l := t.StepLengths()
	hmax := math.Max(l[0], math.Max(l[1], l[2]))
	hmin := math.Min(l[0], math.Min(l[1], l[2]))
	return hmax / hmin
}

// Step returns the real-space vector of the crystal step n.
func (t *Topology) Step(n [3]int) [3]float64 {
	h := t.Spacing()
	return t.basis.ToCartesian([3]float64{
		float64(n[0]) * h[0],
		float64(n[1]) * h[1],
		float64(n[2]) * h[2],
	})
}

// Point returns the Cartesian coordinates of the local interior point (ix, iy, iz).
func (t *Topology) Point(ix, iy, iz int) [3]float64 {
	h := t.Spacing()
	return t.basis.ToCartesian([3]float64{
		float64(ix+t.offset[0]) * h[0],
		float64(iy+t.offset[1]) * h[1],
		float64(iz+t.offset[2]) * h[2],
	})
}

// NewField allocates a zeroed field shaped like the local block with halo width w.
func (t *Topology) NewField(w int) *Field {
	return NewField(t.dims, w)
}

// WithRank returns a copy of the topology describing another rank's block.
func (t *Topology) WithRank(rank int) (*Topology, error) {
	return NewTopology(t.basis, t.lattice, t.global, WithDecomposition(t.procs, rank))
}

func (t *Topology) String() string {
	return fmt.Sprintf("%v grid %dx%dx%d (local %dx%dx%d at %v, rank %d/%d)",
		t.lattice, t.global[0], t.global[1], t.global[2],
		t.dims[0], t.dims[1], t.dims[2], t.offset, t.rank, t.Size())
}
