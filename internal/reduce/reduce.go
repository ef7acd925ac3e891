// reduce.go --  This file is part of goFD project.
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

// Package reduce provides the sum-reductions used to combine per-rank
// partial results of a domain-decomposed grid.
package reduce

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Group is a set of ranks that reduce together. Every call blocks until all
// ranks of the group have made the same call.
type Group interface {
	Rank() int
	Size() int
	SumScalar(v float64) float64
	// SumVector replaces v with the element-wise sum over all ranks.
	SumVector(v []float64)
	// SumMatrix replaces m with the element-wise sum over all ranks.
	SumMatrix(m *mat.Dense)
}

// Local is the single-rank group; every reduction is the identity.
type Local struct{}

func (Local) Rank() int                   { return 0 }
func (Local) Size() int                   { return 1 }
func (Local) SumScalar(v float64) float64 { return v }
func (Local) SumVector([]float64)         {}
func (Local) SumMatrix(*mat.Dense)        {}

// Team simulates size ranks inside one process. Each goroutine takes part
// through its own Member. Contributions are added in rank order, so every
// member sees bit-identical results.
type Team struct {
	size int

	mu      sync.Mutex
	cond    *sync.Cond
	gen     uint64
	arrived int
	parts   [][]float64
	result  []float64
}

// NewTeam creates a team of size ranks.
func NewTeam(size int) *Team {
	if size < 1 {
		size = 1
	}
	t := &Team{size: size}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Size is the number of ranks.
func (t *Team) Size() int { return t.size }

// Member returns the group handle of rank.
func (t *Team) Member(rank int) *Member {
	if rank < 0 || rank >= t.size {
		panic(fmt.Sprintf("reduce: rank %d outside team of %d", rank, t.size))
	}
	return &Member{team: t, rank: rank}
}

// Run calls fn once per rank on its own goroutine and waits for all of them.
// A rank returning early without finishing its collectives leaves the
// others blocked.
func (t *Team) Run(fn func(g Group) error) error {
	var eg errgroup.Group
	for r := 0; r < t.size; r++ {
		m := t.Member(r)
		eg.Go(func() error { return fn(m) })
	}
	return eg.Wait()
}

func (t *Team) allreduce(rank int, v []float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.arrived == 0 {
		t.parts = make([][]float64, t.size)
	}
	if t.parts[rank] != nil {
		panic(fmt.Sprintf("reduce: rank %d entered the same collective twice", rank))
	}
	t.parts[rank] = append([]float64(nil), v...)
	t.arrived++

	gen := t.gen
	if t.arrived == t.size {
		res := make([]float64, len(v))
		for _, p := range t.parts {
			if len(p) != len(res) {
				panic("reduce: ranks reduced vectors of different length")
			}
			for i, x := range p {
				res[i] += x
			}
		}
		t.result = res
		t.parts = nil
		t.arrived = 0
		t.gen++
		t.cond.Broadcast()
	} else {
		for gen == t.gen {
			t.cond.Wait()
		}
	}
	copy(v, t.result)
}

// Member is one rank of a Team.
type Member struct {
	team *Team
	rank int
}

func (m *Member) Rank() int { return m.rank }
func (m *Member) Size() int { return m.team.size }

func (m *Member) SumScalar(v float64) float64 {
	buf := []float64{v}
	m.team.allreduce(m.rank, buf)
	return buf[0]
}

func (m *Member) SumVector(v []float64) {
	m.team.allreduce(m.rank, v)
}

func (m *Member) SumMatrix(d *mat.Dense) {
	r, c := d.Dims()
	buf := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		buf = append(buf, d.RawRowView(i)...)
	}
	m.team.allreduce(m.rank, buf)
	for i := 0; i < r; i++ {
		copy(d.RawRowView(i), buf[i*c:(i+1)*c])
	}
}
