// record.go --  This file is part of goFD project.
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
	"fmt"

	"github.com/MirzaevaIV/goFD/internal/grid"
)

// Record is the serialisable form of a Set. Offsets are not stored; they
// depend on the layout of the field the set is applied to.
type Record struct {
	Order  int          `yaml:"order"`
	Center float64      `yaml:"center"`
	Terms  []TermRecord `yaml:"terms"`
}

type TermRecord struct {
	Direction string    `yaml:"direction"`
	Weight    float64   `yaml:"weight"`
	Length    float64   `yaml:"length"`
	Coeffs    []float64 `yaml:"coeffs"`
}

// Record converts s to its serialisable form.
func (s *Set) Record() Record {
	rec := Record{Order: s.Order, Center: s.Center}
	for _, t := range s.Terms {
		rec.Terms = append(rec.Terms, TermRecord{
			Direction: t.Direction.Name,
			Weight:    t.Weight,
			Length:    t.Length,
			Coeffs:    append([]float64(nil), t.Coeffs...),
		})
	}
	return rec
}

// FromRecord rebuilds a Set for the given layout. The centre is re-derived
// from the neighbour coefficients.
func FromRecord(rec Record, strides grid.Strides) (*Set, error) {
	if err := checkOrder(rec.Order, MinOrder); err != nil {
		return nil, err
	}
	s := &Set{Order: rec.Order, Strides: strides}
	for _, tr := range rec.Terms {
		d, err := DirectionByName(tr.Direction)
		if err != nil {
			return nil, err
		}
		if len(tr.Coeffs) != rec.Order/2 {
			return nil, fmt.Errorf("%w: direction %s has %d coefficients for order %d",
				ErrVectorLength, tr.Direction, len(tr.Coeffs), rec.Order)
		}
		s.Terms = append(s.Terms, Term{
			Direction: d,
			Weight:    tr.Weight,
			Length:    tr.Length,
			Coeffs:    append([]float64(nil), tr.Coeffs...),
		})
	}
	s.updateCenter()
	return s, nil
}
