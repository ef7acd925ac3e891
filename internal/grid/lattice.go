// lattice.go --  This file is part of goFD project.
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
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Lattice is the Bravais lattice tag (ibrav numbering).
type Lattice int

const (
	None                  Lattice = 0
	CubicPrimitive        Lattice = 1
	CubicFC               Lattice = 2
	CubicBC               Lattice = 3
	Hexagonal             Lattice = 4
	TrigonalPrimitive     Lattice = 5
	TetragonalPrimitive   Lattice = 6
	TetragonalBC          Lattice = 7
	OrthorhombicPrimitive Lattice = 8
	MonoclinicPrimitive   Lattice = 12
	TriclinicPrimitive    Lattice = 14
)

var latticeNames = map[string]Lattice{
	"none":                   None,
	"cubic_primitive":        CubicPrimitive,
	"cubic_fc":               CubicFC,
	"cubic_bc":               CubicBC,
	"hexagonal":              Hexagonal,
	"trigonal_primitive":     TrigonalPrimitive,
	"tetragonal_primitive":   TetragonalPrimitive,
	"tetragonal_bc":          TetragonalBC,
	"orthorhombic_primitive": OrthorhombicPrimitive,
	"monoclinic_primitive":   MonoclinicPrimitive,
	"triclinic_primitive":    TriclinicPrimitive,
}

// ParseLattice accepts either a name ("cubic_fc", case-insensitive) or the
// ibrav number as a string.
func ParseLattice(s string) (Lattice, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if l, ok := latticeNames[key]; ok {
		return l, nil
	}
	var n int
	if _, err := fmt.Sscanf(key, "%d", &n); err == nil {
		if l := Lattice(n); l.Known() {
			return l, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownLattice, s)
}

// LatticeNames returns the accepted lattice names in sorted order.
func LatticeNames() []string {
	names := maps.Keys(latticeNames)
	slices.Sort(names)
	return names
}

// Known reports whether l is one of the supported tags.
func (l Lattice) Known() bool {
	for _, v := range latticeNames {
		if v == l {
			return true
		}
	}
	return false
}

func (l Lattice) String() string {
	for k, v := range latticeNames {
		if v == l {
			return k
		}
	}
	return fmt.Sprintf("lattice(%d)", int(l))
}

// MarshalText implements encoding.TextMarshaler so lattice tags read well in YAML.
func (l Lattice) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lattice) UnmarshalText(b []byte) error {
	v, err := ParseLattice(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
