// molecule.go --  This file is part of goFD project.
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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

var (
	ErrNotSType       = errors.New("orbital: analytic integrals need s-type orbitals")
	ErrUnknownElement = errors.New("orbital: unknown element")
	ErrAtomFormat     = errors.New("orbital: atom line must be 'Symbol x y z'")
	ErrNoBasis        = errors.New("orbital: no basis functions for element")
	ErrNoAtoms        = errors.New("orbital: no atoms")
)

// Bohr radius in angstrom.
const a_B = 0.52917720859

// Symbols is indexed by atomic number; index 0 is a placeholder.
var Symbols = []string{
	"X",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
}

type Atom struct {
	Z      int
	Name   string
	Coords [3]float64 // bohr
}

// Symbol is the chemical symbol of the atom.
func (a Atom) Symbol() string { return Symbols[a.Z] }

// ParseAtoms reads lines "Symbol x y z" with coordinates in angstrom.
// Blank lines are skipped.
func ParseAtoms(lines []string) ([]Atom, error) {
	var res []Atom
	for i, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		if len(words) < 4 {
			return nil, fmt.Errorf("%w: line %d %q", ErrAtomFormat, i+1, line)
		}
		var atm Atom
		atm.Z = slices.Index(Symbols, words[0])
		if atm.Z < 1 {
			return nil, fmt.Errorf("%w: %q on line %d", ErrUnknownElement, words[0], i+1)
		}
		atm.Name = words[0] + strconv.Itoa(len(res)+1)
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(words[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrAtomFormat, i+1, err)
			}
			atm.Coords[k] = v / a_B
		}
		res = append(res, atm)
	}
	return res, nil
}
