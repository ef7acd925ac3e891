// coeffs.go --  This file is part of goFD project.
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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MirzaevaIV/goFD/internal/config"
	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/halo"
	"github.com/MirzaevaIV/goFD/internal/orbital"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"github.com/MirzaevaIV/goFD/internal/stencil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// coefficientFile is the YAML layout of a stored stencil.
type coefficientFile struct {
	RunID    string         `yaml:"run_id,omitempty"`
	Lattice  grid.Lattice   `yaml:"lattice"`
	Strategy string         `yaml:"strategy,omitempty"`
	Scale    float64        `yaml:"scale,omitempty"`
	Stencil  stencil.Record `yaml:"stencil"`
}

func saveCoefficients(path string, cf coefficientFile) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create coefficient directory: %w", err)
		}
	}
	data, err := yaml.Marshal(cf)
	if err != nil {
		return fmt.Errorf("failed to marshal coefficients: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write coefficients: %w", err)
	}
	return nil
}

func loadCoefficients(path string) (*stencil.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coefficients: %w", err)
	}
	var cf coefficientFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse coefficients: %w", err)
	}
	return stencil.FromRecord(cf.Stencil, grid.Strides{})
}

// stencilProvider uses stored coefficients when the config names a file
// and the lattice family otherwise.
func stencilProvider(c *config.Config, log *zap.Logger) (stencil.Provider, error) {
	if c.Stencil.Coefficients == "" {
		return c.Provider(stencil.WithLogger(log)), nil
	}
	set, err := loadCoefficients(c.Stencil.Coefficients)
	if err != nil {
		return nil, err
	}
	log.Info("using stored coefficients",
		zap.String("path", c.Stencil.Coefficients),
		zap.Int("order", set.Order))
	return stencil.FixedProvider{Set: set}, nil
}

// orbitalProvider builds the Gaussian orbitals of the atoms lines, taken
// from atomsFile when given.
func orbitalProvider(c *config.Config, atomsFile string, log *zap.Logger) (*orbital.Gaussian, error) {
	lines := c.Atoms
	if atomsFile != "" {
		var err error
		if lines, err = readFileLines(atomsFile); err != nil {
			return nil, fmt.Errorf("failed to read atoms: %w", err)
		}
	}
	atoms, err := orbital.ParseAtoms(lines)
	if err != nil {
		return nil, err
	}
	return orbital.NewGaussian(atoms, orbital.WithLogger(log)), nil
}

// eachRank runs fn on every rank of the configured process grid, each with
// its own local block. Ranks run concurrently inside this process.
func eachRank(c *config.Config, fn func(topo *grid.Topology, g reduce.Group) error) error {
	if c.Size() == 1 {
		topo, err := c.Topology(0)
		if err != nil {
			return err
		}
		return fn(topo, reduce.Local{})
	}
	// every rank builds its topology before the first collective, so a bad
	// grid fails on all of them alike
	return reduce.NewTeam(c.Size()).Run(func(g reduce.Group) error {
		topo, err := c.Topology(g.Rank())
		if err != nil {
			return err
		}
		return fn(topo, g)
	})
}

func haloFor(topo *grid.Topology, g reduce.Group) halo.Exchange {
	if topo.Decomposed() {
		return halo.Gathered{Topo: topo, Group: g}
	}
	return halo.Periodic{}
}
