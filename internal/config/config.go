// config.go --  This file is part of goFD project.
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

// Package config loads the YAML description of a goFD run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MirzaevaIV/goFD/internal/calib"
	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/stencil"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Lattice     LatticeConfig     `yaml:"lattice"`
	Grid        GridConfig        `yaml:"grid"`
	Stencil     StencilConfig     `yaml:"stencil"`
	Calibration CalibrationConfig `yaml:"calibration"`
	// Atoms are "Symbol x y z" lines, coordinates in angstrom.
	Atoms []string `yaml:"atoms"`
	// NProcs sets GOMAXPROCS; 0 keeps the runtime default.
	NProcs int `yaml:"nprocs"`
}

// LatticeConfig gives the cell either as ibrav type plus celldm or as
// explicit vectors (bohr), which take precedence.
type LatticeConfig struct {
	Type    grid.Lattice `yaml:"type"`
	CellDM  []float64    `yaml:"celldm,omitempty"`
	Vectors [][]float64  `yaml:"vectors,omitempty"`
}

type GridConfig struct {
	Points []int `yaml:"points"`
	// Procs is the process grid of an in-process decomposition.
	Procs []int `yaml:"procs,omitempty"`
}

type StencilConfig struct {
	Order       int     `yaml:"order"`
	OffDiagonal bool    `yaml:"offdiag"`
	WeightPower float64 `yaml:"weight_power"`
	Cutoff      float64 `yaml:"cutoff"`
	// Family is "auto" or a stencil family name.
	Family string `yaml:"family"`
	// Coefficients is an optional file of calibrated coefficients to
	// apply instead of the family stencil.
	Coefficients string `yaml:"coefficients,omitempty"`
}

type CalibrationConfig struct {
	Strategy          string  `yaml:"strategy"`
	Iterations        int     `yaml:"iterations"`
	GradientTolerance float64 `yaml:"gradient_tolerance"`
	StrictWeights     bool    `yaml:"strict_weights"`
	Workers           int     `yaml:"workers"`
	// Output is where calibrated coefficients are written.
	Output string `yaml:"output,omitempty"`
}

func Default() *Config {
	return &Config{
		Lattice: LatticeConfig{
			Type:   grid.CubicPrimitive,
			CellDM: []float64{10, 0, 0, 0, 0, 0},
		},
		Grid: GridConfig{
			Points: []int{32, 32, 32},
			Procs:  []int{1, 1, 1},
		},
		Stencil: StencilConfig{
			Order:       8,
			OffDiagonal: true,
			WeightPower: stencil.DefaultWeightPower,
			Cutoff:      stencil.DefaultCutoff,
			Family:      "auto",
		},
		Calibration: CalibrationConfig{
			Strategy:   calib.StrategyLinearFit.String(),
			Iterations: calib.DefaultIterations,
		},
		Atoms: []string{"H 0.0 0.0 0.0"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (c *Config) Validate() error {
	if len(c.Lattice.Vectors) == 0 {
		if !c.Lattice.Type.Known() || c.Lattice.Type == grid.None {
			return invalid("lattice type %v needs explicit vectors", c.Lattice.Type)
		}
		if len(c.Lattice.CellDM) == 0 || len(c.Lattice.CellDM) > 6 {
			return invalid("celldm needs 1 to 6 values, got %d", len(c.Lattice.CellDM))
		}
	} else if len(c.Lattice.Vectors) != 3 {
		return invalid("%d lattice vectors", len(c.Lattice.Vectors))
	}
	for i, v := range c.Lattice.Vectors {
		if len(v) != 3 {
			return invalid("lattice vector %d has %d components", i, len(v))
		}
	}

	if len(c.Grid.Points) != 3 {
		return invalid("grid points need 3 values, got %d", len(c.Grid.Points))
	}
	if len(c.Grid.Procs) != 0 && len(c.Grid.Procs) != 3 {
		return invalid("grid procs need 3 values, got %d", len(c.Grid.Procs))
	}

	s := c.Stencil
	if s.Order < stencil.MinOrder || s.Order > stencil.MaxOrder || s.Order%2 != 0 {
		return invalid("stencil order %d", s.Order)
	}
	if s.WeightPower <= 0 {
		return invalid("weight_power %g must be positive", s.WeightPower)
	}
	if s.Cutoff < 0 || s.Cutoff >= 1 {
		return invalid("cutoff %g outside [0, 1)", s.Cutoff)
	}
	if s.Family != "" && s.Family != "auto" {
		if _, ok := stencil.FamilyByName(s.Family, nil); !ok {
			return invalid("unknown stencil family %q", s.Family)
		}
	}

	if _, err := calib.ParseStrategy(c.Calibration.Strategy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Calibration.Iterations < 0 || c.Calibration.Workers < 0 || c.Calibration.GradientTolerance < 0 {
		return invalid("calibration iterations, workers and gradient_tolerance must not be negative")
	}
	if c.NProcs < 0 {
		return invalid("nprocs %d", c.NProcs)
	}
	return nil
}

// Basis returns the lattice vectors of the cell.
func (c *Config) Basis() (grid.Basis, error) {
	if len(c.Lattice.Vectors) == 3 {
		var b grid.Basis
		for i := range b {
			copy(b[i][:], c.Lattice.Vectors[i])
		}
		return b, b.Validate()
	}
	var celldm [6]float64
	copy(celldm[:], c.Lattice.CellDM)
	return grid.BasisFromCellDM(c.Lattice.Type, celldm)
}

// Procs returns the process grid, {1, 1, 1} when unset.
func (c *Config) Procs() [3]int {
	if len(c.Grid.Procs) != 3 {
		return [3]int{1, 1, 1}
	}
	return [3]int{c.Grid.Procs[0], c.Grid.Procs[1], c.Grid.Procs[2]}
}

// Size is the number of ranks of the process grid.
func (c *Config) Size() int {
	p := c.Procs()
	return p[0] * p[1] * p[2]
}

// Topology builds the grid of the given rank.
func (c *Config) Topology(rank int) (*grid.Topology, error) {
	b, err := c.Basis()
	if err != nil {
		return nil, err
	}
	n := [3]int{c.Grid.Points[0], c.Grid.Points[1], c.Grid.Points[2]}
	return grid.NewTopology(b, c.Lattice.Type, n, grid.WithDecomposition(c.Procs(), rank))
}

// BuilderOptions configures the generalized stencil builder.
func (c *Config) BuilderOptions() []stencil.Option {
	return []stencil.Option{
		stencil.WithOffDiagonal(c.Stencil.OffDiagonal),
		stencil.WithWeightPower(c.Stencil.WeightPower),
		stencil.WithCutoff(c.Stencil.Cutoff),
	}
}

// Provider returns the stencil provider of the stencil section.
func (c *Config) Provider(opts ...stencil.Option) stencil.Provider {
	p := stencil.NewFamilyProvider(append(c.BuilderOptions(), opts...)...)
	if c.Stencil.Family != "" && c.Stencil.Family != "auto" {
		p.Force, _ = stencil.FamilyByName(c.Stencil.Family, p.Builder)
	}
	return p
}

// Strategy returns the parsed calibration strategy.
func (c *Config) Strategy() calib.Strategy {
	s, _ := calib.ParseStrategy(c.Calibration.Strategy)
	return s
}
