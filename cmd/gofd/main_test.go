// main_test.go --  This file is part of goFD project.
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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/MirzaevaIV/goFD/internal/config"
	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/stencil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

func TestReportPath(t *testing.T) {
	assert.Equal(t, "runs/h2.out", reportPath("runs/h2.yaml"))
	assert.Equal(t, "input.out", reportPath("input"))
	assert.Equal(t, "-", reportPath(""))
}

// CommandSuite runs the subcommands on a small hydrogen cell. The commands
// share package state, so every test starts from a fresh configuration.
type CommandSuite struct {
	suite.Suite
	out *bytes.Buffer
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandSuite))
}

func (s *CommandSuite) SetupTest() {
	logger = zap.NewNop()
	cfg = config.Default()
	cfg.Grid.Points = []int{16, 16, 16}
	cfg.Stencil.Order = 8
	s.out = &bytes.Buffer{}
	rep = newReport(s.out)
}

func (s *CommandSuite) TearDownTest() {
	cfg, rep = nil, nil
	stencilSave, calibrateSave, calibrateStrategy = "", "", ""
	applyLegacy = false
}

// run validates the configuration and calls fn like cobra would.
func (s *CommandSuite) run(fn func(*cobra.Command, []string) error) error {
	require.NoError(s.T(), cfg.Validate())
	return fn(&cobra.Command{}, nil)
}

func (s *CommandSuite) TestStencil() {
	cfg.Lattice.Type = grid.CubicFC
	cfg.Stencil.Order = 4
	stencilSave = filepath.Join(s.T().TempDir(), "fcc.yaml")

	require.NoError(s.T(), s.run(runStencil))
	s.Contains(s.out.String(), "Stencil family: cubic_fc, order 4")
	s.Contains(s.out.String(), "Coefficients written to")

	set, err := loadCoefficients(stencilSave)
	require.NoError(s.T(), err)
	topo, err := cfg.Topology(0)
	require.NoError(s.T(), err)
	want, err := stencil.CubicFC{}.ComputeStencil(topo, 4, grid.StridesFor(topo.Dims(), 2))
	require.NoError(s.T(), err)
	s.True(floats.EqualApprox(want.Vector(), set.Vector(), 1e-12))
	s.InDelta(want.Center, set.Center, 1e-12)
}

func (s *CommandSuite) TestStencilStoredCoefficients() {
	path := filepath.Join(s.T().TempDir(), "coeffs.yaml")
	stencilSave = path
	require.NoError(s.T(), s.run(runStencil))

	stencilSave = ""
	s.out.Reset()
	cfg.Stencil.Coefficients = path
	require.NoError(s.T(), s.run(runStencil))
	s.Contains(s.out.String(), "Stencil family: stored, order 8")

	cfg.Stencil.Order = 6
	s.ErrorIs(s.run(runStencil), stencil.ErrInvalidOrder)
}

func (s *CommandSuite) TestApply() {
	require.NoError(s.T(), s.run(runApply))
	s.Contains(s.out.String(), "stencil order 8")
	s.Contains(s.out.String(), "H 1s")
}

func (s *CommandSuite) TestApplyLegacyDecomposed() {
	cfg.Grid.Procs = []int{2, 1, 1}
	applyLegacy = true
	require.NoError(s.T(), s.run(runApply))
	s.Contains(s.out.String(), "legacy second-order kernel")
	s.Contains(s.out.String(), "H 1s")
}

func (s *CommandSuite) TestCalibrateLinear() {
	calibrateSave = filepath.Join(s.T().TempDir(), "out", "h.yaml")

	require.NoError(s.T(), s.run(runCalibrate))
	out := s.out.String()
	s.Contains(out, "strategy linear, order 8")
	s.Contains(out, "Correction scale:")
	s.Contains(out, "Power per |G| shell")

	data, err := os.ReadFile(calibrateSave)
	require.NoError(s.T(), err)
	s.Contains(string(data), "strategy: linear")
	s.Contains(string(data), "lattice: cubic_primitive")

	set, err := loadCoefficients(calibrateSave)
	require.NoError(s.T(), err)
	s.Equal(8, set.Order)
}

func (s *CommandSuite) TestCalibrateGradient() {
	cfg.Calibration.Iterations = 2
	calibrateStrategy = "gradient"
	require.NoError(s.T(), s.run(runCalibrate))
	s.Contains(s.out.String(), "L-BFGS iterations:")
}

func (s *CommandSuite) TestCalibrateUnknownStrategy() {
	calibrateStrategy = "simplex"
	s.Error(s.run(runCalibrate))
}

func (s *CommandSuite) TestAtomsFile() {
	path := filepath.Join(s.T().TempDir(), "atoms.xyz")
	require.NoError(s.T(), os.WriteFile(path, []byte("He 0 0 0\n"), 0o644))

	g, err := orbitalProvider(cfg, path, logger)
	require.NoError(s.T(), err)
	names, _ := g.Species()
	s.Equal([]string{"He"}, names)

	_, err = orbitalProvider(cfg, filepath.Join(s.T().TempDir(), "missing"), logger)
	s.ErrorContains(err, "failed to read atoms")
}
