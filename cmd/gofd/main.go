// main.go --  This file is part of goFD project.
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

// Command gofd builds, applies and calibrates finite-difference Laplacian
// stencils on periodic lattices.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/MirzaevaIV/goFD/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	cfgPath    string
	outputPath string

	logger *zap.Logger
	cfg    *config.Config
	rep    *report
)

var rootCmd = &cobra.Command{
	Use:   "gofd",
	Short: "goFD - finite-difference Laplacian stencils for arbitrary lattices",
	Long: `goFD builds Laplacian stencils for periodic grids on any Bravais lattice,
applies them to fields and tunes their coefficients so that the kinetic
energies of atomic orbitals match the plane-wave values.

The run is described by a YAML file (--config). A report is written next to
it with the extension replaced by .out, or to --output.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			_ = logger.Sync()
		}
		if rep != nil {
			rep.memStats()
			rep.println("goFD done.")
			return rep.Close()
		}
		return nil
	},
}

// setup loads the configuration and opens the report.
func setup() error {
	if cfgPath == "" {
		cfg = config.Default()
	} else {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
	}
	if cfg.NProcs > 0 {
		runtime.GOMAXPROCS(cfg.NProcs)
	}

	path := outputPath
	if path == "" {
		path = reportPath(cfgPath)
	}
	var err error
	if rep, err = openReport(path); err != nil {
		return err
	}
	logger.Info("starting goFD",
		zap.String("config", cfgPath),
		zap.String("report", path),
		zap.Int("threads", runtime.GOMAXPROCS(0)))

	rep.appInfo()
	if cfgPath != "" {
		if err := rep.echo(cfgPath); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Run configuration (YAML); defaults are used when empty")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Report file, \"-\" for stdout (default: <config>.out)")

	rootCmd.AddCommand(stencilCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(calibrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Fatal("goFD failed", zap.Error(err))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
