// calibrate_cmd.go --  This file is part of goFD project.
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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MirzaevaIV/goFD/internal/calib"
	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"github.com/MirzaevaIV/goFD/internal/spectral"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	calibrateSave     string
	calibrateStrategy string
	calibrateAtoms    string
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Tune the stencil coefficients on atomic orbitals",
	Long: `Calibrates the stencil of the configured order so that the finite-difference
kinetic energies of the atomic orbitals of the configured atoms match their
plane-wave values.

Strategies:
  linear    scale the truncation correction by a two-point fit
  gradient  minimize the weighted squared error with L-BFGS (order 8)

The calibrated coefficients are written to --save, or to calibration.output
of the configuration.`,
	Args: cobra.NoArgs,
	RunE: runCalibrate,
}

func init() {
	calibrateCmd.Flags().StringVar(&calibrateSave, "save", "", "Write the calibrated coefficients to this YAML file")
	calibrateCmd.Flags().StringVar(&calibrateStrategy, "strategy", "", "Override calibration.strategy (linear, gradient)")
	calibrateCmd.Flags().StringVar(&calibrateAtoms, "atoms", "", "Read atom lines (Symbol x y z, angstrom) from this file")
}

// number of frequency shells printed per orbital
const reportBins = 8

func runCalibrate(cmd *cobra.Command, args []string) error {
	strategy := cfg.Strategy()
	if calibrateStrategy != "" {
		var err error
		if strategy, err = calib.ParseStrategy(calibrateStrategy); err != nil {
			return err
		}
	}
	orbs, err := orbitalProvider(cfg, calibrateAtoms, logger)
	if err != nil {
		return err
	}
	provider, err := stencilProvider(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		res  *calib.Result
		bins [][]float64
	)
	err = eachRank(cfg, func(topo *grid.Topology, g reduce.Group) error {
		list, err := orbs.Orbitals(topo)
		if err != nil {
			return err
		}
		c := calib.New(topo,
			calib.WithLogger(logger.With(zap.Int("rank", g.Rank()))),
			calib.WithGroup(g),
			calib.WithProvider(provider),
			calib.WithHalo(haloFor(topo, g)),
			calib.WithIterations(cfg.Calibration.Iterations),
			calib.WithGradientTolerance(cfg.Calibration.GradientTolerance),
			calib.WithStrictWeights(cfg.Calibration.StrictWeights),
			calib.WithWorkers(cfg.Calibration.Workers))
		r, err := c.Calibrate(ctx, list, cfg.Stencil.Order, strategy)
		if err != nil {
			return err
		}

		fft, err := spectral.NewFFT(topo, g)
		if err != nil {
			return err
		}
		b := make([][]float64, len(list))
		for i, o := range list {
			if b[i], err = fft.FreqBins(o.Values); err != nil {
				return err
			}
		}
		if g.Rank() == 0 {
			res, bins = r, b
		}
		return nil
	})
	if err != nil {
		return err
	}

	printCalibration(res, bins)

	path := calibrateSave
	if path == "" {
		path = cfg.Calibration.Output
	}
	if path != "" {
		cf := coefficientFile{
			RunID:    res.RunID,
			Lattice:  cfg.Lattice.Type,
			Strategy: res.Strategy.String(),
			Scale:    res.Scale,
			Stencil:  res.Set.Record(),
		}
		if err := saveCoefficients(path, cf); err != nil {
			return err
		}
		logger.Info("coefficients saved", zap.String("path", path), zap.String("run", res.RunID))
		rep.println("Coefficients written to", path)
	}
	return nil
}

func printCalibration(res *calib.Result, bins [][]float64) {
	rep.printf("Calibration run %s, strategy %v, order %d\n", res.RunID, res.Strategy, res.Set.Order)
	rep.delimiter()
	rep.printf("%-10s %8s %16s %16s %16s\n", "orbital", "weight", "KE(FFT)", "KE start", "KE final")
	for i, s := range res.Samples {
		rep.printf("%-10s %8.4f %16.10f %16.10f %16.10f\n", s.Name, s.Weight, s.KERef, res.KEStart[i], res.KEFinal[i])
	}
	rep.delimiter()

	rep.println("Power per |G| shell (units of the shortest reciprocal vector):")
	for i, s := range res.Samples {
		rep.printf("%-10s", s.Name)
		for k := 0; k < reportBins && k < len(bins[i]); k++ {
			rep.printf(" %9.2e", bins[i][k])
		}
		rep.println()
	}
	rep.delimiter()

	switch res.Strategy {
	case calib.StrategyLinearFit:
		rep.printf("Correction scale: %.10f\n", res.Scale)
	case calib.StrategyGradient:
		rep.printf("L-BFGS iterations: %d\n", res.State.Iteration)
		for i, l := range res.State.Loss {
			rep.printf("  %3d  loss %.6e\n", i, l)
		}
	}
	rep.println("Reference coefficients:")
	rep.dense(res.Reference.Table())
	rep.println("Calibrated coefficients:")
	rep.dense(res.Set.Table())
	rep.delimiter()
}
