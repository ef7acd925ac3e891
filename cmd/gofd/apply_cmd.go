// apply_cmd.go --  This file is part of goFD project.
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

	"github.com/MirzaevaIV/goFD/internal/fdop"
	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/halo"
	"github.com/MirzaevaIV/goFD/internal/reduce"
	"github.com/MirzaevaIV/goFD/internal/spectral"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	applyLegacy bool
	applyAtoms  string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the stencil to the atomic orbitals and compare with the FFT Laplacian",
	Long: `Samples the atomic orbitals of the configured atoms on the grid, applies the
finite-difference Laplacian and reports, per orbital, the finite-difference
and plane-wave kinetic energies and the RMS of the Laplacian residual.

With --legacy the fixed second-order kernel of the lattice is used instead
of the configured stencil.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applyLegacy, "legacy", false, "Use the second-order kernel of the lattice")
	applyCmd.Flags().StringVar(&applyAtoms, "atoms", "", "Read atom lines (Symbol x y z, angstrom) from this file")
}

type applyRow struct {
	name           string
	keFD, keRef    float64
	residual, diag float64
}

func runApply(cmd *cobra.Command, args []string) error {
	orbs, err := orbitalProvider(cfg, applyAtoms, logger)
	if err != nil {
		return err
	}
	provider, err := stencilProvider(cfg, logger)
	if err != nil {
		return err
	}

	var rows []applyRow
	err = eachRank(cfg, func(topo *grid.Topology, g reduce.Group) error {
		exch := haloFor(topo, g)
		applier := fdop.NewApplier(fdop.WithWorkers(cfg.Calibration.Workers), fdop.WithLogger(logger))

		var lap func(dst, x []float64) (float64, error)
		if applyLegacy {
			lap = legacyLaplacian(topo, exch, applier)
		} else {
			op, err := fdop.NewOperator(topo, provider, cfg.Stencil.Order, exch, applier)
			if err != nil {
				return err
			}
			lap = func(dst, x []float64) (float64, error) {
				return op.Set().Center, op.Laplacian(dst, x)
			}
		}
		fft, err := spectral.NewFFT(topo, g)
		if err != nil {
			return err
		}

		list, err := orbs.Orbitals(topo)
		if err != nil {
			return err
		}
		local := make([]applyRow, len(list))
		fd := make([]float64, topo.LocalPoints())
		for i, o := range list {
			diag, err := lap(fd, o.Values)
			if err != nil {
				return err
			}
			ref, err := fft.ForwardThenLaplacian(o.Values)
			if err != nil {
				return err
			}
			row := applyRow{name: o.Name}
			if row.keFD, err = fdop.KineticEnergy(o.Values, fd, topo, g); err != nil {
				return err
			}
			if row.keRef, err = fdop.KineticEnergy(o.Values, ref, topo, g); err != nil {
				return err
			}
			if row.residual, err = spectral.ResidualRMS(fd, ref, g); err != nil {
				return err
			}
			row.diag = diag
			local[i] = row
		}
		if g.Rank() == 0 {
			rows = local
		}
		return nil
	})
	if err != nil {
		return err
	}

	mode := fmt.Sprintf("stencil order %d", cfg.Stencil.Order)
	if applyLegacy {
		mode = "legacy second-order kernel"
	}
	rep.println("Laplacian of the atomic orbitals,", mode)
	rep.delimiter()
	rep.printf("%-10s %16s %16s %14s %14s\n", "orbital", "KE(FD)", "KE(FFT)", "KE error", "RMS residual")
	for _, r := range rows {
		rep.printf("%-10s %16.10f %16.10f %14.3e %14.3e\n", r.name, r.keFD, r.keRef, r.keFD-r.keRef, r.residual)
		logger.Debug("orbital applied",
			zap.String("orbital", r.name),
			zap.Float64("ke_fd", r.keFD),
			zap.Float64("ke_fft", r.keRef),
			zap.Float64("rms", r.residual))
	}
	if len(rows) > 0 {
		rep.printf("Diagonal coefficient: %.10f\n", rows[0].diag)
	}
	rep.delimiter()
	return nil
}

// legacyLaplacian wraps the fixed kernel of the topology's lattice.
func legacyLaplacian(topo *grid.Topology, exch halo.Exchange, a *fdop.Applier) func(dst, x []float64) (float64, error) {
	src, out := topo.NewField(1), topo.NewField(1)
	sp := fdop.SpacingsOf(topo)
	return func(dst, x []float64) (float64, error) {
		if err := src.Pack(x); err != nil {
			return 0, err
		}
		if err := exch.Fill(src); err != nil {
			return 0, err
		}
		diag, err := a.ApplyLegacy(out, src, topo.Lattice(), sp)
		if err != nil {
			return 0, err
		}
		out.Unpack(dst)
		return diag, nil
	}
}
