// stencil_cmd.go --  This file is part of goFD project.
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
	"strings"

	"github.com/MirzaevaIV/goFD/internal/grid"
	"github.com/MirzaevaIV/goFD/internal/stencil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var stencilSave string

var stencilCmd = &cobra.Command{
	Use:   "stencil",
	Short: "Build the Laplacian stencil of the configured lattice",
	Long: `Builds the stencil of the configured order for the lattice and grid of the
run and prints its coefficient table: one row per direction, one column per
distance, the centre in the last row.`,
	Args: cobra.NoArgs,
	RunE: runStencil,
}

func init() {
	stencilCmd.Flags().StringVar(&stencilSave, "save", "", "Write the coefficients to this YAML file")
}

func runStencil(cmd *cobra.Command, args []string) error {
	topo, err := cfg.Topology(0)
	if err != nil {
		return err
	}
	provider, err := stencilProvider(cfg, logger)
	if err != nil {
		return err
	}
	order := cfg.Stencil.Order
	set, err := provider.Stencil(topo, order, grid.StridesFor(topo.Dims(), order/2))
	if err != nil {
		return err
	}

	family := "stored"
	if fp, ok := provider.(*stencil.FamilyProvider); ok {
		family = fp.Family(topo).Name()
	}
	logger.Info("stencil built",
		zap.String("family", family),
		zap.Int("order", set.Order),
		zap.Strings("directions", set.Names()))

	rep.println("Grid:", topo)
	rep.printf("Anisotropy: %.6f\n", topo.Anisotropy())
	rep.printf("Stencil family: %s, order %d\n", family, set.Order)
	rep.println("Directions:", strings.Join(set.Names(), " "))
	rep.delimiter()
	rep.dense(set.Table())
	rep.delimiter()

	if stencilSave != "" {
		cf := coefficientFile{Lattice: topo.Lattice(), Stencil: set.Record()}
		if err := saveCoefficients(stencilSave, cf); err != nil {
			return err
		}
		rep.println("Coefficients written to", stencilSave)
	}
	return nil
}
