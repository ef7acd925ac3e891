// linear.go --  This file is part of goFD project.
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

package calib

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// linearFit evaluates L(c) = L_ref + c*L_corr at c = 0 and c = 1 and picks
// the scale where the weighted kinetic energy errors cross zero.
func (c *Calibrator) linearFit(res *Result, log *zap.Logger) error {
	corr, err := res.Reference.Correction()
	if err != nil {
		return fmt.Errorf("calib: truncation correction: %w", err)
	}
	shifted, err := res.Reference.AddScaled(1, corr)
	if err != nil {
		return err
	}
	ke1, err := c.kinetic(res.Samples, shifted)
	if err != nil {
		return err
	}

	var a, fweight float64
	for i, s := range res.Samples {
		d0 := s.KERef - res.KEStart[i]
		d1 := s.KERef - ke1[i]
		m := d1 - d0
		log.Debug("FFT-FD",
			zap.String("orbital", s.Name),
			zap.Float64("diff0", d0),
			zap.Float64("diff1", d1),
			zap.Float64("slope", m))
		if math.Abs(m) <= slopeLimit {
			continue
		}
		xint := -d0 / m
		a += m * s.Weight * xint
		fweight += m * s.Weight
	}

	// an already converged stencil has nothing to fit
	if fweight != 0 {
		res.Scale = a / fweight
	}
	res.Set, err = res.Reference.AddScaled(res.Scale, corr)
	if err != nil {
		return err
	}
	log.Info("linear fit", zap.Float64("scale", res.Scale))
	return nil
}
