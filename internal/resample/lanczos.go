// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package resample

import (
	"math"
)

// Number of lobes of the Lanczos window
const Lobes = 4

// Number of taps per axis. Tap k sits at floor(x)-Lobes+1+k
const Taps = 2 * Lobes

// Fractional offsets below this are treated as exact sample positions
const epsilon = 1.1920929e-7

// Lanczos-4 weights for the taps around a sample with fractional offset frac in [0,1).
// Weights are normalized to sum to one, so flat regions are reproduced exactly.
func LanczosWeights(frac float64) (w [Taps]float64) {
	if frac < epsilon {
		w[Lobes-1] = 1
		return w
	}
	sum := 0.0
	for i := range w {
		d := frac + Lobes - 1 - float64(i)
		px := math.Pi * d
		w[i] = math.Sin(px) * math.Sin(px/Lobes) / (px * px)
		sum += w[i]
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}
