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

	"github.com/mlnoga/panoview/internal/pano"
	"github.com/mlnoga/panoview/internal/project"
)

// Renders a new image of the coordinate map's size, sampling the equirectangular source
// at each mapped position with a Lanczos-4 filter. Columns wrap around the seam, rows
// are clamped at the poles.
func Remap(src *pano.Image, m *project.CoordinateMap, maxThreads int) *pano.Image {
	dst := pano.NewImageFromImage(src, m.Width, m.Height)
	pano.ParallelRows(m.Height, maxThreads, func(row int) {
		for col := 0; col < m.Width; col++ {
			i := row*m.Width + col
			o := i * pano.Channels
			sampleInto(dst.Pix[o:o+pano.Channels], src, float64(m.X[i]), float64(m.Y[i]))
		}
	})
	return dst
}

// Samples the source at fractional position (x,y), with pixel centers at integer coordinates
func Sample(src *pano.Image, x, y float64) (r, g, b uint8) {
	var res [pano.Channels]uint8
	sampleInto(res[:], src, x, y)
	return res[0], res[1], res[2]
}

func sampleInto(dst []uint8, src *pano.Image, x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		dst[0], dst[1], dst[2] = 0, 0, 0
		return
	}
	w, h := float64(src.Width), float64(src.Height)
	if x < 0 || x >= w {
		x = math.Mod(x, w)
		if x < 0 {
			x += w
		}
	}
	// all taps clamp to the first or last row anyway
	y = math.Max(-Taps, math.Min(h+Taps, y))

	x0, y0 := math.Floor(x), math.Floor(y)
	wx, wy := LanczosWeights(x-x0), LanczosWeights(y-y0)

	var cols [Taps]int
	for k := range cols {
		cols[k] = WrapIndex(int(x0)-Lobes+1+k, src.Width) * pano.Channels
	}

	var acc [pano.Channels]float64
	for ky := 0; ky < Taps; ky++ {
		if wy[ky] == 0 {
			continue
		}
		rowStart := ClampIndex(int(y0)-Lobes+1+ky, src.Height) * src.Width * pano.Channels
		var racc [pano.Channels]float64
		for kx := 0; kx < Taps; kx++ {
			if wx[kx] == 0 {
				continue
			}
			o := rowStart + cols[kx]
			racc[0] += wx[kx] * float64(src.Pix[o])
			racc[1] += wx[kx] * float64(src.Pix[o+1])
			racc[2] += wx[kx] * float64(src.Pix[o+2])
		}
		for c := range acc {
			acc[c] += wy[ky] * racc[c]
		}
	}
	for c := range acc {
		dst[c] = saturate(acc[c])
	}
}

// Wraps index i into [0,n)
func WrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Clamps index i into [0,n-1]
func ClampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func saturate(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
