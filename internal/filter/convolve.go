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

package filter

import (
	"github.com/mlnoga/panoview/internal/pano"
)

// A 3x3 integer convolution kernel, indexed [row][column]
type Kernel3x3 [3][3]int

// Unity gain sharpening kernel: center 5, four neighbors -1, corners 0
var SharpenKernel = Kernel3x3{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

// Sum of all kernel weights. Flat regions are preserved iff this is one
func (k Kernel3x3) Gain() int {
	g := 0
	for _, row := range k {
		for _, v := range row {
			g += v
		}
	}
	return g
}

// Reflects out of bounds coordinates back into [0, size-1] without repeating the edge pixel,
// so -1 maps to 1 and size maps to size-2. A dimension of size one maps everything to 0
func reflect101(size, x int) int {
	if size == 1 {
		return 0
	}
	if x < 0 {
		return -x
	}
	if x >= size {
		return 2*size - x - 2
	}
	return x
}

// Convolves each channel of the image with the given kernel, returning a new image.
// Borders are extended with reflect101. Results are saturated to [0,255]
func Convolve3x3(img *pano.Image, k Kernel3x3, maxThreads int) *pano.Image {
	res := pano.NewImageFromImage(img, img.Width, img.Height)
	pano.ParallelRows(img.Height, maxThreads, func(y int) {
		var rows [3]int
		for ky := range rows {
			rows[ky] = reflect101(img.Height, y+ky-1) * img.Width
		}
		for x := 0; x < img.Width; x++ {
			var cols [3]int
			for kx := range cols {
				cols[kx] = reflect101(img.Width, x+kx-1)
			}
			var sum [pano.Channels]int
			for ky := 0; ky < 3; ky++ {
				for kx := 0; kx < 3; kx++ {
					w := k[ky][kx]
					if w == 0 {
						continue
					}
					o := (rows[ky] + cols[kx]) * pano.Channels
					sum[0] += w * int(img.Pix[o])
					sum[1] += w * int(img.Pix[o+1])
					sum[2] += w * int(img.Pix[o+2])
				}
			}
			o := img.Offset(x, y)
			for c := 0; c < pano.Channels; c++ {
				res.Pix[o+c] = saturate(sum[c])
			}
		}
	})
	return res
}

// Applies the fixed sharpening kernel
func Sharpen(img *pano.Image, maxThreads int) *pano.Image {
	return Convolve3x3(img, SharpenKernel, maxThreads)
}

func saturate(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
