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

package stats

// Per channel histogram of 8-bit samples
type Histogram [3][256]int32

// Calculate histogram of interleaved RGB samples
func NewHistogram(pix []uint8) *Histogram {
	h := &Histogram{}
	for i := 0; i+2 < len(pix); i += 3 {
		h[0][pix[i]]++
		h[1][pix[i+1]]++
		h[2][pix[i+2]]++
	}
	return h
}

// Returns the location and the value of the histogram peak for the given channel.
// Ties resolve to the darker value
func (h *Histogram) Peak(channel int) (x uint8, y int32) {
	bins := &h[channel]
	for i, v := range bins {
		if v > y {
			x, y = uint8(i), v
		}
	}
	return x, y
}

// Fraction of samples in the given channel that sit at 0 or 255
func (h *Histogram) Clipped(channel int) float32 {
	total := int64(0)
	for _, v := range h[channel] {
		total += int64(v)
	}
	if total == 0 {
		return 0
	}
	return float32(int64(h[channel][0])+int64(h[channel][255])) / float32(total)
}
