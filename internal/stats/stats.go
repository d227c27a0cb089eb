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

import (
	"fmt"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/stat"
)

// Number of pixels sampled for the luminance location and scale estimates
const NumSamples = 4096

// Basic statistics of an interleaved 8-bit RGB image
type Stats struct {
	Min      [3]float32 // Per channel minimum, in [0,255]
	Max      [3]float32 // Per channel maximum, in [0,255]
	Mean     [3]float32 // Per channel mean, in [0,255]
	Mode     [3]float32 // Per channel histogram peak, in [0,255]
	Clipped  [3]float32 // Per channel fraction of samples at 0 or 255
	Location float32    // Median HCL luminance of sampled pixels, in [0,1]
	Scale    float32    // Median absolute deviation of sampled HCL luminance
}

// Calculates statistics for the given interleaved RGB samples. Min, max and mean are exact,
// location and scale are estimated from a random subsample of pixels
func New(pix []uint8) *Stats {
	s := &Stats{}
	numPixels := len(pix) / 3
	if numPixels == 0 {
		return s
	}

	var sums [3]float64
	for c := 0; c < 3; c++ {
		s.Min[c] = 255
	}
	for i := 0; i < numPixels*3; i += 3 {
		for c := 0; c < 3; c++ {
			v := float32(pix[i+c])
			if v < s.Min[c] {
				s.Min[c] = v
			}
			if v > s.Max[c] {
				s.Max[c] = v
			}
			sums[c] += float64(v)
		}
	}
	hist := NewHistogram(pix)
	for c := 0; c < 3; c++ {
		s.Mean[c] = float32(sums[c] / float64(numPixels))
		mode, _ := hist.Peak(c)
		s.Mode[c] = float32(mode)
		s.Clipped[c] = hist.Clipped(c)
	}

	samples := sampleLuminance(pix, numPixels)
	s.Location, s.Scale = medianMAD(samples)
	return s
}

// Draws random pixels and returns their HCL luminance
func sampleLuminance(pix []uint8, numPixels int) []float64 {
	n := NumSamples
	if numPixels < n {
		n = numPixels
	}
	samples := make([]float64, n)
	rng := fastrand.RNG{}
	for i := range samples {
		o := 3 * int(rng.Uint32n(uint32(numPixels)))
		col := colorful.Color{R: float64(pix[o]) / 255, G: float64(pix[o+1]) / 255, B: float64(pix[o+2]) / 255}
		_, _, l := col.Hcl()
		samples[i] = l
	}
	return samples
}

// Returns median and median absolute deviation of the samples. Reorders samples
func medianMAD(samples []float64) (median, mad float32) {
	sort.Float64s(samples)
	med := stat.Quantile(0.5, stat.Empirical, samples, nil)
	for i, v := range samples {
		samples[i] = math.Abs(v - med)
	}
	sort.Float64s(samples)
	return float32(med), float32(stat.Quantile(0.5, stat.Empirical, samples, nil))
}

// Largest per channel fraction of clipped samples
func (s *Stats) MaxClipped() float32 {
	r := float32(0)
	for _, c := range s.Clipped {
		if c > r {
			r = c
		}
	}
	return r
}

// Largest per channel difference between maximum and minimum
func (s *Stats) DynamicRange() float32 {
	r := float32(0)
	for c := 0; c < 3; c++ {
		if d := s.Max[c] - s.Min[c]; d > r {
			r = d
		}
	}
	return r
}

func (s Stats) String() string {
	return fmt.Sprintf("min (%.0f,%.0f,%.0f) max (%.0f,%.0f,%.0f) mean (%.4g,%.4g,%.4g) location %.4g%% scale %.4g%%",
		s.Min[0], s.Min[1], s.Min[2], s.Max[0], s.Max[1], s.Max[2],
		s.Mean[0], s.Mean[1], s.Mean[2], s.Location*100, s.Scale*100)
}
