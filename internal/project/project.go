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

package project

import (
	"fmt"
	"math"

	"github.com/mlnoga/panoview/internal/pano"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Fractional source pixel coordinates for every output pixel, row-major
type CoordinateMap struct {
	Width  int
	Height int
	X      []float32
	Y      []float32
}

func NewCoordinateMap(width, height int) *CoordinateMap {
	return &CoordinateMap{
		Width:  width,
		Height: height,
		X:      make([]float32, width*height),
		Y:      make([]float32, width*height),
	}
}

// Returns the source coordinates for output pixel (col, row)
func (m *CoordinateMap) At(col, row int) (x, y float32) {
	i := row*m.Width + col
	return m.X[i], m.Y[i]
}

// Maps every pixel of the rectilinear camera view to a fractional pixel coordinate in an
// equirectangular source of the given size. Source columns may fall outside [0, srcWidth)
// near the seam, and must be wrapped by the sampler.
func Project(srcWidth, srcHeight int, cam Camera, maxThreads int) (*CoordinateMap, error) {
	if err := cam.Validate(); err != nil {
		return nil, err
	}
	if srcWidth <= 0 || srcHeight <= 0 {
		return nil, fmt.Errorf("%w: source size %dx%d", pano.ErrInvalidInput, srcWidth, srcHeight)
	}

	f := cam.FocalLength()
	rot := cam.Rotation()
	xs, ys := Grid(cam.Width), Grid(cam.Height)
	m := NewCoordinateMap(cam.Width, cam.Height)

	pano.ParallelRows(cam.Height, maxThreads, func(row int) {
		y := ys[row]
		offset := row * cam.Width
		for col, x := range xs {
			dir := rot.MulVec(Direction(x, y, f))
			lon, lat := ToSpherical(dir)
			sx, sy := SphericalToSource(lon, lat, srcWidth, srcHeight)
			m.X[offset+col], m.Y[offset+col] = float32(sx), float32(sy)
		}
	})
	return m, nil
}

// Returns n evenly spaced pixel positions spanning [-n/2, n/2], centered on the optical axis.
// A single sample sits at -1/2
func Grid(n int) []float64 {
	half := float64(n) / 2
	if n == 1 {
		return []float64{-half}
	}
	return floats.Span(make([]float64, n), -half, half)
}

// Unit camera-space ray through grid point (x,y) for focal length f.
// Image rows grow downwards, camera Y grows upwards
func Direction(x, y, f float64) r3.Vec {
	return r3.Unit(r3.Vec{X: x, Y: -y, Z: f})
}

// Converts a unit direction into longitude in (-pi, pi] and latitude in [-pi/2, pi/2]
func ToSpherical(d r3.Vec) (lon, lat float64) {
	lon = math.Atan2(d.X, d.Z)
	lat = math.Asin(math.Max(-1, math.Min(1, d.Y)))
	return lon, lat
}

// Maps longitude and latitude to fractional pixel coordinates in an equirectangular image
// of the given size. Longitude 0 is the center column, latitude +pi/2 the top edge
func SphericalToSource(lon, lat float64, srcWidth, srcHeight int) (x, y float64) {
	x = (lon/(2*math.Pi) + 0.5) * float64(srcWidth)
	y = (0.5 - lat/math.Pi) * float64(srcHeight)
	return x, y
}
