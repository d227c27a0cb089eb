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
	"gonum.org/v1/gonum/spatial/r3"
)

// Defaults for camera parameters not given by the caller
const (
	DefaultFOV    = 90.0
	DefaultYaw    = 0.0
	DefaultPitch  = 0.0
	DefaultWidth  = 4000
	DefaultHeight = 4000
)

// Largest number of output pixels a camera may render
const MaxPixels = 1 << 32

// A pinhole camera looking out from the center of the panorama sphere
type Camera struct {
	FOV    float64 `json:"fov"`    // Horizontal field of view in degrees, in (0, 360)
	Yaw    float64 `json:"yaw"`    // Rotation about the vertical axis in degrees, positive turns right
	Pitch  float64 `json:"pitch"`  // Rotation about the lateral axis in degrees, positive tilts down
	Width  int     `json:"width"`  // Output width in pixels
	Height int     `json:"height"` // Output height in pixels
}

func DefaultCamera() Camera {
	return Camera{
		FOV:    DefaultFOV,
		Yaw:    DefaultYaw,
		Pitch:  DefaultPitch,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

// Checks the camera parameters, returning an error wrapping pano.ErrInvalidParameters
func (c Camera) Validate() error {
	if math.IsNaN(c.FOV) || c.FOV <= 0 || c.FOV >= 360 {
		return fmt.Errorf("%w: fov %g outside (0, 360) degrees", pano.ErrInvalidParameters, c.FOV)
	}
	if math.IsNaN(c.Yaw) || math.IsInf(c.Yaw, 0) {
		return fmt.Errorf("%w: yaw %g is not finite", pano.ErrInvalidParameters, c.Yaw)
	}
	if math.IsNaN(c.Pitch) || math.IsInf(c.Pitch, 0) {
		return fmt.Errorf("%w: pitch %g is not finite", pano.ErrInvalidParameters, c.Pitch)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: output size %dx%d must be positive", pano.ErrInvalidParameters, c.Width, c.Height)
	}
	if c.Width > MaxPixels/c.Height {
		return fmt.Errorf("%w: output size %dx%d exceeds %d pixels", pano.ErrInvalidParameters, c.Width, c.Height, int64(MaxPixels))
	}
	if f := c.FocalLength(); math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("%w: fov %g yields no finite focal length", pano.ErrInvalidParameters, c.FOV)
	}
	return nil
}

// Focal length in output pixels, derived from the horizontal field of view
func (c Camera) FocalLength() float64 {
	return float64(c.Width) / (2 * math.Tan(radians(c.FOV)/2))
}

// Rotation from camera space into world space: yaw about Y first, then pitch about X
func (c Camera) Rotation() *r3.Mat {
	sy, cy := math.Sincos(radians(c.Yaw))
	sp, cp := math.Sincos(radians(c.Pitch))
	yaw := r3.NewMat([]float64{
		cy, 0, sy,
		0, 1, 0,
		-sy, 0, cy,
	})
	pitch := r3.NewMat([]float64{
		1, 0, 0,
		0, cp, -sp,
		0, sp, cp,
	})
	rot := r3.NewMat(nil)
	rot.Mul(pitch, yaw)
	return rot
}

func (c Camera) String() string {
	return fmt.Sprintf("%dx%d fov %.4g yaw %.4g pitch %.4g", c.Width, c.Height, c.FOV, c.Yaw, c.Pitch)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
