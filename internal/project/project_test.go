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
	"errors"
	"math"
	"testing"

	"github.com/mlnoga/panoview/internal/pano"
)

func TestValidate(t *testing.T) {
	tcs := []struct {
		name string
		cam  Camera
		ok   bool
	}{
		{"default", DefaultCamera(), true},
		{"narrow", Camera{FOV: 0.5, Width: 10, Height: 10}, true},
		{"wide", Camera{FOV: 359, Width: 10, Height: 10}, true},
		{"zero fov", Camera{FOV: 0, Width: 10, Height: 10}, false},
		{"negative fov", Camera{FOV: -10, Width: 10, Height: 10}, false},
		{"full circle", Camera{FOV: 360, Width: 10, Height: 10}, false},
		{"nan fov", Camera{FOV: math.NaN(), Width: 10, Height: 10}, false},
		{"inf yaw", Camera{FOV: 90, Yaw: math.Inf(1), Width: 10, Height: 10}, false},
		{"nan pitch", Camera{FOV: 90, Pitch: math.NaN(), Width: 10, Height: 10}, false},
		{"zero width", Camera{FOV: 90, Width: 0, Height: 10}, false},
		{"negative height", Camera{FOV: 90, Width: 10, Height: -1}, false},
		{"subnormal fov", Camera{FOV: 1e-320, Width: 5, Height: 5}, false},
		{"huge", Camera{FOV: 90, Width: 1 << 31, Height: 1 << 31}, false},
		{"tall strip", Camera{FOV: 90, Width: 1, Height: MaxPixels}, true},
		{"just too many", Camera{FOV: 90, Width: 2, Height: MaxPixels/2 + 1}, false},
	}
	for _, tc := range tcs {
		err := tc.cam.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, pano.ErrInvalidParameters) {
			t.Errorf("%s: got %v; want ErrInvalidParameters", tc.name, err)
		}
	}
}

func TestProjectRejectsInvalid(t *testing.T) {
	if _, err := Project(100, 50, Camera{FOV: 360, Width: 10, Height: 10}, 1); !errors.Is(err, pano.ErrInvalidParameters) {
		t.Errorf("fov 360: got %v; want ErrInvalidParameters", err)
	}
	if _, err := Project(100, 50, Camera{FOV: 1e-320, Width: 5, Height: 5}, 1); !errors.Is(err, pano.ErrInvalidParameters) {
		t.Errorf("subnormal fov: got %v; want ErrInvalidParameters", err)
	}
	if _, err := Project(0, 50, DefaultCamera(), 1); !errors.Is(err, pano.ErrInvalidInput) {
		t.Errorf("empty source: got %v; want ErrInvalidInput", err)
	}
}

func TestGrid(t *testing.T) {
	epsilon := 1e-12
	tcs := []struct {
		n    int
		want []float64
	}{
		{1, []float64{-0.5}},
		{2, []float64{-1, 1}},
		{3, []float64{-1.5, 0, 1.5}},
		{5, []float64{-2.5, -1.25, 0, 1.25, 2.5}},
	}
	for _, tc := range tcs {
		got := Grid(tc.n)
		if len(got) != len(tc.want) {
			t.Errorf("n=%d len=%d; want %d", tc.n, len(got), len(tc.want))
			continue
		}
		for i := range got {
			if math.Abs(got[i]-tc.want[i]) > epsilon {
				t.Errorf("n=%d g[%d]=%f; want %f", tc.n, i, got[i], tc.want[i])
			}
		}
	}
}

func TestCenterRay(t *testing.T) {
	epsilon := 1e-3
	srcW, srcH := 2048, 1024
	tcs := []struct {
		yaw, pitch float64
		x, y       float64
	}{
		{0, 0, 1024, 512},
		{90, 0, 1536, 512},
		{-90, 0, 512, 512},
		{0, 45, 1024, 768},
		{0, -45, 1024, 256},
	}
	for _, tc := range tcs {
		cam := Camera{FOV: 90, Yaw: tc.yaw, Pitch: tc.pitch, Width: 101, Height: 51}
		m, err := Project(srcW, srcH, cam, 2)
		if err != nil {
			t.Fatal(err)
		}
		x, y := m.At(50, 25)
		if math.Abs(float64(x)-tc.x) > epsilon || math.Abs(float64(y)-tc.y) > epsilon {
			t.Errorf("yaw=%g pitch=%g center=(%f,%f); want (%f,%f)", tc.yaw, tc.pitch, x, y, tc.x, tc.y)
		}
	}
}

func TestYawPeriodicity(t *testing.T) {
	srcW, srcH := 1000, 500
	epsilon := 1e-2
	for _, yaw := range []float64{0, 30, 135, -60} {
		a, err := Project(srcW, srcH, Camera{FOV: 75, Yaw: yaw, Pitch: 10, Width: 64, Height: 48}, 3)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Project(srcW, srcH, Camera{FOV: 75, Yaw: yaw + 360, Pitch: 10, Width: 64, Height: 48}, 1)
		if err != nil {
			t.Fatal(err)
		}
		for i := range a.X {
			dx := math.Abs(float64(a.X[i] - b.X[i]))
			dx = math.Min(dx, float64(srcW)-dx) // same column across the seam
			if dx > epsilon || math.Abs(float64(a.Y[i]-b.Y[i])) > epsilon {
				t.Errorf("yaw=%g i=%d: (%f,%f) vs (%f,%f)", yaw, i, a.X[i], a.Y[i], b.X[i], b.Y[i])
				break
			}
		}
	}
}

func TestFOVMonotonicity(t *testing.T) {
	srcW, srcH := 3600, 1800
	prevF, prevSpan := math.Inf(1), 0.0
	for _, fov := range []float64{10, 30, 60, 90, 120, 150, 170} {
		cam := Camera{FOV: fov, Width: 201, Height: 101}
		f := cam.FocalLength()
		if !(f < prevF) {
			t.Errorf("fov=%g focal length %f not below %f", fov, f, prevF)
		}
		m, err := Project(srcW, srcH, cam, 0)
		if err != nil {
			t.Fatal(err)
		}
		left, _ := m.At(0, 50)
		right, _ := m.At(200, 50)
		span := float64(right - left)
		if !(span > prevSpan) {
			t.Errorf("fov=%g longitude span %f not above %f", fov, span, prevSpan)
		}
		// the center row sees exactly the horizontal field of view
		if want := fov / 360 * float64(srcW); math.Abs(span-want) > 0.1 {
			t.Errorf("fov=%g span=%f; want %f", fov, span, want)
		}
		prevF, prevSpan = f, span
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	cam := Camera{FOV: 100, Yaw: 170, Pitch: -20, Width: 73, Height: 37}
	a, err := Project(640, 320, cam, 1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Project(640, 320, cam, 8)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.X {
		if a.X[i] != b.X[i] || a.Y[i] != b.Y[i] {
			t.Fatalf("i=%d: sequential (%f,%f) parallel (%f,%f)", i, a.X[i], a.Y[i], b.X[i], b.Y[i])
		}
	}
}

func TestToSpherical(t *testing.T) {
	epsilon := 1e-12
	lon, lat := ToSpherical(Direction(0, 0, 1))
	if math.Abs(lon) > epsilon || math.Abs(lat) > epsilon {
		t.Errorf("forward: lon=%f lat=%f; want 0,0", lon, lat)
	}
	// image row above the center looks up
	_, lat = ToSpherical(Direction(0, -1, 1))
	if math.Abs(lat-math.Pi/4) > epsilon {
		t.Errorf("up: lat=%f; want %f", lat, math.Pi/4)
	}
	x, y := SphericalToSource(math.Pi, -math.Pi/2, 200, 100)
	if x != 200 || y != 100 {
		t.Errorf("corner=(%f,%f); want (200,100)", x, y)
	}
}
