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

package pano

import (
	"bytes"
	"image"
	"testing"

	"golang.org/x/image/tiff"
)

func TestUpscaleDownscale16(t *testing.T) {
	for v := 0; v < 256; v++ {
		up := Upscale16(uint8(v))
		if int(up) != v*257 {
			t.Errorf("Upscale16(%d)=%d; want %d", v, up, v*257)
		}
		if down := Downscale16(up); int(down) != v {
			t.Errorf("Downscale16(%d)=%d; want %d", up, down, v)
		}
	}
	if Upscale16(0) != 0 || Upscale16(255) != 65535 {
		t.Errorf("endpoints %d %d; want 0 65535", Upscale16(0), Upscale16(255))
	}
}

func testImage(w, h int) *Image {
	img := NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGB(x, y, uint8(x*40), uint8(y*50), uint8(255-x*y))
		}
	}
	return img
}

func TestWriteTIFF16RoundTrip(t *testing.T) {
	// odd sizes exercise strip padding
	for _, dims := range [][2]int{{1, 1}, {5, 3}, {6, 5}} {
		img := testImage(dims[0], dims[1])
		var buf bytes.Buffer
		if err := img.WriteTIFF16(&buf); err != nil {
			t.Fatal(err)
		}

		dec, err := tiff.Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("%dx%d: decode: %v", dims[0], dims[1], err)
		}
		rgb, ok := dec.(*image.RGBA64)
		if !ok {
			t.Fatalf("%dx%d: decoded %T; want *image.RGBA64", dims[0], dims[1], dec)
		}
		if b := rgb.Bounds(); b.Dx() != img.Width || b.Dy() != img.Height {
			t.Fatalf("bounds %v; want %s", b, img.DimensionsToString())
		}
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				c := rgb.RGBA64At(x, y)
				r, g, b := img.RGB(x, y)
				if c.R != Upscale16(r) || c.G != Upscale16(g) || c.B != Upscale16(b) || c.A != 0xffff {
					t.Errorf("(%d,%d)=%v; want (%d,%d,%d)", x, y, c, Upscale16(r), Upscale16(g), Upscale16(b))
				}
			}
		}
	}
}
