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
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/mlnoga/panoview/internal/stats"
)

// Number of color channels per pixel
const Channels = 3

var (
	// Missing, unreadable or undecodable source image
	ErrInvalidInput = errors.New("invalid input")
	// Camera, output size or piece width out of range
	ErrInvalidParameters = errors.New("invalid parameters")
	// Unsupported target format or failed write
	ErrEncoding = errors.New("encoding failure")
)

// An 8-bit RGB image with interleaved channels.
// Used both for equirectangular source panoramas and for rectilinear outputs.
type Image struct {
	ID       int          // Sequential ID number, for log output. Counted upwards from 0
	FileName string       // Original file name, if any, for log output
	Width    int          // Width in pixels
	Height   int          // Height in pixels
	Pix      []uint8      // Samples in R, G, B order, row-major. Pixel (x,y) starts at (y*Width+x)*3
	Stats    *stats.Stats // Sampled image statistics, nil until UpdateStats is called
}

// Creates a black image of the given size
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

// Creates a black image of the given size, carrying over ID and file name from img
func NewImageFromImage(img *Image, width, height int) *Image {
	res := NewImage(width, height)
	res.ID, res.FileName = img.ID, img.FileName
	return res
}

// Returns the offset of pixel (x,y) in Pix
func (img *Image) Offset(x, y int) int {
	return (y*img.Width + x) * Channels
}

func (img *Image) RGB(x, y int) (r, g, b uint8) {
	o := img.Offset(x, y)
	return img.Pix[o], img.Pix[o+1], img.Pix[o+2]
}

func (img *Image) SetRGB(x, y int, r, g, b uint8) {
	o := img.Offset(x, y)
	img.Pix[o], img.Pix[o+1], img.Pix[o+2] = r, g, b
}

// Fills the entire image with the given color
func (img *Image) Fill(r, g, b uint8) {
	for o := 0; o < len(img.Pix); o += Channels {
		img.Pix[o], img.Pix[o+1], img.Pix[o+2] = r, g, b
	}
}

func (img *Image) DimensionsToString() string {
	return fmt.Sprintf("%dx%d", img.Width, img.Height)
}

// Recalculates the sampled image statistics
func (img *Image) UpdateStats() {
	img.Stats = stats.New(img.Pix)
}

// Returns a copy of the full-height column range [left, right)
func (img *Image) Columns(left, right int) *Image {
	if left < 0 {
		left = 0
	}
	if right > img.Width {
		right = img.Width
	}
	if right < left {
		right = left
	}
	w := right - left
	res := NewImageFromImage(img, w, img.Height)
	for y := 0; y < img.Height; y++ {
		copy(res.Pix[y*w*Channels:(y+1)*w*Channels], img.Pix[img.Offset(left, y):img.Offset(right, y)])
	}
	return res
}

// Converts into a Golang image for the standard encoders
func (img *Image) ToNRGBA() *image.NRGBA {
	res := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			o := img.Offset(x, y)
			p := res.PixOffset(x, y)
			res.Pix[p], res.Pix[p+1], res.Pix[p+2], res.Pix[p+3] = img.Pix[o], img.Pix[o+1], img.Pix[o+2], 255
		}
	}
	return res
}

// Converts a decoded Golang image into 8-bit RGB. Alpha is dropped, not composited
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	res := NewImage(b.Dx(), b.Dy())

	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < res.Height; y++ {
			for x := 0; x < res.Width; x++ {
				p := s.PixOffset(b.Min.X+x, b.Min.Y+y)
				res.SetRGB(x, y, s.Pix[p], s.Pix[p+1], s.Pix[p+2])
			}
		}
	case *image.YCbCr:
		for y := 0; y < res.Height; y++ {
			for x := 0; x < res.Width; x++ {
				yi, ci := s.YOffset(b.Min.X+x, b.Min.Y+y), s.COffset(b.Min.X+x, b.Min.Y+y)
				r, g, bl := color.YCbCrToRGB(s.Y[yi], s.Cb[ci], s.Cr[ci])
				res.SetRGB(x, y, r, g, bl)
			}
		}
	case *image.Gray:
		for y := 0; y < res.Height; y++ {
			for x := 0; x < res.Width; x++ {
				v := s.Pix[s.PixOffset(b.Min.X+x, b.Min.Y+y)]
				res.SetRGB(x, y, v, v, v)
			}
		}
	default:
		for y := 0; y < res.Height; y++ {
			for x := 0; x < res.Width; x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				res.SetRGB(x, y, c.R, c.G, c.B)
			}
		}
	}
	return res
}
