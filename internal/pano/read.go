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
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Reads an image from file. Any format with a registered decoder is accepted
func NewImageFromFile(fileName string, id int) (*Image, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	defer file.Close()

	img, err := Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, fileName, err)
	}
	img.ID, img.FileName = id, fileName
	return img, nil
}

// Decodes an image from the given reader into 8-bit RGB, and calculates its stats
func Decode(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	img := FromImage(src)
	if img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("empty %dx%d image", img.Width, img.Height)
	}
	img.UpdateStats()
	return img, nil
}
