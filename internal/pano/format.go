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
	"fmt"
	"image/png"
	"path/filepath"
	"strings"
)

// An output file format, selected once from the file name suffix.
// Each variant carries its own encoder parameters.
type Format interface {
	// Writes the image to the given file name, and returns the names of all files written
	Write(img *Image, fileName string) (written []string, err error)
	String() string
	isFormat()
}

// Baseline JPEG
type JPEG struct {
	Quality int
}

// PNG with the given zlib compression level
type PNG struct {
	Compression png.CompressionLevel
}

// 16-bit RGB TIFF with deflate compression, plus an 8-bit JPEG sidecar
// at the same base path
type TIFF16 struct {
	Sidecar JPEG
}

// Any other suffix, written with the default encoder registered for it
type Other struct {
	Ext string
}

func (JPEG) isFormat()   {}
func (PNG) isFormat()    {}
func (TIFF16) isFormat() {}
func (Other) isFormat()  {}

func (f JPEG) String() string   { return fmt.Sprintf("JPEG quality %d", f.Quality) }
func (f PNG) String() string    { return fmt.Sprintf("PNG compression %d", f.Compression) }
func (f TIFF16) String() string { return "16-bit TIFF with JPEG sidecar" }
func (f Other) String() string  { return strings.TrimPrefix(f.Ext, ".") }

// Selects the output format for the given file name, by its lowercase suffix
func FormatFor(fileName string) Format {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".jpg", ".jpeg":
		return JPEG{Quality: 100}
	case ".png":
		return PNG{Compression: png.NoCompression}
	case ".tif", ".tiff":
		return TIFF16{Sidecar: JPEG{Quality: 100}}
	default:
		return Other{Ext: ext}
	}
}

// Returns the file name of the JPEG copy written alongside a TIFF
func SidecarFileName(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName)) + ".jpg"
}

// Saves the image under the given file name in the format implied by its suffix.
// Returns the names of all files written
func Save(img *Image, fileName string) (written []string, err error) {
	return FormatFor(fileName).Write(img, fileName)
}
