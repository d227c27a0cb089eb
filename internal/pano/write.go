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
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
)

// Creates the file, runs the encoder on a buffered writer and flushes.
// A partially written file is removed on error.
func writeToFile(fileName string, encode func(w io.Writer) error) (err error) {
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %v", ErrEncoding, cerr)
		}
		if err != nil {
			os.Remove(fileName)
		}
	}()

	writer := bufio.NewWriter(file)
	if err = encode(writer); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncoding, fileName, err)
	}
	if err = writer.Flush(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncoding, fileName, err)
	}
	return nil
}

// Write an image to JPG with the given quality
func (img *Image) WriteJPG(writer io.Writer, quality int) error {
	return jpeg.Encode(writer, img.ToNRGBA(), &jpeg.Options{Quality: quality})
}

// Write an image to PNG with the given compression level
func (img *Image) WritePNG(writer io.Writer, level png.CompressionLevel) error {
	enc := png.Encoder{CompressionLevel: level}
	return enc.Encode(writer, img.ToNRGBA())
}

func (f JPEG) Write(img *Image, fileName string) ([]string, error) {
	err := writeToFile(fileName, func(w io.Writer) error { return img.WriteJPG(w, f.Quality) })
	if err != nil {
		return nil, err
	}
	return []string{fileName}, nil
}

func (f PNG) Write(img *Image, fileName string) ([]string, error) {
	err := writeToFile(fileName, func(w io.Writer) error { return img.WritePNG(w, f.Compression) })
	if err != nil {
		return nil, err
	}
	return []string{fileName}, nil
}

func (f TIFF16) Write(img *Image, fileName string) (written []string, err error) {
	if err = writeToFile(fileName, img.WriteTIFF16); err != nil {
		return nil, err
	}
	written = append(written, fileName)

	sidecar := SidecarFileName(fileName)
	more, err := f.Sidecar.Write(img, sidecar)
	return append(written, more...), err
}

func (f Other) Write(img *Image, fileName string) ([]string, error) {
	var encode func(w io.Writer) error
	switch f.Ext {
	case ".gif":
		encode = func(w io.Writer) error { return gif.Encode(w, img.ToNRGBA(), nil) }
	case ".bmp":
		encode = func(w io.Writer) error { return bmp.Encode(w, img.ToNRGBA()) }
	default:
		return nil, fmt.Errorf("%w: no encoder for suffix '%s' of %s", ErrEncoding, f.Ext, fileName)
	}
	if err := writeToFile(fileName, encode); err != nil {
		return nil, err
	}
	return []string{fileName}, nil
}
