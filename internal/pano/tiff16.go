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
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Scales an 8-bit value to 16 bits, mapping [0,255] onto [0,65535] exactly at the endpoints
func Upscale16(v uint8) uint16 {
	return uint16(v) * 257
}

// Inverse of Upscale16
func Downscale16(v uint16) uint8 {
	return uint8(v / 257)
}

// TIFF tag ids and field types, see TIFF 6.0 section 8
const (
	tiffImageWidth      = 256
	tiffImageLength     = 257
	tiffBitsPerSample   = 258
	tiffCompression     = 259
	tiffPhotometric     = 262
	tiffStripOffsets    = 273
	tiffSamplesPerPixel = 277
	tiffRowsPerStrip    = 278
	tiffStripByteCounts = 279
	tiffPlanarConfig    = 284

	tiffShort = 3
	tiffLong  = 4

	tiffCompressionDeflate = 8
	tiffPhotometricRGB     = 2
)

type tiffEntry struct {
	Tag   uint16
	Type  uint16
	Count uint32
	Value uint32
}

// Write an image as 3-channel 16-bit little-endian TIFF, as a single deflate-compressed strip.
// Each 8-bit value v is stored as v*257.
func (img *Image) WriteTIFF16(writer io.Writer) error {
	raw := make([]byte, len(img.Pix)*2)
	for i, v := range img.Pix {
		binary.LittleEndian.PutUint16(raw[2*i:], Upscale16(v))
	}

	var strip bytes.Buffer
	zw, err := zlib.NewWriterLevel(&strip, zlib.DefaultCompression)
	if err != nil {
		return err
	}
	if _, err = zw.Write(raw); err != nil {
		return err
	}
	if err = zw.Close(); err != nil {
		return err
	}
	stripLen := uint32(strip.Len())
	if strip.Len()%2 == 1 {
		strip.WriteByte(0) // keep the following offsets word aligned
	}

	const headerLen = 8
	bpsOffset := uint32(headerLen + strip.Len())
	ifdOffset := bpsOffset + 3*2
	entries := []tiffEntry{
		{tiffImageWidth, tiffLong, 1, uint32(img.Width)},
		{tiffImageLength, tiffLong, 1, uint32(img.Height)},
		{tiffBitsPerSample, tiffShort, 3, bpsOffset},
		{tiffCompression, tiffShort, 1, tiffCompressionDeflate},
		{tiffPhotometric, tiffShort, 1, tiffPhotometricRGB},
		{tiffStripOffsets, tiffLong, 1, headerLen},
		{tiffSamplesPerPixel, tiffShort, 1, Channels},
		{tiffRowsPerStrip, tiffLong, 1, uint32(img.Height)},
		{tiffStripByteCounts, tiffLong, 1, stripLen},
		{tiffPlanarConfig, tiffShort, 1, 1},
	}

	le := binary.LittleEndian
	if _, err = writer.Write([]byte{'I', 'I', 42, 0}); err != nil {
		return err
	}
	if err = binary.Write(writer, le, ifdOffset); err != nil {
		return err
	}
	if _, err = writer.Write(strip.Bytes()); err != nil {
		return err
	}
	if err = binary.Write(writer, le, [3]uint16{16, 16, 16}); err != nil {
		return err
	}
	if err = binary.Write(writer, le, uint16(len(entries))); err != nil {
		return err
	}
	if err = binary.Write(writer, le, entries); err != nil {
		return err
	}
	return binary.Write(writer, le, uint32(0)) // no further IFDs
}
