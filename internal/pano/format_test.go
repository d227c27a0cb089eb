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
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestFormatFor(t *testing.T) {
	tcs := []struct {
		name string
		want Format
	}{
		{"a.jpg", JPEG{Quality: 100}},
		{"dir/a.JPEG", JPEG{Quality: 100}},
		{"a.png", PNG{Compression: png.NoCompression}},
		{"a.tif", TIFF16{Sidecar: JPEG{Quality: 100}}},
		{"a.TIFF", TIFF16{Sidecar: JPEG{Quality: 100}}},
		{"a.bmp", Other{Ext: ".bmp"}},
		{"a.webp", Other{Ext: ".webp"}},
		{"noext", Other{Ext: ""}},
	}
	for _, tc := range tcs {
		assert.Equal(t, tc.want, FormatFor(tc.name), tc.name)
	}
	assert.Equal(t, "out.jpg", SidecarFileName("out.tif"))
	assert.Equal(t, "a/b.c.jpg", SidecarFileName("a/b.c.tiff"))
}

func TestSaveJPEGAndPNG(t *testing.T) {
	dir := t.TempDir()
	img := testImage(8, 6)

	jpgName := filepath.Join(dir, "out.jpg")
	written, err := Save(img, jpgName)
	require.NoError(t, err)
	assert.Equal(t, []string{jpgName}, written)
	f, err := os.Open(jpgName)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 6, cfg.Height)

	pngName := filepath.Join(dir, "out.png")
	_, err = Save(img, pngName)
	require.NoError(t, err)
	back, err := NewImageFromFile(pngName, 0)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, back.Pix)
}

func TestSaveTIFF16WithSidecar(t *testing.T) {
	dir := t.TempDir()
	img := testImage(5, 5)
	name := filepath.Join(dir, "view.tiff")

	written, err := Save(img, name)
	require.NoError(t, err)
	assert.Equal(t, []string{name, filepath.Join(dir, "view.jpg")}, written)

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	dec, err := tiff.Decode(f)
	require.NoError(t, err)
	c := dec.At(3, 2)
	r, g, b, _ := c.RGBA()
	wr, wg, wb := img.RGB(3, 2)
	assert.Equal(t, [3]uint32{uint32(Upscale16(wr)), uint32(Upscale16(wg)), uint32(Upscale16(wb))}, [3]uint32{r, g, b})

	_, err = os.Stat(filepath.Join(dir, "view.jpg"))
	assert.NoError(t, err)
}

func TestSaveOther(t *testing.T) {
	dir := t.TempDir()
	img := testImage(4, 4)

	for _, ext := range []string{".bmp", ".gif"} {
		name := filepath.Join(dir, "out"+ext)
		_, err := Save(img, name)
		require.NoError(t, err, ext)
		back, err := NewImageFromFile(name, 0)
		require.NoError(t, err, ext)
		assert.Equal(t, 4, back.Width, ext)
	}

	name := filepath.Join(dir, "out.xyz")
	_, err := Save(img, name)
	assert.ErrorIs(t, err, ErrEncoding)
	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err), "no file left behind for unsupported format")
}

func TestSaveUnwritable(t *testing.T) {
	img := testImage(2, 2)
	_, err := Save(img, filepath.Join(t.TempDir(), "missing", "out.jpg"))
	assert.ErrorIs(t, err, ErrEncoding)
}
