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

package rect

import (
	"encoding/json"

	"github.com/mlnoga/panoview/internal/ops"
	"github.com/mlnoga/panoview/internal/pano"
	"github.com/mlnoga/panoview/internal/segment"
	"github.com/nfnt/resize"
)

const DefaultPreviewWidth = 1024

// Saves a downscaled copy of the image. Takes one input, produces one output (the unchanged input)
type OpPreview struct {
	ops.OpUnaryBase
	Width       int    `json:"width"`
	FilePattern string `json:"filePattern"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpPreviewDefault() }) } // register the operator for JSON decoding

func NewOpPreviewDefault() *OpPreview { return NewOpPreview(DefaultPreviewWidth, "") }

func NewOpPreview(width int, filePattern string) *OpPreview {
	op := OpPreview{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "preview", Active: filePattern != ""}},
		Width:       width,
		FilePattern: filePattern,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Preview file name for a given output file name, e.g. out.tif -> out-preview.jpg
func PreviewFileName(fileName string) string {
	return segment.SuffixPath(pano.SidecarFileName(fileName), "preview")
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpPreview) UnmarshalJSON(data []byte) error {
	type defaults OpPreview
	def := defaults(*NewOpPreviewDefault())
	def.Active = true
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpPreview(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpPreview) Apply(img *pano.Image, c *ops.Context) (result *pano.Image, err error) {
	if !op.Active || op.FilePattern == "" {
		return img, nil
	}
	if _, err := ops.SaveImage(Downscale(img, op.Width), ops.ExpandFilePattern(op.FilePattern, img.ID), c); err != nil {
		return nil, err
	}
	return img, nil
}

// Resizes the image to the given width with a Lanczos-3 filter, keeping the aspect ratio.
// Images already at most that wide are returned unchanged
func Downscale(img *pano.Image, width int) *pano.Image {
	if width <= 0 || img.Width <= width {
		return img
	}
	scaled := resize.Resize(uint(width), 0, img.ToNRGBA(), resize.Lanczos3)
	res := pano.FromImage(scaled)
	res.ID, res.FileName = img.ID, img.FileName
	return res
}
