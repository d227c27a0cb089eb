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
	"fmt"

	"github.com/mlnoga/panoview/internal/ops"
	"github.com/mlnoga/panoview/internal/pano"
	"github.com/mlnoga/panoview/internal/segment"
)

// Cuts the image into horizontal pieces and saves each as <base>-<i><ext>.
// Takes one input, produces one output (the unchanged input)
type OpSlice struct {
	ops.OpUnaryBase
	Widths      []int  `json:"widths"`
	FilePattern string `json:"filePattern"` // Base name of the pieces, with %d expanded to the image id
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpSliceDefault() }) } // register the operator for JSON decoding

func NewOpSliceDefault() *OpSlice { return NewOpSlice(nil, "") }

func NewOpSlice(widths []int, filePattern string) *OpSlice {
	op := OpSlice{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "slice", Active: len(widths) > 0 && filePattern != ""}},
		Widths:      widths,
		FilePattern: filePattern,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpSlice) UnmarshalJSON(data []byte) error {
	type defaults OpSlice
	def := defaults(*NewOpSliceDefault())
	def.Active = true
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpSlice(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

// Rejects non-positive widths before any work is done
func (op *OpSlice) MakePromises(ins []ops.Promise, c *ops.Context) (outs []ops.Promise, err error) {
	if op.Active {
		if err := segment.ValidateWidths(op.Widths); err != nil {
			return nil, err
		}
	}
	return op.OpUnaryBase.MakePromises(ins, c)
}

func (op *OpSlice) Apply(img *pano.Image, c *ops.Context) (result *pano.Image, err error) {
	if !op.Active || len(op.Widths) == 0 || op.FilePattern == "" {
		return img, nil
	}
	pieces, err := segment.Segment(img, op.Widths)
	if err != nil {
		return nil, fmt.Errorf("%d: %w", img.ID, err)
	}
	base := ops.ExpandFilePattern(op.FilePattern, img.ID)
	for _, p := range pieces {
		fmt.Fprintf(c.Log, "%d: Piece %d spans columns [%d,%d)\n", img.ID, p.Index, p.Left, p.Right)
		if _, err := ops.SaveImage(p.Image, segment.PiecePath(base, p.Index), c); err != nil {
			return nil, err
		}
	}
	return img, nil
}
