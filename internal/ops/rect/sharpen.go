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

	"github.com/mlnoga/panoview/internal/filter"
	"github.com/mlnoga/panoview/internal/ops"
	"github.com/mlnoga/panoview/internal/pano"
)

// Sharpens with the fixed 3x3 kernel
type OpSharpen struct {
	ops.OpUnaryBase
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpSharpenDefault() }) } // register the operator for JSON decoding

func NewOpSharpenDefault() *OpSharpen { return NewOpSharpen(true) }

func NewOpSharpen(active bool) *OpSharpen {
	op := OpSharpen{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "sharpen", Active: active}},
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpSharpen) UnmarshalJSON(data []byte) error {
	type defaults OpSharpen
	def := defaults(*NewOpSharpenDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpSharpen(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpSharpen) Apply(img *pano.Image, c *ops.Context) (result *pano.Image, err error) {
	if !op.Active {
		return img, nil
	}
	res := filter.Sharpen(img, c.MaxThreads)
	res.UpdateStats()
	fmt.Fprintf(c.Log, "%d: Sharpened, %v\n", res.ID, res.Stats)
	return res, nil
}
