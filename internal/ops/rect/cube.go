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
	"github.com/mlnoga/panoview/internal/project"
	"github.com/mlnoga/panoview/internal/segment"
)

const DefaultCubeSize = 2048

// One face of a cube map, as seen from the center
type CubeFace struct {
	Name  string
	Yaw   float64
	Pitch float64
}

// The six faces in output order. Positive pitch looks down
var CubeFaces = []CubeFace{
	{"front", 0, 0},
	{"right", 90, 0},
	{"back", 180, 0},
	{"left", -90, 0},
	{"up", 0, -90},
	{"down", 0, 90},
}

// Camera for the given face with 90 degree field of view and square output
func (f CubeFace) Camera(size int) project.Camera {
	return project.Camera{FOV: 90, Yaw: f.Yaw, Pitch: f.Pitch, Width: size, Height: size}
}

// Renders and saves the six sharpened cube faces as <base>-<face><ext>.
// Takes one input, produces one output (the unchanged input)
type OpCube struct {
	ops.OpUnaryBase
	Size        int    `json:"size"`
	FilePattern string `json:"filePattern"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpCubeDefault() }) } // register the operator for JSON decoding

func NewOpCubeDefault() *OpCube { return NewOpCube(DefaultCubeSize, "") }

func NewOpCube(size int, filePattern string) *OpCube {
	op := OpCube{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "cube", Active: filePattern != ""}},
		Size:        size,
		FilePattern: filePattern,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpCube) UnmarshalJSON(data []byte) error {
	type defaults OpCube
	def := defaults(*NewOpCubeDefault())
	def.Active = true
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpCube(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpCube) MakePromises(ins []ops.Promise, c *ops.Context) (outs []ops.Promise, err error) {
	if op.Active && op.Size <= 0 {
		return nil, fmt.Errorf("%w: cube face size %d must be positive", pano.ErrInvalidParameters, op.Size)
	}
	return op.OpUnaryBase.MakePromises(ins, c)
}

func (op *OpCube) Apply(img *pano.Image, c *ops.Context) (result *pano.Image, err error) {
	if !op.Active || op.FilePattern == "" {
		return img, nil
	}
	base := ops.ExpandFilePattern(op.FilePattern, img.ID)
	for _, face := range CubeFaces {
		view, err := Render(img, face.Camera(op.Size), c)
		if err != nil {
			return nil, err
		}
		view = filter.Sharpen(view, c.MaxThreads)
		if _, err := ops.SaveImage(view, segment.SuffixPath(base, face.Name), c); err != nil {
			return nil, err
		}
	}
	return img, nil
}
