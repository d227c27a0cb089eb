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
	"time"

	"github.com/mlnoga/panoview/internal/ops"
	"github.com/mlnoga/panoview/internal/pano"
	"github.com/mlnoga/panoview/internal/project"
	"github.com/mlnoga/panoview/internal/resample"
)

// Bytes per output pixel while rendering: two float32 coordinates, the resampled
// and the sharpened RGB image
const bytesPerOutputPixel = 2*4 + 2*pano.Channels

// Estimated peak memory for rendering a view of the given camera from a source of the given size
func EstimateBytes(srcWidth, srcHeight int, cam project.Camera) int64 {
	return int64(srcWidth)*int64(srcHeight)*pano.Channels +
		int64(cam.Width)*int64(cam.Height)*bytesPerOutputPixel
}

// Renders the rectilinear view of a camera from an equirectangular input
type OpProject struct {
	ops.OpUnaryBase
	project.Camera
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpProjectDefault() }) } // register the operator for JSON decoding

func NewOpProjectDefault() *OpProject { return NewOpProject(project.DefaultCamera()) }

func NewOpProject(cam project.Camera) *OpProject {
	op := OpProject{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "project", Active: true}},
		Camera:      cam,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpProject) UnmarshalJSON(data []byte) error {
	type defaults OpProject
	def := defaults(*NewOpProjectDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpProject(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpProject) MakePromises(ins []ops.Promise, c *ops.Context) (outs []ops.Promise, err error) {
	if err := op.Camera.Validate(); err != nil {
		return nil, err
	}
	return op.OpUnaryBase.MakePromises(ins, c)
}

func (op *OpProject) Apply(img *pano.Image, c *ops.Context) (result *pano.Image, err error) {
	return Render(img, op.Camera, c)
}

// Projects and resamples one view of the camera from the source
func Render(img *pano.Image, cam project.Camera, c *ops.Context) (*pano.Image, error) {
	if err := cam.Validate(); err != nil {
		return nil, fmt.Errorf("%d: %w", img.ID, err)
	}
	need := EstimateBytes(img.Width, img.Height, cam)
	if c.BudgetMB > 0 && need > int64(c.BudgetMB)*1024*1024 {
		return nil, fmt.Errorf("%w: %d: %s view needs %d MB, budget is %d MB",
			pano.ErrInvalidParameters, img.ID, cam, need/1024/1024, c.BudgetMB)
	}

	start := time.Now()
	m, err := project.Project(img.Width, img.Height, cam, c.MaxThreads)
	if err != nil {
		return nil, fmt.Errorf("%d: %w", img.ID, err)
	}
	res := resample.Remap(img, m, c.MaxThreads)
	fmt.Fprintf(c.Log, "%d: Projected %s to %s in %v\n", img.ID, img.DimensionsToString(), cam, time.Since(start).Round(time.Millisecond))
	return res, nil
}
