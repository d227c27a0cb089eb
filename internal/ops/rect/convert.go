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
	"fmt"

	"github.com/mlnoga/panoview/internal/ops"
	"github.com/mlnoga/panoview/internal/project"
)

// Per-image conversion: project, sharpen, save, then optionally slice and preview
func NewOpConvert(opProject *OpProject, opSharpen *OpSharpen, opSave *ops.OpSave, opSlice *OpSlice, opPreview *OpPreview) *ops.OpSequence {
	return ops.NewOpSequence(opProject, opSharpen, opSave, opSlice, opPreview)
}

// Conversion settings as used by the command line and the REST API
type ConvertSettings struct {
	Camera       project.Camera `json:"camera"`
	Output       string         `json:"output"`       // Output file pattern, %d expands to the image id
	Widths       []int          `json:"widths"`       // Optional piece widths
	PreviewWidth int            `json:"previewWidth"` // Width of the preview, if Preview is set
	Preview      bool           `json:"preview"`      // Save <output>-preview.jpg
}

func DefaultConvertSettings() ConvertSettings {
	return ConvertSettings{Camera: project.DefaultCamera(), PreviewWidth: DefaultPreviewWidth}
}

// Builds the per-image conversion sequence for the settings
func (s ConvertSettings) Sequence() (*ops.OpSequence, error) {
	if s.Output == "" {
		return nil, fmt.Errorf("no output file given")
	}
	if err := s.Camera.Validate(); err != nil {
		return nil, err
	}
	preview := ""
	if s.Preview {
		preview = PreviewFileName(s.Output)
	}
	return NewOpConvert(
		NewOpProject(s.Camera),
		NewOpSharpenDefault(),
		ops.NewOpSave(s.Output),
		NewOpSlice(s.Widths, s.Output),
		NewOpPreview(s.PreviewWidth, preview),
	), nil
}

// Loads all files matching the patterns and runs the sequence on each, with as many
// images in flight as the memory budget allows
func Run(filePatterns []string, seq *ops.OpSequence, cam project.Camera, c *ops.Context) error {
	promises, err := ops.NewOpSequence(ops.NewOpLoadMany(filePatterns), seq).MakePromises(nil, c)
	if err != nil {
		return err
	}
	// assume an 8k source, the exact size is only known after loading
	jobs := c.ConcurrentJobs(EstimateBytes(8192, 4096, cam))
	if jobs > len(promises) {
		jobs = len(promises)
	}
	fmt.Fprintf(c.Log, "Processing %d images, %d at a time\n", len(promises), jobs)
	_, err = ops.MaterializeAll(promises, jobs, true)
	return err
}
