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

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mlnoga/panoview/internal/ops"
	"github.com/mlnoga/panoview/internal/ops/rect"
	"github.com/mlnoga/panoview/internal/pano"
	"github.com/mlnoga/panoview/internal/project"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output> [fov yaw pitch outW outH]",
	Short: "Render one rectilinear view",
	Long: `Render one rectilinear view of an equirectangular panorama.

Positional camera values override the --fov, --yaw, --pitch, --width and --height flags.
The output format follows the file suffix: .jpg and .jpeg write JPEG at quality 100,
.png writes uncompressed PNG, .tif and .tiff write 16-bit TIFF plus a .jpg preview.`,
	Args: cobra.RangeArgs(2, 7),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(args, false)
	},
}

var convertAndSliceCmd = &cobra.Command{
	Use:   "convert-and-slice <input> <output> [fov yaw pitch outW outH w1 w2 ...]",
	Short: "Render one rectilinear view and cut it into pieces",
	Long: `Render one rectilinear view and cut it into horizontal pieces.

Pieces of the given widths are centered at evenly spaced positions across the view,
so neighboring pieces may overlap or leave gaps. Piece i is saved as <base>-<i><ext>.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(args, true)
	},
}

var cubeCmd = &cobra.Command{
	Use:   "cube <input> <output> [size]",
	Short: "Render the six faces of a cube map",
	Long: `Render the six faces of a cube map, each with 90 degree field of view.

Faces are saved as <base>-front<ext>, -right, -back, -left, -up and -down.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		size := rect.DefaultCubeSize
		if len(args) > 2 {
			var err error
			if size, err = parseInt("size", args[2]); err != nil {
				return err
			}
		}
		if size <= 0 {
			return fmt.Errorf("%w: cube face size %d must be positive", pano.ErrInvalidParameters, size)
		}
		seq := ops.NewOpSequence(rect.NewOpCube(size, args[1]))
		return rect.Run(args[:1], seq, rect.CubeFaces[0].Camera(size), newContext())
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <outputPattern> <inputPattern>...",
	Short: "Render the same view from many panoramas",
	Long: `Render the same view from all panoramas matching the input patterns.

The camera comes from flags, config file or environment. A %d in the output pattern
is replaced with the number of the input file.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settingsFromConfig(args[0])
		s.Widths = viper.GetIntSlice("batch.widths")
		seq, err := s.Sequence()
		if err != nil {
			return err
		}
		return rect.Run(args[1:], seq, s.Camera, newContext())
	},
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <pipeline.json> <inputPattern>...",
	Short: "Run a JSON operator pipeline on many panoramas",
	Long: `Run a JSON operator pipeline on all panoramas matching the input patterns.

The pipeline is a sequence such as
  {"type":"seq","steps":[{"type":"project","fov":60,"yaw":90},{"type":"sharpen"},{"type":"save","filePattern":"out%d.jpg"}]}`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		seq, err := readPipeline(args[0])
		if err != nil {
			return err
		}
		cam := cameraFromConfig()
		for _, step := range seq.Steps {
			if p, ok := step.(*rect.OpProject); ok {
				cam = p.Camera
			}
		}
		return rect.Run(args[1:], seq, cam, newContext())
	},
}

func init() {
	rootCmd.AddCommand(convertCmd, convertAndSliceCmd, cubeCmd, batchCmd, pipelineCmd)

	batchCmd.Flags().IntSlice("widths", nil, "piece widths, comma separated")
	viper.BindPFlag("batch.widths", batchCmd.Flags().Lookup("widths"))
}

func runConvert(args []string, slice bool) error {
	cam, widths, err := parseCameraArgs(args[2:], cameraFromConfig())
	if err != nil {
		return err
	}
	if !slice && len(widths) > 0 {
		return fmt.Errorf("%w: unexpected arguments %v, use convert-and-slice for pieces", pano.ErrInvalidParameters, widths)
	}
	s := settingsFromConfig(args[1])
	s.Camera = cam
	s.Widths = widths
	seq, err := s.Sequence()
	if err != nil {
		return err
	}
	return rect.Run(args[:1], seq, cam, newContext())
}

func settingsFromConfig(output string) rect.ConvertSettings {
	s := rect.DefaultConvertSettings()
	s.Camera = cameraFromConfig()
	s.Output = output
	s.Preview = viper.GetBool("preview")
	s.PreviewWidth = viper.GetInt("preview-width")
	return s
}

// Overrides camera values with positional arguments in the order fov, yaw, pitch, width, height.
// Any further arguments are returned as piece widths
func parseCameraArgs(args []string, cam project.Camera) (project.Camera, []int, error) {
	floats := []*float64{&cam.FOV, &cam.Yaw, &cam.Pitch}
	ints := []*int{&cam.Width, &cam.Height}
	names := []string{"fov", "yaw", "pitch", "width", "height"}

	var widths []int
	for i, arg := range args {
		var err error
		switch {
		case i < len(floats):
			*floats[i], err = parseFloat(names[i], arg)
		case i < len(floats)+len(ints):
			*ints[i-len(floats)], err = parseInt(names[i], arg)
		default:
			var w int
			w, err = parseInt(fmt.Sprintf("piece width %d", len(widths)+1), arg)
			widths = append(widths, w)
		}
		if err != nil {
			return cam, nil, err
		}
	}
	return cam, widths, nil
}

func parseFloat(name, arg string) (float64, error) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s '%s' is not a number", pano.ErrInvalidParameters, name, arg)
	}
	return v, nil
}

func parseInt(name, arg string) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %s '%s' is not an integer", pano.ErrInvalidParameters, name, arg)
	}
	return v, nil
}

func readPipeline(fileName string) (*ops.OpSequence, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	var seq ops.OpSequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("%w: pipeline %s: %v", pano.ErrInvalidParameters, fileName, err)
	}
	return &seq, nil
}
