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
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/klauspost/cpuid"
	nl "github.com/mlnoga/panoview/internal"
	"github.com/mlnoga/panoview/internal/ops"
	"github.com/mlnoga/panoview/internal/ops/rect"
	"github.com/mlnoga/panoview/internal/project"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

var cfgFile string

var start time.Time

var rootCmd = &cobra.Command{
	Use:   "panoview",
	Short: "Render rectilinear views from equirectangular panoramas",
	Long: `Panoview Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY. This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Panoview renders what a pinhole camera at the center of an equirectangular
panorama would see, sharpens the result and saves it as JPEG, PNG or 16-bit TIFF.
Optionally the view is cut into overlapping pieces, or all six cube faces are written.

Examples:
  # 90 degree view looking east, 2000x1500 pixels
  panoview convert pano.jpg east.jpg 90 90 0 2000 1500

  # Wide view cut into three pieces out-1.png, out-2.png, out-3.png
  panoview convert-and-slice pano.jpg out.png 120 0 0 6000 2000 2000 2000 2000

  # Cube faces cube-front.jpg ... cube-down.jpg
  panoview cube pano.jpg cube.jpg 1024

  # Same camera for all panoramas in a directory
  panoview batch --fov 75 --yaw -30 views/%03d.tif "panos/*.jpg"

  # Start HTTP server
  panoview serve --port 8080`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		start = time.Now()
		if logFile := viper.GetString("log"); logFile != "" {
			if err := nl.LogAlsoToFile(logFile); err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return nl.LogSync()
	},
}

func main() {
	err := rootCmd.Execute()
	if err == nil && start != (time.Time{}) {
		nl.LogPrintf("\nDone after %v\n", time.Since(start))
	}
	if closeErr := nl.LogClose(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetOut(nl.LogWriter())

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.panoview.yaml)")
	pf.String("log", "", "save log output to `file`")
	pf.Int("threads", defaultThreads(), "maximum number of threads")

	// Camera
	pf.Float64("fov", project.DefaultFOV, "horizontal field of view in degrees")
	pf.Float64("yaw", project.DefaultYaw, "viewing direction in degrees, positive turns right")
	pf.Float64("pitch", project.DefaultPitch, "viewing direction in degrees, positive tilts down")
	pf.Int("width", project.DefaultWidth, "output width in pixels")
	pf.Int("height", project.DefaultHeight, "output height in pixels")

	pf.Bool("preview", false, "also save a small <output>-preview.jpg")
	pf.Int("preview-width", rect.DefaultPreviewWidth, "width of the preview in pixels")

	for _, name := range []string{"log", "threads", "fov", "yaw", "pitch", "width", "height", "preview", "preview-width"} {
		viper.BindPFlag(name, pf.Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".panoview")
	}

	viper.SetEnvPrefix("PANOVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func defaultThreads() int {
	if cpuid.CPU.LogicalCores > 0 {
		return cpuid.CPU.LogicalCores
	}
	return runtime.GOMAXPROCS(0)
}

// Camera from flags, config file and environment
func cameraFromConfig() project.Camera {
	return project.Camera{
		FOV:    viper.GetFloat64("fov"),
		Yaw:    viper.GetFloat64("yaw"),
		Pitch:  viper.GetFloat64("pitch"),
		Width:  viper.GetInt("width"),
		Height: viper.GetInt("height"),
	}
}

func newContext() *ops.Context {
	return ops.NewContext(nl.LogWriter(), viper.GetInt("threads"))
}
