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

	nl "github.com/mlnoga/panoview/internal"
	"github.com/mlnoga/panoview/internal/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the conversion API",
	Long: `Start an HTTP server that converts panoramas below the working directory.

Endpoints:
  GET  /api/v1/ping
  POST /api/v1/convert   {"filePatterns":[...],"output":"out%d.jpg","camera":{...},"widths":[...]}
  POST /api/v1/cube      {"filePatterns":[...],"output":"cube%d.jpg","size":1024}
  POST /api/v1/pipeline  {"filePatterns":[...],"pipeline":{"type":"seq","steps":[...]}}

Examples:
  # Start server on default port 8080
  panoview serve

  # Serve panoramas from /srv/panos as user 1000
  sudo panoview serve --chroot /srv/panos --setuid 1000 --bind 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		chroot := viper.GetString("server.chroot")
		setuid := viper.GetInt("server.setuid")
		if err := rest.MakeSandbox(nl.LogWriter(), chroot, setuid); err != nil {
			return err
		}
		addr := fmt.Sprintf("%s:%d", viper.GetString("server.bind"), viper.GetInt("server.port"))
		return rest.Serve(addr, viper.GetInt("threads"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().String("chroot", "", "change filesystem root to `dir` before serving")
	serveCmd.Flags().Int("setuid", -1, "change to user `id` before serving")

	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.chroot", serveCmd.Flags().Lookup("chroot"))
	viper.BindPFlag("server.setuid", serveCmd.Flags().Lookup("setuid"))
}
