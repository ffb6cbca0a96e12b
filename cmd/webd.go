/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"log"
	"log/slog"

	"github.com/rotblauer/densitymap/app"
	"github.com/rotblauer/densitymap/common"
	"github.com/rotblauer/densitymap/daemon/webd"
	"github.com/rotblauer/densitymap/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// webdCmd represents the webd command
var webdCmd = &cobra.Command{
	Use:   "webd",
	Short: "Serve the interactive map",
	Long: `Webd loads the dataset once, then serves the map page, its SVG and legend,
and a websocket that animates each viewer's zoom.

The daemon does not listen until the dataset has loaded; a failed load exits.`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		slog.Info("webd.Run")

		mapConfig, err := loadMapConfig()
		if err != nil {
			log.Fatalln(err)
		}
		m, err := app.Load(context.Background(), mapConfig)
		if err != nil {
			log.Fatalln(err)
		}

		config := params.DefaultWebDaemonConfig()
		config.Map = mapConfig
		config.Network = viper.GetString("web.network")
		config.Address = viper.GetString("web.address")
		config.SessionTTL = viper.GetDuration("web.session_ttl")

		server, err := webd.NewWebDaemon(config, m)
		if err != nil {
			log.Fatalln(err)
		}
		if err := server.Start(); err != nil {
			log.Fatalln(err)
		}

		done := make(chan error, 1)
		go func() { done <- server.Wait() }()
		select {
		case sig := <-common.Interrupted():
			slog.Info("webd interrupted", "signal", sig)
			if err := server.Stop(); err != nil {
				log.Fatalln(err)
			}
		case err := <-done:
			if err != nil {
				log.Fatalln(err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(webdCmd)

	defaults := params.DefaultWebDaemonConfig()

	pFlags := webdCmd.PersistentFlags()
	pFlags.String("network", defaults.Network, "Network to listen on")
	pFlags.String("address", defaults.Address, "HTTP address to listen on")
	pFlags.Duration("session-ttl", defaults.SessionTTL, "Idle expiry of REST view sessions")

	bindFlags(pFlags, map[string]string{
		"web.network":     "network",
		"web.address":     "address",
		"web.session_ttl": "session-ttl",
	})
}
