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
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/rotblauer/densitymap/params"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   params.AppName,
	Short: "Population density by county, as a choropleth map",
	Long: `Densitymap draws US counties colored by population density.

It loads a county topology once, classifies every county into one of six
buckets of a scale running from zero to the mean density, and draws the
counties with a legend. Render a static SVG or HTML page, print the legend,
or serve the interactive map, where clicking a county zooms to it.
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := params.DefaultDataConfig()
	pFlags := rootCmd.PersistentFlags()
	pFlags.StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is %s)", params.DefaultConfigFile))
	pFlags.String("verbosity", "info", "Log level: debug, info, warn, or error")
	pFlags.String("data", defaults.Source, "Dataset path or http(s) URL")
	pFlags.String("object", defaults.Object, "Topology object holding the counties")
	pFlags.Duration("timeout", defaults.Timeout, "Timeout for fetching a remote dataset")

	bindFlags(pFlags, map[string]string{
		"verbosity":    "verbosity",
		"data.source":  "data",
		"data.object":  "object",
		"data.timeout": "timeout",
	})
}

// bindFlags binds viper keys to flags by name.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			log.Fatalln(err)
		}
	}
}

// setMapDefaults registers every map setting with viper, so each can be
// overridden from the environment as well as the config file.
func setMapDefaults(v *viper.Viper) {
	d := params.DefaultMapConfig()
	v.SetDefault("projection.scale", d.Projection.Scale)
	v.SetDefault("projection.translate_x", d.Projection.TranslateX)
	v.SetDefault("projection.translate_y", d.Projection.TranslateY)
	v.SetDefault("zoom.level", d.Zoom.Level)
	v.SetDefault("zoom.duration", d.Zoom.Duration)
	v.SetDefault("zoom.frame_rate", d.Zoom.FrameRate)
	v.SetDefault("tooltip.opacity", d.Tooltip.Opacity)
	v.SetDefault("tooltip.show_duration", d.Tooltip.ShowDuration)
	v.SetDefault("tooltip.hide_duration", d.Tooltip.HideDuration)
	v.SetDefault("legend.title", d.Legend.Title)
	v.SetDefault("render.stroke", d.Render.Stroke)
	v.SetDefault("render.stroke_width", d.Render.StrokeWidth)
	v.SetDefault("render.cursor", d.Render.Cursor)
	v.SetDefault("render.precision", d.Render.Precision)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setMapDefaults(viper.GetViper())

	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			log.Fatalln(err)
		}
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigFile(params.DefaultConfigFile)
	}
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(params.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default file is fine; a missing explicit one is not.
		if cfgFile != "" || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			log.Fatalln(fmt.Errorf("read config %s: %w", viper.ConfigFileUsed(), err))
		}
		return
	}
	slog.Debug("Using config file", "path", viper.ConfigFileUsed())
}

// loadMapConfig overlays flags, environment, and the config file on the
// default map configuration.
func loadMapConfig() (*params.MapConfig, error) {
	config := params.DefaultMapConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaultSlog(cmd *cobra.Command, args []string) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("verbosity"))); err != nil {
		log.Fatalln(fmt.Errorf("bad verbosity: %w", err))
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	slog.Debug("Running", "command", cmd.CommandPath(), "args", args)
}
