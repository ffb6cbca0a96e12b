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
	"bufio"
	"context"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/rotblauer/densitymap/app"
	"github.com/rotblauer/densitymap/daemon/webd"
	"github.com/rotblauer/densitymap/params"
	"github.com/spf13/cobra"
)

var optRenderOut string
var optRenderHTML bool
var optRenderViewport = params.DefaultViewport()

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the map to an SVG or HTML file",
	Long: `Render loads the dataset and writes the unzoomed map.

By default the output is a standalone SVG document. With --html the output
is the interactive page served by webd; it needs a running webd to zoom.

Examples:

  densitymap render --data data/final.json --out counties.svg
  densitymap render --data https://example.com/final.json --html --out - > index.html
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)

		config, err := loadMapConfig()
		if err != nil {
			log.Fatalln(err)
		}
		m, err := app.Load(context.Background(), config)
		if err != nil {
			log.Fatalln(err)
		}
		if err := writeRendered(m, optRenderOut, optRenderViewport, optRenderHTML); err != nil {
			log.Fatalln(err)
		}
	},
}

func writeRendered(m *app.Map, out string, v params.Viewport, html bool) error {
	var w io.Writer = os.Stdout
	if out != "-" && out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)
	var err error
	if html {
		err = m.WriteHTML(bw, v, webd.SocketPath)
	} else {
		err = m.WriteSVG(bw, v)
	}
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	slog.Info("Rendered map", "out", out, "viewport", v, "html", html)
	return nil
}

func init() {
	rootCmd.AddCommand(renderCmd)

	flags := renderCmd.Flags()
	flags.StringVar(&optRenderOut, "out", "-", "Output file, - for stdout")
	flags.BoolVar(&optRenderHTML, "html", false, "Write the interactive HTML page instead of SVG")
	flags.Float64Var(&optRenderViewport.Width, "width", optRenderViewport.Width, "Viewport width in pixels")
	flags.Float64Var(&optRenderViewport.Height, "height", optRenderViewport.Height, "Viewport height in pixels")
}
