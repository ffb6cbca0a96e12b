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
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/rotblauer/densitymap/app"
	"github.com/spf13/cobra"
)

// legendCmd represents the legend command
var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Print the density legend",
	Long: `Legend loads the dataset and prints the six legend buckets:
label, fill color, and the density range each one covers.`,
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
		if err := printLegend(os.Stdout, m); err != nil {
			log.Fatalln(err)
		}
	},
}

func printLegend(w io.Writer, m *app.Map) error {
	scale := m.Scale()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", m.Config().Legend.Title)
	fmt.Fprintf(tw, "counties: %s\tmean: %s\n",
		humanize.Comma(int64(m.Collection().Len())), strconv.FormatFloat(scale.Mean(), 'f', 2, 64))
	fmt.Fprintln(tw, "LABEL\tFILL\tHEX\tRANGE")
	for _, e := range m.Legend() {
		lo, hi, _ := scale.InvertExtent(e.Level)
		fmt.Fprintf(tw, "%s\t%s\t%s\t[%s, %s)\n", e.Label, e.Fill, e.Color.Hex(),
			strconv.FormatFloat(lo, 'f', 2, 64), strconv.FormatFloat(hi, 'f', 2, 64))
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(legendCmd)
}
