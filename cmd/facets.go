/*
Copyright 2020 Google LLC

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
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/album-roulette/internal/facet"
)

var (
	facetsNumber int
	facetsFormat string
)

var facetsCmd = &cobra.Command{
	Use:       "facets [years|genres]",
	Short:     "Lists the years and genres of the catalog",
	Long:      `Years are listed in ascending order. Genres are ranked by how many times they are tagged, ties in catalog order.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"years", "genres"},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if facetsFormat != "table" && facetsFormat != "yaml" {
			return fmt.Errorf("unknown format %q, want table or yaml", facetsFormat)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		which := ""
		if len(args) > 0 {
			which = args[0]
		}
		c := loadCatalog(cmd.Context(), catalogLocation())
		err := printFacets(os.Stdout, facet.BuildCatalog(c), which, facetsNumber, facetsFormat)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(facetsCmd)
	facetsCmd.Flags().IntVarP(&facetsNumber, "number", "n", 0, "number of genres to show (0 for all)")
	facetsCmd.Flags().StringVar(&facetsFormat, "format", "table", "output format: table or yaml")
}

// printFacets writes the years and/or genres of ix. which is "years",
// "genres" or empty for both.
func printFacets(out io.Writer, ix facet.Index, which string, number int, format string) error {
	showYears := which == "" || which == "years"
	showGenres := which == "" || which == "genres"

	if format == "yaml" {
		view := struct {
			Years  []int              `yaml:"years,omitempty"`
			Genres []facet.GenreCount `yaml:"genres,omitempty"`
		}{}
		if showYears {
			view.Years = ix.Years
		}
		if showGenres {
			view.Genres = ix.TopGenres(number)
		}
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(view); err != nil {
			return fmt.Errorf("encoding facets: %w", err)
		}
		return encoder.Close()
	}

	if showYears {
		table := tablewriter.NewWriter(out)
		table.Header([]string{"Year"})
		for _, year := range ix.Years {
			if err := table.Append([]string{strconv.Itoa(year)}); err != nil {
				return fmt.Errorf("printFacets: %w", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("printFacets: %w", err)
		}
		if first, last, ok := ix.Span(); ok {
			fmt.Fprintf(out, "Found %d years from %d to %d\n", len(ix.Years), first, last)
		} else {
			fmt.Fprintln(out, "Found no years")
		}
	}

	if showGenres {
		table := tablewriter.NewWriter(out)
		table.Header([]string{"Genre", "Albums"})
		for _, g := range ix.TopGenres(number) {
			if err := table.Append([]string{g.Tag, strconv.Itoa(g.Count)}); err != nil {
				return fmt.Errorf("printFacets: %w", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("printFacets: %w", err)
		}
		fmt.Fprintf(out, "Found %d genres\n", len(ix.Genres))
	}
	return nil
}
