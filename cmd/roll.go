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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ademuri/album-roulette/internal/artwork"
	"github.com/ademuri/album-roulette/internal/catalog"
	"github.com/ademuri/album-roulette/internal/facet"
	"github.com/ademuri/album-roulette/internal/metrics"
	"github.com/ademuri/album-roulette/internal/roulette"
)

const (
	cardTags        = 6
	cardDescriptors = 8
)

var (
	rollYear  int
	rollGenre string
	rollTimes int
	rollCover bool
	rollSpin  time.Duration
)

var rollCmd = &cobra.Command{
	Use:   "roll",
	Short: "Draws a random album",
	Long: `Draws a random album released in --year or tagged with --genre.
Without either flag the latest year in the catalog is used.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("year") && cmd.Flags().Changed("genre") {
			return fmt.Errorf("--year and --genre are mutually exclusive")
		}
		if rollTimes < 1 {
			return fmt.Errorf("--times must be at least 1")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		c := loadCatalog(cmd.Context(), catalogLocation())
		f, ok := rollFacet(cmd, facet.BuildCatalog(c))
		if !ok {
			fmt.Println("The catalog has no albums to roll.")
			return
		}
		var covers artwork.Provider
		if rollCover {
			covers = newCoverProvider()
		}
		err := rollAlbums(cmd.Context(), os.Stdout, c, roulette.DefaultPicker(), covers, f, rollTimes, rollSpin)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(rollCmd)
	rollCmd.Flags().IntVar(&rollYear, "year", 0, "release year to draw from")
	rollCmd.Flags().StringVar(&rollGenre, "genre", "", "genre tag to draw from")
	rollCmd.Flags().IntVar(&rollTimes, "times", 1, "number of independent draws")
	rollCmd.Flags().BoolVar(&rollCover, "cover", false, "look up cover art for each pick")
	rollCmd.Flags().DurationVar(&rollSpin, "spin", 0, "pause before revealing each pick")
}

// rollFacet builds the facet from the flags, defaulting to the latest year.
func rollFacet(cmd *cobra.Command, ix facet.Index) (roulette.Facet, bool) {
	switch {
	case cmd.Flags().Changed("genre"):
		return roulette.GenreFacet(rollGenre), true
	case cmd.Flags().Changed("year"):
		return roulette.YearFacet(rollYear), true
	}
	year, ok := ix.DefaultYear()
	return roulette.YearFacet(year), ok
}

// rollAlbums draws times albums from the pool of f and prints a card for
// each. An empty pool prints a notice and is not an error.
func rollAlbums(ctx context.Context, out io.Writer, c *catalog.Catalog, picker *roulette.Picker, covers artwork.Provider, f roulette.Facet, times int, spin time.Duration) error {
	for i := 0; i < times; i++ {
		if spin > 0 {
			fmt.Fprintln(out, "Spinning...")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(spin):
			}
		}

		album, err := picker.PickFromCatalog(c, f)
		if errors.Is(err, roulette.ErrEmptyPool) {
			metrics.Rolls.WithLabelValues(string(f.Mode), metrics.OutcomeEmpty).Inc()
			fmt.Fprintf(out, "No albums match %s.\n", f)
			return nil
		}
		if err != nil {
			return fmt.Errorf("rollAlbums: %w", err)
		}
		metrics.Rolls.WithLabelValues(string(f.Mode), metrics.OutcomePicked).Inc()

		coverURL := artwork.Resolve(ctx, covers, album.ReleaseName, album.ArtistName)
		if err := printCard(out, album, coverURL, covers != nil); err != nil {
			return fmt.Errorf("rollAlbums: %w", err)
		}
	}
	return nil
}

func formatRating(a catalog.Album) string {
	if !a.HasRating() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f (%d ratings)", a.AvgRating, a.RatingCount)
}

func firstN(tags []string, n int) string {
	if len(tags) > n {
		tags = tags[:n]
	}
	return strings.Join(tags, ", ")
}

// printCard writes the album card: title, artist, date, type, rating, the
// first tags and descriptors and, when looked up, the cover.
func printCard(out io.Writer, a catalog.Album, coverURL string, showCover bool) error {
	date := a.ReleaseDate.Long()
	if date == "" {
		date = "unknown"
	}
	rows := [][]string{
		{"Title", a.ReleaseName},
		{"Artist", a.ArtistName},
		{"Released", date},
		{"Type", a.ReleaseType},
		{"Rating", formatRating(a)},
		{"Genres", firstN(a.Genres(), cardTags)},
		{"Descriptors", firstN(a.Descriptors, cardDescriptors)},
	}
	if a.Position > 0 {
		rows = append([][]string{{"Position", strconv.Itoa(a.Position)}}, rows...)
	}
	if showCover {
		if coverURL == "" {
			coverURL = "none found"
		}
		rows = append(rows, []string{"Cover", coverURL})
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Field", "Value"})
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
