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
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/album-roulette/internal/artwork"
	"github.com/ademuri/album-roulette/internal/catalog"
	"github.com/ademuri/album-roulette/internal/logging"
	"github.com/ademuri/album-roulette/internal/metrics"
	"github.com/ademuri/album-roulette/internal/store"
)

var cfgFile string

// Cover lookups are paced to at most one request per interval per provider.
const lookupInterval = 250 * time.Millisecond

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "album-roulette",
	Short: "Picks a random album from a catalog by year or genre",
	Long: `Loads an album catalog (CSV file, URL or imported SQLite database),
builds the year and genre facets, and draws random albums from them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Config{
			Level:  viper.GetString("log_level"),
			Format: viper.GetString("log_format"),
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.album-roulette.yaml)")

	rootCmd.PersistentFlags().StringP(
		"catalog", "c", "./music.csv", "Catalog location: CSV file, http(s) URL or imported .db file")
	viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))

	rootCmd.PersistentFlags().String("log_level", "info", "Log level (debug, info, warn, error)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))

	rootCmd.PersistentFlags().String("log_format", "console", "Log format (console or json)")
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log_format"))

	rootCmd.PersistentFlags().String("itunes_url", artwork.DefaultITunesURL, "iTunes Search API endpoint")
	viper.BindPFlag("itunes_url", rootCmd.PersistentFlags().Lookup("itunes_url"))

	rootCmd.PersistentFlags().String("lastfm_api_key", "", "last.fm API key, enables last.fm artwork")
	viper.BindPFlag("lastfm_api_key", rootCmd.PersistentFlags().Lookup("lastfm_api_key"))

	rootCmd.PersistentFlags().String("lastfm_secret", "", "last.fm secret")
	viper.BindPFlag("lastfm_secret", rootCmd.PersistentFlags().Lookup("lastfm_secret"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".album-roulette" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".album-roulette")
	}

	viper.SetEnvPrefix("ROULETTE")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func catalogLocation() string {
	return viper.GetString("catalog")
}

func isDatabase(location string) bool {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// readCatalog loads the catalog from a URL, an imported database or a CSV
// file, depending on the shape of location.
func readCatalog(ctx context.Context, location string) (catalog.Result, error) {
	switch {
	case catalog.IsURL(location):
		client := &http.Client{Timeout: 30 * time.Second}
		return catalog.Fetch(ctx, client, location)
	case isDatabase(location):
		exists, err := store.Exists(location)
		if err != nil {
			return catalog.Result{}, fmt.Errorf("readCatalog: %w", err)
		}
		if !exists {
			return catalog.Result{}, fmt.Errorf("Database %s doesn't exist - run import first.", location)
		}
		s, err := store.New(location)
		if err != nil {
			return catalog.Result{}, fmt.Errorf("readCatalog: %w", err)
		}
		defer s.Close()
		return s.LoadAlbums()
	default:
		return catalog.ReadFile(location)
	}
}

// loadCatalog reads the catalog and reports malformed cells. A catalog that
// cannot be read at all is logged and replaced by an empty one.
func loadCatalog(ctx context.Context, location string) *catalog.Catalog {
	log := logging.WithComponent("catalog")
	result, err := readCatalog(ctx, location)
	if err != nil {
		metrics.CatalogLoadFailures.Inc()
		metrics.CatalogAlbums.Set(0)
		log.Warn().Err(err).Str("catalog", location).Msg("could not load catalog, continuing with no albums")
		return catalog.New(nil)
	}

	for _, rowErr := range result.Errors {
		metrics.CatalogRowErrors.WithLabelValues(rowErr.Column).Inc()
		msg := "malformed cell"
		if rowErr.Column == catalog.RowColumn {
			msg = "malformed row"
		}
		log.Warn().
			Err(rowErr.Err).
			Int("line", rowErr.Line).
			Str("column", rowErr.Column).
			Str("value", rowErr.Value).
			Msg(msg)
	}
	c := result.Catalog()
	metrics.CatalogAlbums.Set(float64(c.Len()))
	log.Info().Str("catalog", location).Int("albums", c.Len()).Int("row_errors", len(result.Errors)).Msg("catalog loaded")
	return c
}

// newCoverProvider returns iTunes artwork lookup, followed by last.fm when an
// API key is configured.
func newCoverProvider() artwork.Provider {
	chain := artwork.Chain{artwork.NewITunes(viper.GetString("itunes_url"), lookupInterval)}
	if key := viper.GetString("lastfm_api_key"); key != "" {
		chain = append(chain, artwork.NewLastFM(key, viper.GetString("lastfm_secret"), lookupInterval))
	}
	return chain
}
