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
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/album-roulette/internal/logging"
	"github.com/ademuri/album-roulette/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import [csv file or URL]",
	Short: "Imports a catalog into a SQLite database",
	Long: `Parses the catalog and replaces the contents of --database with it.
The database can then be passed as --catalog to the other commands.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := importCatalog(cmd.Context(), os.Stdout, args[0], viper.GetString("database"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	var database string
	importCmd.Flags().StringVarP(&database, "database", "d", "./music.db", "Path to the SQLite database")
	viper.BindPFlag("database", importCmd.Flags().Lookup("database"))
}

func importCatalog(ctx context.Context, out io.Writer, source string, dbPath string) error {
	if isDatabase(source) {
		return fmt.Errorf("importCatalog: %s is already a database", source)
	}
	result, err := readCatalog(ctx, source)
	if err != nil {
		return fmt.Errorf("importCatalog: %w", err)
	}
	log := logging.WithComponent("import")
	for _, rowErr := range result.Errors {
		log.Warn().Int("line", rowErr.Line).Str("column", rowErr.Column).Str("value", rowErr.Value).Msg("malformed cell")
	}

	s, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("importCatalog: %w", err)
	}
	defer s.Close()

	if err := s.ImportAlbums(result.Albums); err != nil {
		return fmt.Errorf("importCatalog: %w", err)
	}
	count, err := s.CountAlbums()
	if err != nil {
		return fmt.Errorf("importCatalog: %w", err)
	}
	fmt.Fprintf(out, "Imported %d albums (%d malformed cells) into %s\n", count, len(result.Errors), dbPath)
	return nil
}
