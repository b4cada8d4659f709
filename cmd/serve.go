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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/album-roulette/internal/catalog"
	"github.com/ademuri/album-roulette/internal/logging"
	"github.com/ademuri/album-roulette/internal/roulette"
	"github.com/ademuri/album-roulette/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the roulette over HTTP",
	Long:  `Loads the catalog once and serves facets, random picks, cover lookups and an interactive session as JSON.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, viper.GetString("addr"), catalogLocation()); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	var addr string
	serveCmd.Flags().StringVar(&addr, "addr", ":4000", "Address to listen on")
	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}

// catalogFile returns the local CSV to serve back, or "" when the catalog
// does not come from one.
func catalogFile(location string) string {
	if catalog.IsURL(location) || isDatabase(location) {
		return ""
	}
	if _, err := os.Stat(location); err != nil {
		return ""
	}
	return location
}

func serve(ctx context.Context, addr string, location string) error {
	log := logging.WithComponent("serve")
	c := loadCatalog(ctx, location)
	app := server.New(c, roulette.DefaultPicker(), newCoverProvider(), catalogFile(location))
	srv := app.NewHTTPServer(addr)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Int("albums", c.Len()).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	app.Session.Wait()
	return nil
}
