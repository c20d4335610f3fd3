// Command chartgen renders a region's price chart to an SVG or PNG file
// without running the dashboard service.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/loader"
)

var (
	countyCSV string
	cityCSV   string
	missing   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:           "chartgen",
	Short:         "Render California home-value charts from price exports",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&countyCSV, "county-csv", "data/CA_counties.csv", "county price CSV")
	rootCmd.PersistentFlags().StringVar(&cityCSV, "city-csv", "data/ZILLOW_DATA_CITIES.csv", "city price CSV")
	rootCmd.PersistentFlags().StringVar(&missing, "missing", "drop", "missing-sample policy: drop or zero")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log skipped rows")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "chartgen:", err)
		os.Exit(1)
	}
}

func logger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// loadIndex reads both price exports from disk and indexes them.
func loadIndex() (*domain.DatasetIndex, error) {
	policy, err := domain.ParseMissingPolicy(missing)
	if err != nil {
		return nil, err
	}
	read := func(path string) (domain.Table, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Table{}, fmt.Errorf("%w: %w", domain.ErrDatasetLoad, err)
		}
		t, _, err := loader.DecodeCSV(path, data)
		return t, err
	}
	counties, err := read(countyCSV)
	if err != nil {
		return nil, err
	}
	cities, err := read(cityCSV)
	if err != nil {
		return nil, err
	}
	return domain.BuildIndex(counties, cities, policy, logger())
}
