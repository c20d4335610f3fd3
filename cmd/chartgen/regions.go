package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
)

var regionsKind string

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the regions that have a price series",
	RunE: func(cmd *cobra.Command, _ []string) error {
		kind, err := domain.ParseRegionKind(regionsKind)
		if err != nil {
			return err
		}
		idx, err := loadIndex()
		if err != nil {
			return err
		}
		ds := idx.Dataset(kind)
		if ds == nil {
			return fmt.Errorf("kind must be county or city, got %q", regionsKind)
		}
		first, last, _ := ds.Span()
		for _, name := range ds.Names() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d samples\n", name, len(ds.Series[name]))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d %s regions, %s to %s\n",
			len(ds.Series), kind, first.Format("Jan 2006"), last.Format("Jan 2006"))
		return nil
	},
}

func init() {
	regionsCmd.Flags().StringVar(&regionsKind, "kind", "county", "region kind: county or city")
	rootCmd.AddCommand(regionsCmd)
}
