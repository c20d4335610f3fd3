package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/wildfire-price-dashboard/internal/chart"
	"github.com/couchcryptid/wildfire-price-dashboard/internal/domain"
)

type renderOptions struct {
	kind      string
	region    string
	year      int
	fireStart string
	fireEnd   string
	out       string
	format    string
	style     string
}

var renderOpts renderOptions

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one region's chart",
	Long: `Renders the median home value chart for a county or city. By default the
chart spans the whole dataset; --year zooms to one year and --fire-start with
--fire-end scopes it to a fire's active range, highlighted.`,
	Example: `  chartgen render --kind county --region Butte --out butte.svg
  chartgen render --kind city --region Paradise --fire-start 2018-11-08 --fire-end 2018-11-25 --format png --out camp.png`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		idx, err := loadIndex()
		if err != nil {
			return err
		}
		return renderTo(idx, renderOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderOpts.kind, "kind", "county", "region kind: county or city")
	f.StringVar(&renderOpts.region, "region", "", "region name, e.g. Butte or Paradise")
	f.IntVar(&renderOpts.year, "year", 0, "zoom to one year")
	f.StringVar(&renderOpts.fireStart, "fire-start", "", "fire alarm date (YYYY-MM-DD)")
	f.StringVar(&renderOpts.fireEnd, "fire-end", "", "fire containment date (YYYY-MM-DD)")
	f.StringVarP(&renderOpts.out, "out", "o", "-", "output file, - for stdout")
	f.StringVar(&renderOpts.format, "format", "svg", "image format: svg or png")
	f.StringVar(&renderOpts.style, "style", "", "chart style YAML")
	_ = renderCmd.MarkFlagRequired("region")
	renderCmd.MarkFlagsRequiredTogether("fire-start", "fire-end")
	renderCmd.MarkFlagsMutuallyExclusive("year", "fire-start")

	rootCmd.AddCommand(renderCmd)
}

// renderTo renders into memory first so a failed render never touches an
// existing --out file.
func renderTo(idx *domain.DatasetIndex, opts renderOptions, stdout io.Writer) error {
	var buf bytes.Buffer
	if err := render(idx, opts, &buf); err != nil {
		return err
	}
	if opts.out == "" || opts.out == "-" {
		_, err := buf.WriteTo(stdout)
		return err
	}
	if err := os.WriteFile(opts.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	return nil
}

// render computes the domain the flags ask for and paints the chart to w.
func render(idx *domain.DatasetIndex, opts renderOptions, w io.Writer) error {
	kind, err := domain.ParseRegionKind(opts.kind)
	if err != nil {
		return err
	}
	if !kind.IsRegion() {
		return fmt.Errorf("kind must be county or city, got %q", opts.kind)
	}
	format, err := chart.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	style, err := chart.LoadStyle(opts.style)
	if err != nil {
		return err
	}

	sel := domain.RegionSelection(kind, opts.region)
	series, _, err := idx.Resolve(kind, opts.region)
	if err != nil {
		return err
	}

	var dom domain.ChartDomain
	switch {
	case opts.fireStart != "" || opts.fireEnd != "":
		r, rerr := parseRange(opts.fireStart, opts.fireEnd)
		if rerr != nil {
			return rerr
		}
		dom, err = domain.ComputeRangeDomain(sel, idx, r)
	case opts.year != 0:
		dom, err = domain.ComputeYearDomain(sel, idx, opts.year)
	default:
		dom, err = domain.ComputeFullDomain(sel, idx)
	}
	if err != nil {
		return err
	}

	surface := chart.NewSceneSurface(style)
	chart.NewRenderer(style, surface).Render(chart.Frame{Label: opts.region, Series: series, Domain: dom})
	return chart.Paint(surface.Scene(), style, format.Provider(), w)
}

func parseRange(start, end string) (domain.DateRange, error) {
	s, err := domain.ParseFireDate(start)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("fire-start: %w", err)
	}
	e, err := domain.ParseFireDate(end)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("fire-end: %w", err)
	}
	r := domain.DateRange{Start: s, End: e}
	return r, r.Validate()
}
