package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	parquetadapter "github.com/couchcryptid/quakesense-service/internal/adapter/parquet"
	"github.com/couchcryptid/quakesense-service/internal/catalog"
	"github.com/couchcryptid/quakesense-service/internal/domain"
)

func (c *cli) eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List catalogued events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := c.analyzer.Events(cmd.Context())
			if err != nil {
				return err
			}
			if c.output() == jsonOut {
				return writeJSON(cmd.OutOrStdout(), events)
			}
			p := c.precision()
			rows := make([][]string, len(events))
			for i, e := range events {
				rows[i] = []string{
					e.ID, e.Date, e.Time,
					formatFloat(e.Magnitude, 1),
					formatFloat(e.DepthKm, 1),
					formatFloat(e.Geo.Lat, p),
					formatFloat(e.Geo.Lon, p),
					orDash(e.Province),
					orDash(e.District),
				}
			}
			return writeTable(cmd.OutOrStdout(),
				[]string{"Event", "Date", "Time", "Mag", "Depth km", "Lat", "Lon", "Province", "District"}, rows)
		},
	}
}

func (c *cli) eventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event <event-id>",
		Short: "Show one event with its location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.analyzer.Event(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.output() == jsonOut {
				return writeJSON(cmd.OutOrStdout(), e)
			}
			p := c.precision()
			fields := [][2]string{
				{"Event", e.ID},
				{"Date", e.Date},
				{"Time", e.Time},
				{"Magnitude", formatFloat(e.Magnitude, 1)},
				{"Depth km", formatFloat(e.DepthKm, 1)},
				{"Latitude", formatFloat(e.Geo.Lat, p)},
				{"Longitude", formatFloat(e.Geo.Lon, p)},
				{"Province", orDash(e.Province)},
				{"District", orDash(e.District)},
			}
			if e.GeoSource != "" {
				fields = append(fields,
					[2]string{"Place", orDash(e.PlaceName)},
					[2]string{"Geocoding", e.GeoSource},
				)
			}
			return writeFields(cmd.OutOrStdout(), fields)
		},
	}
}

func (c *cli) stationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stations <event-id>",
		Short: "List the stations that recorded an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stations, err := c.analyzer.Stations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.output() == jsonOut {
				return writeJSON(cmd.OutOrStdout(), stations)
			}
			p := c.precision()
			rows := make([][]string, len(stations))
			for i, s := range stations {
				rows[i] = []string{
					s.Code,
					orDash(s.Province),
					orDash(s.District),
					orDash(s.Lithology),
					formatFloat(s.Vs30, 0),
					formatFloat(s.PGANS, p),
					formatFloat(s.PGAEW, p),
					formatFloat(s.PGAUD, p),
				}
			}
			return writeTable(cmd.OutOrStdout(),
				[]string{"Code", "Province", "District", "Lithology", "Vs30", "PGA N-S", "PGA E-W", "PGA U-D"}, rows)
		},
	}
}

func (c *cli) stationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "station <event-id> <code>",
		Short: "Show one station record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.analyzer.Station(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if c.output() == jsonOut {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			p := c.precision()
			return writeFields(cmd.OutOrStdout(), [][2]string{
				{"Event", s.EventID},
				{"Code", s.Code},
				{"Latitude", formatFloat(s.Geo.Lat, p)},
				{"Longitude", formatFloat(s.Geo.Lon, p)},
				{"Province", orDash(s.Province)},
				{"District", orDash(s.District)},
				{"Lithology", orDash(s.Lithology)},
				{"Vs30", formatFloat(s.Vs30, 0)},
				{"Morphology", orDash(s.Morphology)},
				{"PGA N-S", formatFloat(s.PGANS, p)},
				{"PGA E-W", formatFloat(s.PGAEW, p)},
				{"PGA U-D", formatFloat(s.PGAUD, p)},
			})
		},
	}
}

func (c *cli) featuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "List the derivable signal features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			descriptors, err := c.analyzer.Descriptors(cmd.Context())
			if err != nil {
				c.logger.Warn("feature descriptions unavailable", "error", err)
			}
			features := domain.Features()
			all := make([]domain.FeatureDescriptor, len(features))
			rows := make([][]string, len(features))
			for i, f := range features {
				all[i] = catalog.Describe(descriptors, f)
				rows[i] = []string{strconv.Itoa(i), string(f), all[i].Title}
			}
			if c.output() == jsonOut {
				return writeJSON(cmd.OutOrStdout(), all)
			}
			return writeTable(cmd.OutOrStdout(), []string{"Index", "Feature", "Title"}, rows)
		},
	}
}

func (c *cli) featureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feature <event-id> <feature>",
		Short: "Compute one feature of an event's acceleration record",
		Long: `Compute one feature of an event's acceleration record. The feature is
named (motion, fourier, bracketed-duration, site-frequency, arias,
response-spectrum, phase-markers) or given by its index 0-6.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := domain.ParseFeature(args[1])
			if err != nil {
				return err
			}
			view, err := c.analyzer.Feature(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			if c.output() == jsonOut {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			return c.renderFeature(cmd, view.Description, view.Series)
		},
	}
}

func (c *cli) renderFeature(cmd *cobra.Command, d domain.FeatureDescriptor, s domain.DerivedSeries) error {
	w := cmd.OutOrStdout()
	p := c.precision()

	fmt.Fprintf(w, "%s\n", s.Title)
	if d.Title != "" && d.Title != s.Title {
		fmt.Fprintf(w, "%s\n", d.Title)
	}
	if d.Body != "" {
		fmt.Fprintf(w, "\n%s\n", d.Body)
	}
	if s.Message != "" {
		fmt.Fprintf(w, "\n%s\n", missingColor.Sprint(s.Message))
	}
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(s.Traces))
	for _, tr := range s.Traces {
		if len(tr.Y) == 0 {
			rows = append(rows, []string{tr.Name, orDash(tr.Panel), "0", "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			tr.Name,
			orDash(tr.Panel),
			strconv.Itoa(len(tr.Y)),
			formatFloat(floats.Min(tr.Y), p),
			formatFloat(floats.Max(tr.Y), p),
			formatFloat(tr.X[floats.MaxIdx(tr.Y)], p),
		})
	}
	header := []string{"Trace", "Panel", "Points", "Min", "Max", "Max at " + axisUnit(s.Domain)}
	if err := writeTable(w, header, rows); err != nil {
		return err
	}

	if len(s.Markers) > 0 {
		markers := make([][]string, len(s.Markers))
		for i, m := range s.Markers {
			markers[i] = []string{m.Label, formatFloat(m.X, p)}
		}
		if err := writeTable(w, []string{"Marker", axisUnit(s.Domain)}, markers); err != nil {
			return err
		}
	}

	if len(s.Values) > 0 {
		keys := make([]string, 0, len(s.Values))
		for k := range s.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([][2]string, len(keys))
		for i, k := range keys {
			values[i] = [2]string{k, formatFloat(s.Values[k], p)}
		}
		return writeFields(w, values)
	}
	return nil
}

func axisUnit(d domain.AxisDomain) string {
	switch d {
	case domain.DomainFrequency:
		return "Hz"
	case domain.DomainPeriod:
		return "T (s)"
	default:
		return "t (s)"
	}
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <event-id>",
		Short: "Show scalar ground-motion parameters of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.analyzer.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.output() == jsonOut {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			p := c.precision()
			return writeFields(cmd.OutOrStdout(), [][2]string{
				{"Event", s.EventID},
				{"Source", s.Source},
				{"Samples", strconv.Itoa(s.Samples)},
				{"Sample rate Hz", formatFloat(s.SampleRate, 0)},
				{"PGA", formatFloat(s.PGA, p)},
				{"PGV", formatFloat(s.PGV, p)},
				{"PGD", formatFloat(s.PGD, p)},
				{"Threshold exceeded", exceededLabel(s.Exceeded)},
				{"Bracketed duration s", formatFloat(s.BracketedDuration, 2)},
				{"Site frequency Hz", formatFloat(s.SiteFrequency, 2)},
				{"Arias intensity", formatFloat(s.AriasIntensity, p)},
			})
		},
	}
}

func (c *cli) summariesCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "summaries",
		Short: "Summarize every catalogued event",
		Example: `  quakectl summaries
  quakectl summaries --out summaries.parquet
  duckdb -c "SELECT event_id, pga FROM read_parquet('summaries.parquet')"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := c.analyzer.EventIDs(cmd.Context())
			if err != nil {
				return err
			}
			summaries := make([]domain.Summary, 0, len(ids))
			for _, id := range ids {
				s, err := c.analyzer.Summary(cmd.Context(), id)
				if err != nil {
					c.logger.Warn("summary unavailable, skipping event", "event_id", id, "error", err)
					continue
				}
				summaries = append(summaries, s)
			}

			if out != "" {
				if err := parquetadapter.WriteSummariesParquet(summaries, out); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d summaries to: %s\n", len(summaries), out)
				return nil
			}
			if c.output() == jsonOut {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}
			p := c.precision()
			rows := make([][]string, len(summaries))
			for i, s := range summaries {
				rows[i] = []string{
					s.EventID,
					strconv.Itoa(s.Samples),
					formatFloat(s.PGA, p),
					formatFloat(s.PGV, p),
					formatFloat(s.PGD, p),
					exceededLabel(s.Exceeded),
					formatFloat(s.BracketedDuration, 2),
					formatFloat(s.SiteFrequency, 2),
					formatFloat(s.AriasIntensity, p),
				}
			}
			return writeTable(cmd.OutOrStdout(),
				[]string{"Event", "Samples", "PGA", "PGV", "PGD", "Exceeded", "Duration s", "Site Hz", "Arias"}, rows)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write summaries to this Parquet file instead of printing")
	return cmd
}

func (c *cli) mapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map <event-id>",
		Short: "Generate the station map of an event and print its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := c.analyzer.StationMap(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), art.Path)
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <event-id> <feature>",
		Short: "Export a derived series to a Parquet file",
		Example: `  quakectl export 3416 fourier --out fourier.parquet
  duckdb -c "SELECT x, y FROM read_parquet('fourier.parquet') ORDER BY y DESC LIMIT 5"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := domain.ParseFeature(args[1])
			if err != nil {
				return err
			}
			view, err := c.analyzer.Feature(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("%s_%s.parquet", view.EventID, f)
			}
			n, err := parquetadapter.WriteSeriesParquet(view.EventID, view.Series, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d points to: %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output Parquet file (default <event-id>_<feature>.parquet)")
	return cmd
}
