package main

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	exceededColor = color.New(color.FgRed, color.Bold)
	quietColor    = color.New(color.FgGreen)
	missingColor  = color.New(color.FgHiBlack)
)

// configureColor applies the --color flag. "auto" leaves fatih/color's
// terminal detection in place.
func configureColor(mode string) {
	switch mode {
	case "yes", "true", "1":
		color.NoColor = false
	case "no", "false", "0":
		color.NoColor = true
	}
}

// writeTable renders rows under headers with numeric columns right aligned.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// writeFields renders key/value pairs as a two-column table.
func writeFields(w io.Writer, fields [][2]string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight}
	})
	rows := make([][]string, len(fields))
	for i, f := range fields {
		rows[i] = []string{f[0], f[1]}
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func orDash(s string) string {
	if s == "" {
		return missingColor.Sprint("-")
	}
	return s
}

func exceededLabel(exceeded bool) string {
	if exceeded {
		return exceededColor.Sprint("yes")
	}
	return quietColor.Sprint("no")
}
