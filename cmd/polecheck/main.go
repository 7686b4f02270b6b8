// Command polecheck validates a pole spreadsheet without starting the
// server. It reports which rows would be drawn and why the others are
// skipped.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/PoleMap/internal/core"
	"github.com/JonMunkholm/PoleMap/internal/logging"
	"github.com/JonMunkholm/PoleMap/internal/overlay"
	"github.com/JonMunkholm/PoleMap/internal/poles"
)

type options struct {
	format   string
	pretty   bool
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "polecheck [postes.xlsx]",
		Short: "Validate a utility pole spreadsheet",
		Long: `polecheck reads an .xlsx workbook or .csv file with the columns
Latitud, Longitud and Numero and reports which rows would be drawn on the map.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	return cmd
}

// Report is the json output of polecheck.
type Report struct {
	Source  string          `json:"source"`
	Format  string          `json:"format"`
	Stats   poles.LoadStats `json:"stats"`
	Center  *overlay.LatLon `json:"center"`
	Skipped []core.RowView  `json:"skipped"`
}

func run(cmd *cobra.Command, path string, opts *options) error {
	logger := logging.New(cmd.ErrOrStderr(), opts.logLevel, "text")

	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("invalid format: %s (must be text or json)", opts.format)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	table, err := poles.Load(name, f)
	if err != nil {
		return err
	}
	if table.Empty() {
		return core.ErrEmptyTable
	}
	logger.Info("file loaded", "file", name, "rows", table.Stats.Rows, "valid_rows", table.Stats.ValidRows)

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		return writeJSON(out, opts.pretty, newReport(table))
	}
	return writeText(out, table)
}

func newReport(table *poles.PoleTable) Report {
	r := Report{
		Source:  table.Source,
		Stats:   table.Stats,
		Skipped: []core.RowView{},
	}
	if c, ok := overlay.Center(table); ok {
		r.Center = &c
	}
	for i, rec := range table.Records {
		if !rec.Valid() {
			r.Skipped = append(r.Skipped, core.NewRowView(i, rec))
		}
	}
	return r
}

func writeText(w io.Writer, table *poles.PoleTable) error {
	st := table.Stats
	fmt.Fprintf(w, "%s: %d rows, %d on the map, %d skipped", table.Source, st.Rows, st.ValidRows, st.SkippedRows)
	if st.UnparsableCells > 0 {
		fmt.Fprintf(w, ", %d unreadable coordinates", st.UnparsableCells)
	}
	fmt.Fprintln(w)

	if c, ok := overlay.Center(table); ok {
		fmt.Fprintf(w, "center: %s, %s\n", poles.FormatCoordinate(c.Lat), poles.FormatCoordinate(c.Lon))
	}
	for i, rec := range table.Records {
		if reason := skipReason(rec); reason != "" {
			fmt.Fprintf(w, "row %d: %s\n", i, reason)
		}
	}
	return nil
}

func skipReason(rec poles.PoleRecord) string {
	switch {
	case rec.Valid():
		return ""
	case !rec.Number.Valid:
		return "missing Numero"
	case !rec.Latitude.Valid:
		return "missing Latitud"
	default:
		return "missing Longitud"
	}
}

func writeJSON(w io.Writer, pretty bool, v any) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
