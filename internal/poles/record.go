// Package poles holds the pole table: the row-ordered records loaded from an
// uploaded spreadsheet and the single-record coordinate edit.
//
// Records keep every row of the source file, including rows with missing
// values, so that row indices stay stable for the lifetime of a table.
package poles

import (
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
)

// Canonical column names of the input format. They are part of the external
// contract and are matched after case and accent folding (see headers.go).
const (
	ColumnLatitude  = "Latitud"
	ColumnLongitude = "Longitud"
	ColumnNumber    = "Numero"
)

// RequiredColumns lists the columns every input file must carry.
var RequiredColumns = []string{ColumnLatitude, ColumnLongitude, ColumnNumber}

// PoleRecord is one row of the input table.
// Each field is independently present or missing (Valid=false).
type PoleRecord struct {
	Number    pgtype.Text   // Display identifier, kept as text ("0" is present)
	Latitude  pgtype.Float8 // Degrees, WGS84
	Longitude pgtype.Float8 // Degrees, WGS84
}

// Valid reports whether latitude, longitude and identifier are all present.
// Only true absence counts as missing; falsy values such as 0 or "0" are valid.
func (r PoleRecord) Valid() bool {
	return r.Number.Valid && r.Latitude.Valid && r.Longitude.Valid
}

// Label returns the display text of the identifier, or "" when missing.
func (r PoleRecord) Label() string {
	if !r.Number.Valid {
		return ""
	}
	return r.Number.String
}

// NewRecord builds a fully present record. Mostly useful in tests and tools.
func NewRecord(number string, lat, lon float64) PoleRecord {
	return PoleRecord{
		Number:    pgtype.Text{String: number, Valid: true},
		Latitude:  pgtype.Float8{Float64: lat, Valid: true},
		Longitude: pgtype.Float8{Float64: lon, Valid: true},
	}
}

// PoleTable is the ordered, positionally indexed sequence of records for one
// uploaded file. It is owned by a single session and is not safe for
// concurrent mutation.
type PoleTable struct {
	Source  string       // File name the table was loaded from
	Records []PoleRecord // Row order of the source file
	Stats   LoadStats    // Summary gathered while loading
}

// LoadStats summarises what the loader saw.
type LoadStats struct {
	Rows            int `json:"rows"`
	ValidRows       int `json:"valid_rows"`
	SkippedRows     int `json:"skipped_rows"`
	UnparsableCells int `json:"unparsable_cells"`
}

// NewTable creates a table from records, computing its stats.
func NewTable(source string, records []PoleRecord) *PoleTable {
	t := &PoleTable{Source: source, Records: records}
	t.Stats = t.countStats(0)
	return t
}

// Len returns the number of rows, valid or not.
func (t *PoleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Empty reports the empty-table condition: the file parsed but held no rows.
func (t *PoleTable) Empty() bool {
	return t.Len() == 0
}

// At returns the record at index i.
func (t *PoleTable) At(i int) (PoleRecord, error) {
	if i < 0 || i >= t.Len() {
		return PoleRecord{}, &IndexError{Index: i, Len: t.Len()}
	}
	return t.Records[i], nil
}

// EditCoordinates replaces the latitude and longitude of the record at index
// in place. The identifier and every other record are left unchanged.
// An out-of-range index returns *IndexError and leaves the table untouched.
// Callers re-run marker placement to see the edit.
func (t *PoleTable) EditCoordinates(index int, lat, lon float64) error {
	if index < 0 || index >= t.Len() {
		return &IndexError{Index: index, Len: t.Len()}
	}

	rec := &t.Records[index]
	wasValid := rec.Valid()
	rec.Latitude = pgtype.Float8{Float64: lat, Valid: true}
	rec.Longitude = pgtype.Float8{Float64: lon, Valid: true}

	if !wasValid && rec.Valid() {
		t.Stats.ValidRows++
		t.Stats.SkippedRows--
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *PoleTable) Clone() *PoleTable {
	if t == nil {
		return nil
	}
	records := make([]PoleRecord, len(t.Records))
	copy(records, t.Records)
	return &PoleTable{Source: t.Source, Records: records, Stats: t.Stats}
}

func (t *PoleTable) countStats(unparsable int) LoadStats {
	stats := LoadStats{Rows: len(t.Records), UnparsableCells: unparsable}
	for _, r := range t.Records {
		if r.Valid() {
			stats.ValidRows++
		}
	}
	stats.SkippedRows = stats.Rows - stats.ValidRows
	return stats
}

// FormatCoordinate renders a coordinate with the 8-decimal precision used by
// the edit surface.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}
