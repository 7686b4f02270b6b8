package poles

// convert.go turns raw spreadsheet cells into record fields.
//
// Cells arrive as the text a spreadsheet shows: "19.4326", "-99.1332", "12".
// Empty cells are missing values. Coordinate cells that cannot be read as a
// finite number are also treated as missing so the row is skipped at
// placement instead of failing the whole file.

import (
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="...") and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ToText converts a cell to an identifier. Only an empty cell is missing;
// anything else is kept as written, minus surrounding whitespace.
func ToText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: strings.TrimSpace(s), Valid: true}
}

// ToFloat8 converts a cell to a coordinate.
// The second result is false when the cell held text that is not a number;
// an empty cell is simply missing and reports true.
func ToFloat8(s string) (pgtype.Float8, bool) {
	s = CleanCell(s)
	if s == "" {
		return pgtype.Float8{}, true
	}

	// A lone comma is a decimal separator ("19,4326"), never a thousands one.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Float8{}, false
	}
	return pgtype.Float8{Float64: f, Valid: true}, true
}

// cellAt returns row[pos] or "" when the row is shorter than the header.
func cellAt(row []string, pos int) string {
	if pos < 0 || pos >= len(row) {
		return ""
	}
	return row[pos]
}
