package poles

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// HeaderIndex maps folded column names to their position in a row.
type HeaderIndex map[string]int

// foldHeader normalises a header cell for matching: cell artifacts removed,
// accents stripped, case folded. "Número", "NUMERO" and " numero " all fold to
// "numero".
func foldHeader(s string) string {
	s = CleanCell(s)
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = stripped
	}
	// Casers carry state, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(s))
}

// MakeHeaderIndex builds a HeaderIndex from a header row. When two cells fold
// to the same name the first one wins, like a spreadsheet reader would.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := foldHeader(h)
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// Lookup returns the position of a column by its canonical name.
func (h HeaderIndex) Lookup(column string) (int, bool) {
	pos, ok := h[foldHeader(column)]
	return pos, ok
}

// ValidateHeaders checks that all required columns exist in a header row.
func ValidateHeaders(header []string) (HeaderIndex, error) {
	idx := MakeHeaderIndex(header)

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx.Lookup(col); !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, missingColumnsError(missing)
	}
	return idx, nil
}
