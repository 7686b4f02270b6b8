// Package overlay turns a pole table into the marker directives drawn on the
// map: one icon and one label per valid pole.
//
// Placement is a two-stage pipeline. ValidRows filters the table down to the
// records that can be drawn; pairFor maps each of those to its icon and label
// directives. Neither stage performs I/O, so identical inputs always give an
// identical, order-preserving result.
package overlay

import (
	"github.com/JonMunkholm/PoleMap/internal/poles"
)

// Row is a valid record together with its position in the table.
type Row struct {
	Index  int
	Record poles.PoleRecord
}

// ValidRows returns the valid records of table in index order. Records with a
// missing identifier, latitude or longitude are skipped without error.
func ValidRows(table *poles.PoleTable) []Row {
	if table.Empty() {
		return nil
	}
	rows := make([]Row, 0, table.Len())
	for i, rec := range table.Records {
		if rec.Valid() {
			rows = append(rows, Row{Index: i, Record: rec})
		}
	}
	return rows
}

// PlaceMarkers returns two directives per valid record, icon first, in table
// order. An empty or fully invalid table yields an empty slice.
func PlaceMarkers(table *poles.PoleTable, icon IconConfig, label LabelConfig) []Directive {
	rows := ValidRows(table)
	out := make([]Directive, 0, 2*len(rows))
	for _, row := range rows {
		out = append(out, pairFor(row, icon, label)...)
	}
	return out
}

func pairFor(row Row, icon IconConfig, label LabelConfig) []Directive {
	anchor := LatLon{Lat: row.Record.Latitude.Float64, Lon: row.Record.Longitude.Float64}
	merc := ToMercator(anchor)
	text := row.Record.Label()

	return []Directive{
		{
			Kind:     KindIcon,
			Row:      row.Index,
			Anchor:   anchor,
			Mercator: merc,
			Icon:     &IconMarker{IconConfig: icon},
		},
		{
			Kind:     KindLabel,
			Row:      row.Index,
			Anchor:   anchor,
			Mercator: merc,
			Label: &LabelMarker{
				Text:         text,
				AnchorOffset: Point{X: floorHalf(icon.Width), Y: LabelOffsetY},
				Box:          Point{X: LabelBoxWidth, Y: LabelBoxHeight},
				FontSizePt:   label.FontSizePt,
				Bold:         true,
				HTML:         LabelHTML(text, label.FontSizePt),
			},
		},
	}
}

// floorHalf divides by two rounding toward negative infinity. Odd widths put
// the label one pixel left of the true midpoint.
func floorHalf(w int) int {
	q := w / 2
	if w < 0 && w%2 != 0 {
		q--
	}
	return q
}
