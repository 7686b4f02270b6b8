package overlay

import (
	"reflect"
	"testing"

	"github.com/JonMunkholm/PoleMap/internal/poles"
	"github.com/jackc/pgx/v5/pgtype"
)

func lat(v float64) pgtype.Float8 { return pgtype.Float8{Float64: v, Valid: true} }
func num(s string) pgtype.Text    { return pgtype.Text{String: s, Valid: true} }

// scenarioTable has one valid row, one without identifier and one without
// latitude.
func scenarioTable() *poles.PoleTable {
	return poles.NewTable("postes.xlsx", []poles.PoleRecord{
		poles.NewRecord("1", 10.0, 20.0),
		{Latitude: lat(11.0), Longitude: lat(21.0)},
		{Number: num("3"), Longitude: lat(22.0)},
	})
}

func TestPlaceMarkers_Scenario(t *testing.T) {
	got := PlaceMarkers(scenarioTable(), DefaultIconConfig(), DefaultLabelConfig())

	if len(got) != 2 {
		t.Fatalf("len(PlaceMarkers()) = %d, want 2", len(got))
	}
	for i, d := range got {
		if d.Anchor != (LatLon{Lat: 10.0, Lon: 20.0}) {
			t.Errorf("directive %d anchor = %+v, want (10, 20)", i, d.Anchor)
		}
		if d.Row != 0 {
			t.Errorf("directive %d row = %d, want 0", i, d.Row)
		}
	}
	if got[0].Kind != KindIcon || got[0].Icon == nil {
		t.Errorf("first directive = %+v, want icon", got[0])
	}
	if got[1].Kind != KindLabel || got[1].Label == nil {
		t.Fatalf("second directive = %+v, want label", got[1])
	}
	if got[1].Label.Text != "1" {
		t.Errorf("label text = %q, want %q", got[1].Label.Text, "1")
	}
}

func TestPlaceMarkers_CountIsTwicePerValidRow(t *testing.T) {
	tests := []struct {
		name    string
		records []poles.PoleRecord
		want    int
	}{
		{"empty", nil, 0},
		{"all valid", []poles.PoleRecord{poles.NewRecord("1", 1, 1), poles.NewRecord("2", 2, 2)}, 4},
		{"all invalid", []poles.PoleRecord{{}, {Number: num("1")}, {Latitude: lat(1), Longitude: lat(1)}}, 0},
		{"missing longitude only", []poles.PoleRecord{{Number: num("1"), Latitude: lat(1)}}, 0},
		{"identifier zero", []poles.PoleRecord{poles.NewRecord("0", 0, 0)}, 2},
		{"duplicate coordinates", []poles.PoleRecord{poles.NewRecord("1", 5, 5), poles.NewRecord("2", 5, 5)}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := poles.NewTable("t", tt.records)
			got := PlaceMarkers(table, DefaultIconConfig(), DefaultLabelConfig())
			if len(got) != tt.want {
				t.Errorf("len(PlaceMarkers()) = %d, want %d", len(got), tt.want)
			}
			if len(got) != 2*table.Stats.ValidRows {
				t.Errorf("len(PlaceMarkers()) = %d, want 2*ValidRows = %d", len(got), 2*table.Stats.ValidRows)
			}
		})
	}
}

func TestPlaceMarkers_NilTable(t *testing.T) {
	got := PlaceMarkers(nil, DefaultIconConfig(), DefaultLabelConfig())
	if got == nil || len(got) != 0 {
		t.Errorf("PlaceMarkers(nil) = %v, want empty non-nil slice", got)
	}
}

func TestPlaceMarkers_LabelGeometry(t *testing.T) {
	tests := []struct {
		width   int
		wantOff int
	}{
		{5, 2},
		{20, 10},
		{21, 10},
		{50, 25},
	}

	for _, tt := range tests {
		icon := IconConfig{URL: "https://example.com/pole.png", Width: tt.width, Height: 30}
		label := LabelConfig{FontSizePt: 14}

		got := PlaceMarkers(poles.NewTable("t", []poles.PoleRecord{poles.NewRecord("7", 1, 2)}), icon, label)
		if len(got) != 2 {
			t.Fatalf("width %d: len = %d, want 2", tt.width, len(got))
		}

		if got[0].Icon.IconConfig != icon {
			t.Errorf("width %d: icon = %+v, want %+v", tt.width, got[0].Icon.IconConfig, icon)
		}

		l := got[1].Label
		if l.AnchorOffset != (Point{X: tt.wantOff, Y: -10}) {
			t.Errorf("width %d: anchor offset = %+v, want (%d, -10)", tt.width, l.AnchorOffset, tt.wantOff)
		}
		if l.Box != (Point{X: 150, Y: 36}) {
			t.Errorf("width %d: box = %+v, want 150x36", tt.width, l.Box)
		}
		if l.FontSizePt != 14 || !l.Bold {
			t.Errorf("width %d: font = %d bold=%v, want 14 bold", tt.width, l.FontSizePt, l.Bold)
		}
	}
}

func TestPlaceMarkers_Deterministic(t *testing.T) {
	table := poles.NewTable("t", []poles.PoleRecord{
		poles.NewRecord("3", 3, 3),
		{},
		poles.NewRecord("1", 1, 1),
		poles.NewRecord("2", 2, 2),
	})

	first := PlaceMarkers(table, DefaultIconConfig(), DefaultLabelConfig())
	second := PlaceMarkers(table, DefaultIconConfig(), DefaultLabelConfig())

	if !reflect.DeepEqual(first, second) {
		t.Error("PlaceMarkers() is not deterministic")
	}

	wantRows := []int{0, 0, 2, 2, 3, 3}
	for i, d := range first {
		if d.Row != wantRows[i] {
			t.Errorf("directive %d row = %d, want %d", i, d.Row, wantRows[i])
		}
	}
}

func TestPlaceMarkers_AfterEdit(t *testing.T) {
	table := poles.NewTable("t", []poles.PoleRecord{
		poles.NewRecord("1", 1, 1),
		poles.NewRecord("2", 2, 2),
		poles.NewRecord("3", 3, 3),
	})
	before := PlaceMarkers(table, DefaultIconConfig(), DefaultLabelConfig())

	if err := table.EditCoordinates(1, 9.5, -9.5); err != nil {
		t.Fatalf("EditCoordinates() error = %v", err)
	}
	after := PlaceMarkers(table, DefaultIconConfig(), DefaultLabelConfig())

	if len(after) != len(before) {
		t.Fatalf("len = %d, want %d", len(after), len(before))
	}
	for i := range after {
		if after[i].Row == 1 {
			if after[i].Anchor != (LatLon{Lat: 9.5, Lon: -9.5}) {
				t.Errorf("edited directive %d anchor = %+v, want (9.5, -9.5)", i, after[i].Anchor)
			}
			continue
		}
		if !reflect.DeepEqual(after[i], before[i]) {
			t.Errorf("directive %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestValidRows(t *testing.T) {
	rows := ValidRows(scenarioTable())
	if len(rows) != 1 || rows[0].Index != 0 {
		t.Errorf("ValidRows() = %+v, want only index 0", rows)
	}
}

func TestFloorHalf(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{1, 0},
		{20, 10},
		{21, 10},
		{-1, -1},
		{-3, -2},
		{-4, -2},
	}

	for _, tt := range tests {
		if got := floorHalf(tt.in); got != tt.want {
			t.Errorf("floorHalf(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
