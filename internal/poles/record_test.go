package poles

import (
	"errors"
	"testing"
)

func sampleTable() *PoleTable {
	return NewTable("postes.xlsx", []PoleRecord{
		NewRecord("1", 10, 20),
		{Number: ToText("2")}, // no coordinates
		NewRecord("3", 11, 21),
	})
}

func TestPoleRecord_Valid(t *testing.T) {
	tests := []struct {
		name string
		rec  PoleRecord
		want bool
	}{
		{"complete", NewRecord("7", 1, 2), true},
		{"zero values present", NewRecord("0", 0, 0), true},
		{"missing number", PoleRecord{Latitude: NewRecord("", 1, 2).Latitude, Longitude: NewRecord("", 1, 2).Longitude}, false},
		{"missing latitude", PoleRecord{Number: ToText("7"), Longitude: NewRecord("", 1, 2).Longitude}, false},
		{"missing longitude", PoleRecord{Number: ToText("7"), Latitude: NewRecord("", 1, 2).Latitude}, false},
		{"all missing", PoleRecord{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTable_Stats(t *testing.T) {
	table := sampleTable()

	want := LoadStats{Rows: 3, ValidRows: 2, SkippedRows: 1}
	if table.Stats != want {
		t.Errorf("Stats = %+v, want %+v", table.Stats, want)
	}
}

func TestEditCoordinates(t *testing.T) {
	table := sampleTable()

	if err := table.EditCoordinates(0, 10.5, 20.5); err != nil {
		t.Fatalf("EditCoordinates() error = %v", err)
	}

	got := table.Records[0]
	if got.Latitude.Float64 != 10.5 || got.Longitude.Float64 != 20.5 {
		t.Errorf("record 0 = (%v, %v), want (10.5, 20.5)", got.Latitude.Float64, got.Longitude.Float64)
	}
	if got.Label() != "1" {
		t.Errorf("identifier changed to %q", got.Label())
	}

	// Other records untouched.
	if r := table.Records[2]; r.Latitude.Float64 != 11 || r.Longitude.Float64 != 21 {
		t.Errorf("record 2 changed: %+v", r)
	}
}

func TestEditCoordinates_MakesRowValid(t *testing.T) {
	table := sampleTable()

	if err := table.EditCoordinates(1, 0, 0); err != nil {
		t.Fatalf("EditCoordinates() error = %v", err)
	}
	if !table.Records[1].Valid() {
		t.Error("record 1 should be valid after edit")
	}
	want := LoadStats{Rows: 3, ValidRows: 3, SkippedRows: 0}
	if table.Stats != want {
		t.Errorf("Stats = %+v, want %+v", table.Stats, want)
	}
}

func TestEditCoordinates_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		index int
	}{
		{"negative", -1},
		{"equal to length", 3},
		{"far past end", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := sampleTable()
			before := table.Clone()

			err := table.EditCoordinates(tt.index, 1, 1)

			var idxErr *IndexError
			if !errors.As(err, &idxErr) {
				t.Fatalf("error = %v, want *IndexError", err)
			}
			if idxErr.Index != tt.index || idxErr.Len != 3 {
				t.Errorf("IndexError = %+v, want Index=%d Len=3", idxErr, tt.index)
			}
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Error("errors.Is(err, ErrIndexOutOfRange) = false")
			}
			for i := range before.Records {
				if table.Records[i] != before.Records[i] {
					t.Errorf("record %d changed on failed edit", i)
				}
			}
		})
	}
}

func TestEditCoordinates_EmptyTable(t *testing.T) {
	table := NewTable("vacio.csv", nil)

	if err := table.EditCoordinates(0, 1, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("EditCoordinates() on empty table error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestClone_IsDeep(t *testing.T) {
	table := sampleTable()
	clone := table.Clone()

	if err := clone.EditCoordinates(0, 50, 50); err != nil {
		t.Fatal(err)
	}
	if table.Records[0].Latitude.Float64 != 10 {
		t.Error("editing clone changed original")
	}
}

func TestAt(t *testing.T) {
	table := sampleTable()

	rec, err := table.At(2)
	if err != nil || rec.Label() != "3" {
		t.Errorf("At(2) = %+v, %v; want label 3", rec, err)
	}
	if _, err := table.At(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("At(3) error = %v, want ErrIndexOutOfRange", err)
	}

	var nilTable *PoleTable
	if nilTable.Len() != 0 || !nilTable.Empty() {
		t.Error("nil table should be empty")
	}
}

func TestFormatCoordinate(t *testing.T) {
	if got := FormatCoordinate(19.4326); got != "19.43260000" {
		t.Errorf("FormatCoordinate() = %q, want %q", got, "19.43260000")
	}
}
