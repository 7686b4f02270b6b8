package overlay

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/PoleMap/internal/poles"
)

func TestCenter(t *testing.T) {
	tests := []struct {
		name    string
		records []poles.PoleRecord
		want    LatLon
		wantOK  bool
	}{
		{"single", []poles.PoleRecord{poles.NewRecord("1", 10, 20)}, LatLon{10, 20}, true},
		{"mean", []poles.PoleRecord{poles.NewRecord("1", 10, 20), poles.NewRecord("2", 20, 40)}, LatLon{15, 30}, true},
		{
			name: "missing values ignored per axis",
			records: []poles.PoleRecord{
				poles.NewRecord("1", 10, 20),
				{Latitude: lat(30)},  // only latitude
				{Longitude: lat(40)}, // only longitude
			},
			want:   LatLon{20, 30},
			wantOK: true,
		},
		{"no coordinates", []poles.PoleRecord{{Number: num("1")}}, LatLon{}, false},
		{"empty", nil, LatLon{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Center(poles.NewTable("t", tt.records))
			if ok != tt.wantOK {
				t.Fatalf("Center() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Center() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewView(t *testing.T) {
	table := poles.NewTable("t", []poles.PoleRecord{poles.NewRecord("1", 10, 20)})

	normal := NewView(table, ViewNormal, "")
	if normal.Zoom != 15 || normal.MaxZoom != 50 {
		t.Errorf("zoom = %d/%d, want 15/50", normal.Zoom, normal.MaxZoom)
	}
	if normal.Tiles != DefaultTiles {
		t.Errorf("Tiles = %q, want %q", normal.Tiles, DefaultTiles)
	}
	if normal.Width != "50%" || normal.Height != "600px" {
		t.Errorf("normal canvas = %s x %s, want 50%% x 600px", normal.Width, normal.Height)
	}
	if normal.Center == nil || *normal.Center != (LatLon{10, 20}) {
		t.Errorf("Center = %v, want (10, 20)", normal.Center)
	}

	wide := NewView(table, ViewWide, "OpenStreetMap")
	if wide.Width != "100%" || wide.Height != "100%" {
		t.Errorf("wide canvas = %s x %s, want 100%% x 100%%", wide.Width, wide.Height)
	}
	if wide.Tiles != "OpenStreetMap" {
		t.Errorf("Tiles = %q, want OpenStreetMap", wide.Tiles)
	}

	if empty := NewView(poles.NewTable("t", nil), ViewNormal, ""); empty.Center != nil {
		t.Errorf("empty table Center = %v, want nil", empty.Center)
	}
}

func TestParseViewMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ViewMode
		wantErr bool
	}{
		{"", ViewNormal, false},
		{"normal", ViewNormal, false},
		{"Wide", ViewWide, false},
		{" WIDE ", ViewWide, false},
		{"fullscreen", "", true},
	}

	for _, tt := range tests {
		got, err := ParseViewMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseViewMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("ParseViewMode(%q) error should match ErrInvalidConfig", tt.input)
		}
		if got != tt.want {
			t.Errorf("ParseViewMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewView_UnknownTilesFallBack(t *testing.T) {
	v := NewView(nil, ViewNormal, "Stamen Watercolor")
	if v.Tiles != DefaultTiles || v.Layer.URL == "" {
		t.Errorf("view tiles = %q (%q), want default layer", v.Tiles, v.Layer.URL)
	}
}

func TestLookupTiles(t *testing.T) {
	for _, name := range TileNames() {
		layer, err := LookupTiles(name)
		if err != nil {
			t.Errorf("LookupTiles(%q) error = %v", name, err)
		}
		if layer.Name != name {
			t.Errorf("LookupTiles(%q).Name = %q", name, layer.Name)
		}
	}

	if _, err := LookupTiles("nope"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LookupTiles(nope) error = %v, want ErrInvalidConfig", err)
	}
}
