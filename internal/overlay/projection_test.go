package overlay

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/JonMunkholm/PoleMap/internal/poles"
)

func TestToMercator(t *testing.T) {
	const halfWorld = 20037508.342789244

	tests := []struct {
		name  string
		in    LatLon
		wantX float64
		wantY float64
	}{
		{"origin", LatLon{0, 0}, 0, 0},
		{"antimeridian", LatLon{0, 180}, halfWorld, 0},
		{"west", LatLon{0, -90}, -halfWorld / 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToMercator(tt.in)
			if math.Abs(got.X-tt.wantX) > 1 || math.Abs(got.Y-tt.wantY) > 1 {
				t.Errorf("ToMercator(%+v) = %+v, want (%v, %v)", tt.in, got, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestToMercator_PolesAreFinite(t *testing.T) {
	for _, l := range []float64{90, -90, 120} {
		got := ToMercator(LatLon{Lat: l, Lon: 0})
		if math.IsInf(got.Y, 0) || math.IsNaN(got.Y) {
			t.Errorf("ToMercator(lat=%v).Y = %v, want finite", l, got.Y)
		}
	}
}

func TestFeatures(t *testing.T) {
	table := poles.NewTable("t", []poles.PoleRecord{
		poles.NewRecord("1", 10, 20),
		{},
		poles.NewRecord("3", 11, 21),
	})

	fc := Features(PlaceMarkers(table, DefaultIconConfig(), DefaultLabelConfig()))
	if len(fc) != 2 {
		t.Fatalf("len(Features()) = %d, want 2", len(fc))
	}
	if fc[1].Properties["label"] != "3" {
		t.Errorf("feature 1 label = %v, want 3", fc[1].Properties["label"])
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if !strings.Contains(string(raw), `"coordinates":[20,10]`) {
		t.Errorf("GeoJSON should carry lon,lat order: %s", raw)
	}
}

func TestAnchorPoint(t *testing.T) {
	tests := []struct {
		name    string
		in      LatLon
		wantErr bool
	}{
		{"valid", LatLon{Lat: 19.43261234, Lon: -99.13321234}, false},
		{"zero", LatLon{}, false},
		{"nan latitude", LatLon{Lat: math.NaN(), Lon: 1}, true},
		{"infinite longitude", LatLon{Lat: 1, Lon: math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt, err := AnchorPoint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AnchorPoint(%+v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			xy, ok := pt.XY()
			if !ok {
				t.Fatal("AnchorPoint() returned an empty point")
			}
			if xy.X != tt.in.Lon || xy.Y != tt.in.Lat {
				t.Errorf("AnchorPoint() = (%v, %v), want (%v, %v)", xy.X, xy.Y, tt.in.Lon, tt.in.Lat)
			}
		})
	}
}

func TestFeatures_SkipsInvalidAnchors(t *testing.T) {
	directives := PlaceMarkers(poles.NewTable("t", []poles.PoleRecord{
		poles.NewRecord("1", 10, 20),
		poles.NewRecord("2", 11, 21),
	}), DefaultIconConfig(), DefaultLabelConfig())

	// Directives are plain values; corrupt the second label's anchor.
	directives[3].Anchor = LatLon{Lat: math.NaN(), Lon: 21}

	fc := Features(directives)
	if len(fc) != 1 {
		t.Fatalf("len(Features()) = %d, want 1", len(fc))
	}
	if fc[0].Properties["label"] != "1" {
		t.Errorf("feature label = %v, want 1", fc[0].Properties["label"])
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	for _, want := range []string{`"type":"FeatureCollection"`, `"type":"Point"`, `"coordinates":[20,10]`, `"label":"1"`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("GeoJSON missing %s: %s", want, raw)
		}
	}
}
