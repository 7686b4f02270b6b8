package overlay

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/PoleMap/internal/poles"
)

// Map view constants.
const (
	DefaultZoom  = 15
	MaxZoom      = 50
	DefaultTiles = "CartoDB Positron"
)

// ViewMode selects the canvas size of the map. It never affects placement.
type ViewMode string

const (
	ViewNormal ViewMode = "normal"
	ViewWide   ViewMode = "wide"
)

// ParseViewMode accepts "normal" or "wide" in any case. Empty means normal.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewNormal:
		return ViewNormal, nil
	case ViewWide:
		return ViewWide, nil
	default:
		return "", fmt.Errorf("%w: unknown view mode %q", ErrInvalidConfig, s)
	}
}

// Canvas returns the CSS width and height of the map for the mode.
func (m ViewMode) Canvas() (width, height string) {
	if m == ViewWide {
		return "100%", "100%"
	}
	return "50%", "600px"
}

// MapView is the initial camera and canvas of a rendered map.
type MapView struct {
	Center  *LatLon   `json:"center"` // nil when the table has no coordinates
	Zoom    int       `json:"zoom"`
	MaxZoom int       `json:"max_zoom"`
	Tiles   string    `json:"tiles"`
	Layer   TileLayer `json:"layer"`
	Mode    ViewMode  `json:"mode"`
	Width   string    `json:"width"`
	Height  string    `json:"height"`
}

// NewView builds the view for the current state of table.
func NewView(table *poles.PoleTable, mode ViewMode, tiles string) MapView {
	if tiles == "" {
		tiles = DefaultTiles
	}
	if mode == "" {
		mode = ViewNormal
	}
	w, h := mode.Canvas()
	layer, err := LookupTiles(tiles)
	if err != nil {
		layer = tileLayers[DefaultTiles]
	}

	v := MapView{
		Zoom:    DefaultZoom,
		MaxZoom: MaxZoom,
		Tiles:   layer.Name,
		Layer:   layer,
		Mode:    mode,
		Width:   w,
		Height:  h,
	}
	if c, ok := Center(table); ok {
		v.Center = &c
	}
	return v
}

// Center returns the mean of all present latitudes and, separately, of all
// present longitudes. A record missing one coordinate still contributes the
// other. ok is false when either mean has no values.
func Center(table *poles.PoleTable) (LatLon, bool) {
	var (
		latSum, lonSum float64
		latN, lonN     int
	)
	if table != nil {
		for _, r := range table.Records {
			if r.Latitude.Valid {
				latSum += r.Latitude.Float64
				latN++
			}
			if r.Longitude.Valid {
				lonSum += r.Longitude.Float64
				lonN++
			}
		}
	}
	if latN == 0 || lonN == 0 {
		return LatLon{}, false
	}
	return LatLon{Lat: latSum / float64(latN), Lon: lonSum / float64(lonN)}, true
}
