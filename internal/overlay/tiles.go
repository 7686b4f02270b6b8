package overlay

import (
	"fmt"
	"sort"
)

// TileLayer is a raster basemap the browser map can load.
type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	Subdomains  string `json:"subdomains,omitempty"`
}

var tileLayers = map[string]TileLayer{
	"CartoDB Positron": {
		Name:        "CartoDB Positron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; OpenStreetMap contributors &copy; CARTO`,
		Subdomains:  "abcd",
	},
	"CartoDB DarkMatter": {
		Name:        "CartoDB DarkMatter",
		URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; OpenStreetMap contributors &copy; CARTO`,
		Subdomains:  "abcd",
	},
	"OpenStreetMap": {
		Name:        "OpenStreetMap",
		URL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; OpenStreetMap contributors`,
	},
}

// LookupTiles returns the tile layer registered under name.
func LookupTiles(name string) (TileLayer, error) {
	layer, ok := tileLayers[name]
	if !ok {
		return TileLayer{}, fmt.Errorf("%w: unknown tiles %q", ErrInvalidConfig, name)
	}
	return layer, nil
}

// TileNames lists the registered tile layers in alphabetical order.
func TileNames() []string {
	names := make([]string, 0, len(tileLayers))
	for name := range tileLayers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
