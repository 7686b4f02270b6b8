package templates

import (
	"github.com/JonMunkholm/PoleMap/internal/core"
	"github.com/JonMunkholm/PoleMap/internal/overlay"
	"github.com/JonMunkholm/PoleMap/internal/poles"
)

// MapPageParams is everything the map page shows.
type MapPageParams struct {
	Render     *core.RenderResult
	Selected   core.RowView
	Tiles      []string
	Alert      *core.UserMessage
	AlertLevel string
}

// mapData is the JSON the page script reads.
type mapData struct {
	View       overlay.MapView     `json:"view"`
	Directives []overlay.Directive `json:"directives"`
}

func newMapData(res *core.RenderResult) mapData {
	return mapData{View: res.View, Directives: res.Directives}
}

// coordValue formats a coordinate for the edit form; missing is blank.
func coordValue(v *float64) string {
	if v == nil {
		return ""
	}
	return poles.FormatCoordinate(*v)
}
