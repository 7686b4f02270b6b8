package overlay

import (
	"math"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Web Mercator is undefined at the poles; latitudes are clamped to the range
// tile servers draw.
const maxMercatorLat = 85.05112878

var toMercator = wgs84.EPSG().Transform(4326, 3857)

// ToMercator projects a WGS84 position to EPSG:3857.
func ToMercator(p LatLon) XY {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, p.Lat))
	x, y, _ := toMercator(p.Lon, lat, 0)
	return XY{X: x, Y: y}
}

// AnchorPoint returns the anchor as a lon/lat point geometry. Non-finite
// coordinates are rejected by geom.NewPoint.
func AnchorPoint(p LatLon) (geom.Point, error) {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.Lon, Y: p.Lat},
		Type: geom.DimXY,
	})
}

// Features converts directives into a GeoJSON feature collection, one feature
// per pole. Label directives supply the properties of the preceding icon.
// Anchors that do not form a valid point are left out.
func Features(directives []Directive) geom.GeoJSONFeatureCollection {
	fc := geom.GeoJSONFeatureCollection{}
	for _, d := range directives {
		if d.Kind != KindLabel || d.Label == nil {
			continue
		}
		pt, err := AnchorPoint(d.Anchor)
		if err != nil {
			continue
		}
		fc = append(fc, geom.GeoJSONFeature{
			Geometry: pt.AsGeometry(),
			ID:       d.Row,
			Properties: map[string]interface{}{
				"row":          d.Row,
				"label":        d.Label.Text,
				"font_size_pt": d.Label.FontSizePt,
			},
		})
	}
	return fc
}
