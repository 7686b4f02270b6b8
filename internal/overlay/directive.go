package overlay

// Label geometry. The box is fixed regardless of font size.
const (
	LabelBoxWidth  = 150
	LabelBoxHeight = 36
	LabelOffsetY   = -10
)

// Kind names the directive variant.
type Kind string

const (
	KindIcon  Kind = "icon"
	KindLabel Kind = "label"
)

// LatLon is a WGS84 position in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// XY is a Web-Mercator (EPSG:3857) position in metres.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point is an integer pixel pair used for offsets and sizes.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// IconMarker draws the configured icon at the anchor.
type IconMarker struct {
	IconConfig
}

// LabelMarker draws the pole identifier at the anchor.
type LabelMarker struct {
	Text         string `json:"text"`
	AnchorOffset Point  `json:"anchor_offset"`
	Box          Point  `json:"box"`
	FontSizePt   int    `json:"font_size_pt"`
	Bold         bool   `json:"bold"`
	HTML         string `json:"html"`
}

// Directive is one overlay element handed to the map display. Exactly one of
// Icon or Label is set, matching Kind.
type Directive struct {
	Kind     Kind         `json:"kind"`
	Row      int          `json:"row"`
	Anchor   LatLon       `json:"anchor"`
	Mercator XY           `json:"mercator"`
	Icon     *IconMarker  `json:"icon,omitempty"`
	Label    *LabelMarker `json:"label,omitempty"`
}
