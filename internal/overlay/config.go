package overlay

import (
	"errors"
	"fmt"
	"strings"
)

// Rendering defaults and ranges shared by every render pass.
const (
	DefaultIconURL = "https://cdn-icons-png.flaticon.com/512/89/89069.png"

	MinIconSize     = 5
	MaxIconSize     = 50
	DefaultIconSize = 20

	MinFontSize     = 1
	MaxFontSize     = 24
	DefaultFontSize = 10
)

// ErrInvalidConfig is matched by every *RangeError.
var ErrInvalidConfig = errors.New("invalid render configuration")

// IconConfig describes the icon drawn at every pole. One value is shared by
// all markers of a pass.
type IconConfig struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// LabelConfig describes the identifier label drawn above every icon.
type LabelConfig struct {
	FontSizePt int `json:"font_size_pt"`
}

// DefaultIconConfig returns the icon used before the user picks one.
func DefaultIconConfig() IconConfig {
	return IconConfig{URL: DefaultIconURL, Width: DefaultIconSize, Height: DefaultIconSize}
}

// DefaultLabelConfig returns the label settings used before the user picks one.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{FontSizePt: DefaultFontSize}
}

// RangeError reports a setting outside its allowed range.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d, got %d", e.Field, e.Min, e.Max, e.Value)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &RangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// Validate checks the icon against the allowed ranges. All failures are
// reported together.
func (c IconConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.URL) == "" {
		errs = append(errs, fmt.Errorf("%w: icon url is required", ErrInvalidConfig))
	}
	if err := checkRange("icon width", c.Width, MinIconSize, MaxIconSize); err != nil {
		errs = append(errs, err)
	}
	if err := checkRange("icon height", c.Height, MinIconSize, MaxIconSize); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate checks the label font size.
func (c LabelConfig) Validate() error {
	return checkRange("font size", c.FontSizePt, MinFontSize, MaxFontSize)
}
