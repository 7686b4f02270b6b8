package core

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/PoleMap/internal/overlay"
)

// Settings is everything the user can change about how a session's map is
// drawn. Every render uses the full value; nothing falls back to a partial
// set.
type Settings struct {
	Icon  overlay.IconConfig  `json:"icon"`
	Label overlay.LabelConfig `json:"label"`
	Mode  overlay.ViewMode    `json:"mode"`
	Tiles string              `json:"tiles"`
}

// DefaultSettings returns the settings a new session starts with.
func DefaultSettings() Settings {
	return Settings{
		Icon:  overlay.DefaultIconConfig(),
		Label: overlay.DefaultLabelConfig(),
		Mode:  overlay.ViewNormal,
		Tiles: overlay.DefaultTiles,
	}
}

// Validate reports every out-of-range field at once. The returned error
// matches ErrInvalidSettings.
func (s Settings) Validate() error {
	var errs []error
	if err := s.Icon.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Label.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := overlay.ParseViewMode(string(s.Mode)); err != nil {
		errs = append(errs, err)
	}
	if _, err := overlay.LookupTiles(s.Tiles); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
}

// normalized fills empty optional fields from the defaults.
func (s Settings) normalized() Settings {
	def := DefaultSettings()
	if m, err := overlay.ParseViewMode(string(s.Mode)); err == nil {
		s.Mode = m
	}
	if s.Tiles == "" {
		s.Tiles = def.Tiles
	}
	if s.Icon.URL == "" {
		s.Icon.URL = def.Icon.URL
	}
	return s
}
