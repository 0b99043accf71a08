package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nikbrunner/bmgrid/internal/model"
	"github.com/nikbrunner/bmgrid/internal/tree"
)

// DefaultManageURL is opened by the "manage" context action.
const DefaultManageURL = "chrome://bookmarks/"

// Settings holds application configuration.
type Settings struct {
	SortKey       model.SortKey       `json:"sortKey"`
	SortDirection model.SortDirection `json:"sortDirection"`
	Columns       int                 `json:"columns"`
	BarTitle      string              `json:"barTitle"`
	ManageURL     string              `json:"manageURL"`
}

// DefaultSettings returns the default configuration.
func DefaultSettings() Settings {
	return Settings{
		SortKey:       model.SortNone,
		SortDirection: model.Ascending,
		Columns:       7,
		BarTitle:      tree.DefaultBarTitle,
		ManageURL:     DefaultManageURL,
	}
}

// Validate checks the settings values.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.SortKey, validation.In(model.SortNone, model.SortName, model.SortDate)),
		validation.Field(&s.SortDirection, validation.In(model.Ascending, model.Descending)),
		validation.Field(&s.Columns, validation.Required, validation.Min(1), validation.Max(12)),
		validation.Field(&s.BarTitle, validation.Required),
		validation.Field(&s.ManageURL, validation.Required),
	)
}

// SortState returns the persisted sort state.
func (s Settings) SortState() model.SortState {
	return model.SortState{Key: s.SortKey, Direction: s.SortDirection}
}

// applyDefaults fills in zero-valued fields.
func (s *Settings) applyDefaults() {
	defaults := DefaultSettings()
	if s.SortKey == "" {
		s.SortKey = defaults.SortKey
	}
	if s.SortDirection == "" {
		s.SortDirection = defaults.SortDirection
	}
	if s.Columns == 0 {
		s.Columns = defaults.Columns
	}
	if s.BarTitle == "" {
		s.BarTitle = defaults.BarTitle
	}
	if s.ManageURL == "" {
		s.ManageURL = defaults.ManageURL
	}
}

// LoadSettings reads settings from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			settings := DefaultSettings()
			// Non-fatal: return defaults even if save fails
			_ = SaveSettings(path, &settings)
			return &settings, nil
		}
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	settings.applyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

// SaveSettings writes settings to the JSON file.
// Creates the directory if it doesn't exist.
func SaveSettings(path string, settings *Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultSettingsPath returns the default settings path: ~/.config/bmgrid/settings.json
func DefaultSettingsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmgrid", "settings.json"), nil
}

// SettingsFile is a settings document bound to its path. It persists sort
// changes immediately.
type SettingsFile struct {
	mu       sync.Mutex
	path     string
	settings Settings
}

// OpenSettings loads the settings at path.
func OpenSettings(path string) (*SettingsFile, error) {
	settings, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	return &SettingsFile{path: path, settings: *settings}, nil
}

// Settings returns a copy of the current settings.
func (f *SettingsFile) Settings() Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

// SortState returns the persisted sort state.
func (f *SettingsFile) SortState() model.SortState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings.SortState()
}

// SetSortState updates and saves the sort state.
func (f *SettingsFile) SetSortState(state model.SortState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.settings
	next.SortKey = state.Key
	next.SortDirection = state.Direction
	next.applyDefaults()
	if err := next.Validate(); err != nil {
		return err
	}
	if err := SaveSettings(f.path, &next); err != nil {
		return err
	}
	f.settings = next
	return nil
}
