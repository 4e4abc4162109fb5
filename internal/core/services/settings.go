package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/pacer/internal/core/domain"
	"github.com/custodia-labs/pacer/internal/core/ports/driven"
	"github.com/custodia-labs/pacer/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyTitleThreshold    = "suggestion.title_threshold"
	KeyContentThreshold  = "suggestion.content_threshold"
	KeyRateLimit         = "mcp.rate_limit"
	KeyBurst             = "mcp.burst"
	KeyDataDir           = "storage.data_dir"
	KeyWatchOwner        = "watch.owner"
	KeyIntegrityInterval = "integrity.interval"
)

type settingKind int

const (
	kindFloat settingKind = iota
	kindInt
	kindString
	kindDuration
)

// settingKinds lists every key Set accepts.
var settingKinds = map[string]settingKind{
	KeyTitleThreshold:    kindFloat,
	KeyContentThreshold:  kindFloat,
	KeyRateLimit:         kindFloat,
	KeyBurst:             kindInt,
	KeyDataDir:           kindString,
	KeyWatchOwner:        kindString,
	KeyIntegrityInterval: kindDuration,
}

// SettingKeys returns the configurable keys in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings, falling back to defaults per key.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", s.configStore.Path(), err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", s.configStore.Path(), err)
	}
	return &settings, nil
}

// load overlays configured values on the defaults without validating, so a
// bad value can still be corrected through Set. A stored interval that does
// not parse is reported but leaves the default in place.
func (s *SettingsService) load() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	if _, ok := s.configStore.Get(KeyTitleThreshold); ok {
		settings.Suggestion.TitleThreshold = s.configStore.GetFloat(KeyTitleThreshold)
	}
	if _, ok := s.configStore.Get(KeyContentThreshold); ok {
		settings.Suggestion.ContentThreshold = s.configStore.GetFloat(KeyContentThreshold)
	}
	if _, ok := s.configStore.Get(KeyRateLimit); ok {
		settings.MCP.RateLimit = s.configStore.GetFloat(KeyRateLimit)
	}
	if _, ok := s.configStore.Get(KeyBurst); ok {
		settings.MCP.Burst = s.configStore.GetInt(KeyBurst)
	}
	settings.Storage.DataDir = s.configStore.GetString(KeyDataDir)
	settings.Watch.Owner = s.configStore.GetString(KeyWatchOwner)

	if v := s.configStore.GetString(KeyIntegrityInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return settings, fmt.Errorf("%w: %s expects a duration: %w", domain.ErrValidation, KeyIntegrityInterval, err)
		}
		settings.Integrity.Interval = d
	}
	return settings, nil
}

// Set parses value for key, validates the resulting settings and persists.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrValidation, key)
	}

	var parsed any
	switch kind {
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number: %w", domain.ErrValidation, key, err)
		}
		parsed = f
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer: %w", domain.ErrValidation, key, err)
		}
		parsed = n
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects a duration such as 30m: %w", domain.ErrValidation, key, err)
		}
		parsed = d
	default:
		parsed = value
	}

	next, _ := s.load()
	switch key {
	case KeyTitleThreshold:
		next.Suggestion.TitleThreshold = parsed.(float64)
	case KeyContentThreshold:
		next.Suggestion.ContentThreshold = parsed.(float64)
	case KeyRateLimit:
		next.MCP.RateLimit = parsed.(float64)
	case KeyBurst:
		next.MCP.Burst = parsed.(int)
	case KeyDataDir:
		next.Storage.DataDir = parsed.(string)
	case KeyWatchOwner:
		next.Watch.Owner = parsed.(string)
	case KeyIntegrityInterval:
		next.Integrity.Interval = parsed.(time.Duration)
		parsed = next.Integrity.Interval.String()
	}
	if err := next.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}
