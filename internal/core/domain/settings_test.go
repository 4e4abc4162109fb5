package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 0.95, s.Suggestion.TitleThreshold)
	assert.Equal(t, 0.90, s.Suggestion.ContentThreshold)
	assert.Equal(t, DefaultRateLimit, s.MCP.RateLimit)
	assert.Equal(t, DefaultBurst, s.MCP.Burst)
	assert.Empty(t, s.Storage.DataDir)
	assert.Equal(t, time.Hour, s.Integrity.Interval)
	assert.NoError(t, s.Validate())
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{name: "title threshold of one", mutate: func(s *Settings) { s.Suggestion.TitleThreshold = 1 }},
		{name: "negative content threshold", mutate: func(s *Settings) { s.Suggestion.ContentThreshold = -0.1 }},
		{name: "zero rate", mutate: func(s *Settings) { s.MCP.RateLimit = 0 }},
		{name: "zero burst", mutate: func(s *Settings) { s.MCP.Burst = 0 }},
		{name: "negative interval", mutate: func(s *Settings) { s.Integrity.Interval = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestSettings_ZeroIntervalDisablesSweep(t *testing.T) {
	s := DefaultSettings()
	s.Integrity.Interval = 0
	assert.NoError(t, s.Validate())
}
