package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDomainConfig(t *testing.T) {
	prod := LoadDomainConfig("production")
	assert.Equal(t, 30, prod.MaxActivitiesPerDay)
	assert.Equal(t, 10, prod.MaxPhotosPerDay)
	assert.Equal(t, 366, prod.MaxTripDays)

	dev := LoadDomainConfig("development")
	assert.Equal(t, 3660, dev.MaxTripDays)
	assert.Equal(t, 15*time.Minute, dev.UploadURLExpiry)

	assert.Equal(t, DefaultDomainConfig(), LoadDomainConfig("staging"))

	for _, env := range []string{"production", "development", "staging"} {
		assert.NoError(t, LoadDomainConfig(env).Validate(), env)
	}
}

func TestDomainConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DomainConfig)
	}{
		{name: "zero trip days", mutate: func(c *DomainConfig) { c.MaxTripDays = 0 }},
		{name: "zero activities", mutate: func(c *DomainConfig) { c.MaxActivitiesPerDay = 0 }},
		{name: "zero destination length", mutate: func(c *DomainConfig) { c.MaxDestinationLength = 0 }},
		{name: "expiry over a week", mutate: func(c *DomainConfig) { c.UploadURLExpiry = 8 * 24 * time.Hour }},
		{name: "no image types", mutate: func(c *DomainConfig) { c.AllowedImageTypes = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDomainConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDomainConfig_IsAllowedImageType(t *testing.T) {
	cfg := DefaultDomainConfig()
	assert.True(t, cfg.IsAllowedImageType("image/heic"))
	assert.False(t, cfg.IsAllowedImageType("application/pdf"))
}
