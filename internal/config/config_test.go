package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BIRTHDAY_AUTH_SECRET", "changeme")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "googleai/gemini-2.5-flash", cfg.AI.Model)
	assert.Equal(t, 20, cfg.AI.RatePerMinute)
	assert.Equal(t, 5, cfg.AI.Burst)
	assert.Equal(t, "changeme", cfg.Auth.Secret)
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("BIRTHDAY_AUTH_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "BIRTHDAY_AUTH_SECRET")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BIRTHDAY_AUTH_SECRET", "changeme")
	t.Setenv("BIRTHDAY_PORT", "9090")
	t.Setenv("BIRTHDAY_LOG_LEVEL", "debug")
	t.Setenv("BIRTHDAY_ASSISTANT_MODEL", "googleai/gemini-2.5-pro")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "googleai/gemini-2.5-pro", cfg.AI.Model)
}

func TestDSN(t *testing.T) {
	db := DB{User: "dirk", Password: "bullo92", Host: "localhost:3306", Name: "birthdays"}
	assert.Equal(t, "dirk:bullo92@tcp(localhost:3306)/birthdays?parseTime=true", db.DSN())
}

func TestLocationDefaultsToUTC(t *testing.T) {
	loc, err := AI{}.Location()
	assert.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLocationResolvesZone(t *testing.T) {
	loc, err := AI{Timezone: "Europe/Berlin"}.Location()
	assert.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLocationInvalidZone(t *testing.T) {
	_, err := AI{Timezone: "Moon/Crater"}.Location()
	assert.Error(t, err)
}
