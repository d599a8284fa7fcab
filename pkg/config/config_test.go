package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "standard", cfg.Timetable.DefaultCatalog)
	assert.True(t, cfg.Timetable.RequireSlotAlignment)
	assert.Len(t, cfg.Timetable.SchedulableDays, 6)
	assert.Equal(t, 60, cfg.Scheduler.MaxDatesPerBatch)
	assert.Equal(t, 1, cfg.Scheduler.OverlapRetries)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.LockTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Occupancy.CacheTTL)
	assert.False(t, cfg.Occupancy.CacheEnabled)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("TIMETABLE_CATALOGS", "evening=18:00-19:30|19:40-21:10")
	v.Set("SCHEDULER_MAX_DATES", -1)
	v.Set("OCCUPANCY_CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := fromViper(v)

	assert.Equal(t, "evening=18:00-19:30|19:40-21:10", cfg.Timetable.Catalogs)
	assert.Equal(t, 60, cfg.Scheduler.MaxDatesPerBatch)
	assert.Equal(t, 2*time.Minute, cfg.Occupancy.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
