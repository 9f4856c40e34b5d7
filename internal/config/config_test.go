package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SCHEDULE_SLOTS", "")
	t.Setenv("SCHEDULE_COURTS", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultSlots, cfg.Schedule.Slots)
	assert.Len(t, cfg.Schedule.Slots, 12)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.Schedule.Courts)
	assert.Equal(t, 255, cfg.Schedule.LabelMaxLength)
	assert.Equal(t, "America/Lima", cfg.Schedule.Timezone)
	assert.Equal(t, 3*time.Second, cfg.Schedule.StorageTimeout)
	assert.Empty(t, cfg.Admin.PasswordHash)
	assert.Contains(t, cfg.Database.URL, "postgres://")
}

func TestLoadScheduleFromEnv(t *testing.T) {
	t.Setenv("SCHEDULE_SLOTS", " 08:00-09:00, 09:00-10:00 ,,10:00-11:00")
	t.Setenv("SCHEDULE_COURTS", "A,B,C,D")
	t.Setenv("SCHEDULE_STORAGE_TIMEOUT", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"08:00-09:00", "09:00-10:00", "10:00-11:00"}, cfg.Schedule.Slots)
	assert.Equal(t, []string{"A", "B", "C", "D"}, cfg.Schedule.Courts)
	assert.Equal(t, 2*time.Second, cfg.Schedule.StorageTimeout)
}

func TestLoadRejectsDuplicateSlots(t *testing.T) {
	t.Setenv("SCHEDULE_SLOTS", "08:00-09:00,08:00-09:00")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate slot")
}

func TestLoadHashesPlainAdminPassword(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD_HASH", "")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Admin.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cfg.Admin.PasswordHash), []byte("s3cret")))
}
