package database

import (
	"fmt"
	"learnfront/config"
	"learnfront/models"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testRepo(t *testing.T) *SessionRepo {
	t.Helper()
	cfg := &config.Config{DBDriver: "sqlite", DBName: filepath.Join(t.TempDir(), "sessions.db")}
	db, err := ConnectDb(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewSessionRepo(db)
}

func TestSessionRoundTrip(t *testing.T) {
	repo := testRepo(t)
	now := time.Now().UTC().Truncate(time.Second)

	s := &models.Session{
		ID:        "a",
		Token:     "tok",
		UserID:    7,
		Role:      "tutor",
		Profile:   datatypes.JSON(`{"name":"Ada"}`),
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, repo.Save(s))

	s.Token = "tok2"
	require.NoError(t, repo.Save(s))

	got, err := repo.Find("a")
	require.NoError(t, err)
	assert.Equal(t, "tok2", got.Token)
	assert.Equal(t, "tutor", got.Role)
	assert.JSONEq(t, `{"name":"Ada"}`, string(got.Profile))

	require.NoError(t, repo.Delete("a"))
	_, err = repo.Find("a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLoadActiveAndPrune(t *testing.T) {
	repo := testRepo(t)
	now := time.Now().UTC()

	for i, offset := range []time.Duration{-time.Hour, time.Hour, 2 * time.Hour} {
		require.NoError(t, repo.Save(&models.Session{
			ID:        fmt.Sprintf("s%d", i),
			Token:     "tok",
			ExpiresAt: now.Add(offset),
		}))
	}

	active, err := repo.LoadActive(now)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	removed, err := repo.PruneExpired(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.Find("s0")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := ConnectDb(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
