package session

import (
	"context"
	"errors"
	"learnfront/apiclient"
	"learnfront/apperrors"
	"learnfront/models"
	"learnfront/notify"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	rows map[string]models.Session
}

func newMemStore() *memStore { return &memStore{rows: make(map[string]models.Session)} }

func (s *memStore) Save(row *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.ID] = *row
	return nil
}

func (s *memStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *memStore) LoadActive(now time.Time) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, r := range s.rows {
		if r.ExpiresAt.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) PruneExpired(now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.rows {
		if !r.ExpiresAt.After(now) {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[id]
	return ok
}

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/courses/1/modules/":
			_, _ = w.Write([]byte(`[{"id":11,"title":"Intro","order":0,"completed_content_count":0,"total_content_count":2}]`))
		case "/courses/2/modules/":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newManager(t *testing.T, store Store) *Manager {
	t.Helper()
	client := apiclient.New(apiclient.Options{BaseURL: backend(t).URL})
	m := NewManager(client, store, ManagerOptions{
		TTL: time.Hour,
		Workspace: WorkspaceOptions{
			PollInterval:    time.Hour,
			NotificationTTL: time.Minute,
			IdleTimeout:     time.Minute,
		},
	})
	t.Cleanup(m.Close)
	return m
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func TestLoginPersistsAndDefaultsRole(t *testing.T) {
	store := newMemStore()
	m := newManager(t, store)

	s, err := m.Login(" opaque-token ", Profile{UserID: 4, Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", s.Token)
	assert.Equal(t, RoleStudent, s.Profile.Role)
	assert.False(t, s.IsTutor())
	assert.True(t, store.has(s.ID))
	assert.Equal(t, "opaque-token", s.Workspace().Client.Token())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestLoginRejects(t *testing.T) {
	m := newManager(t, newMemStore())

	_, err := m.Login("", Profile{})
	assert.True(t, errors.Is(err, apperrors.ErrAuth))

	_, err = m.Login(expiredJWT(t), Profile{})
	assert.True(t, errors.Is(err, apperrors.ErrAuth))

	_, err = m.Login("tok", Profile{Role: "admin"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, 0, m.Count())
}

func TestLogoutClosesWorkspace(t *testing.T) {
	store := newMemStore()
	m := newManager(t, store)
	s, err := m.Login("tok", Profile{Role: "tutor"})
	require.NoError(t, err)
	_, err = s.Workspace().OpenView(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, m.Logout(s.ID))
	assert.False(t, store.has(s.ID))
	assert.Empty(t, s.Workspace().OpenViews())
	assert.Equal(t, "", s.Workspace().Notices.Push(notify.LevelInfo, "late"))

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, m.Logout(s.ID), ErrNoSession)
}

func TestExpiredSessionIsGone(t *testing.T) {
	store := newMemStore()
	m := newManager(t, store)
	s, err := m.Login("tok", Profile{})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.False(t, store.has(s.ID))
}

func TestRehydrate(t *testing.T) {
	store := newMemStore()
	now := time.Now().UTC()
	_ = store.Save(&models.Session{ID: "live", Token: "tok", Role: "tutor", ExpiresAt: now.Add(time.Hour)})
	_ = store.Save(&models.Session{ID: "old", Token: "tok", ExpiresAt: now.Add(-time.Hour)})
	_ = store.Save(&models.Session{ID: "jwt", Token: expiredJWT(t), ExpiresAt: now.Add(time.Hour)})

	m := newManager(t, store)
	n, err := m.Rehydrate()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := m.Get("live")
	require.NoError(t, err)
	assert.True(t, s.IsTutor())
	assert.NotNil(t, s.Workspace())
	assert.False(t, store.has("jwt"))
}

func TestPrune(t *testing.T) {
	store := newMemStore()
	m := newManager(t, store)
	a, err := m.Login("tok", Profile{})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	n, err := m.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, m.Count())
	assert.False(t, store.has(a.ID))
}

func TestWorkspaceViews(t *testing.T) {
	m := newManager(t, newMemStore())
	s, err := m.Login("tok", Profile{})
	require.NoError(t, err)
	ws := s.Workspace()

	view, err := ws.OpenView(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, view.Snapshot().Modules, 1)
	assert.True(t, view.Snapshot().Polling)

	again, err := ws.OpenView(context.Background(), 1)
	require.NoError(t, err)
	assert.Same(t, view, again)
	assert.Same(t, view, ws.FindModuleView(11))
	assert.Nil(t, ws.FindModuleView(99))

	failed, err := ws.OpenView(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFoundOrPermission))
	assert.NotNil(t, failed, "the view stays open in its error state")

	assert.True(t, ws.CloseView(2))
	assert.False(t, ws.CloseView(2))

	ws.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.Equal(t, 1, ws.CloseIdle())
	assert.Empty(t, ws.OpenViews())
	assert.False(t, view.Snapshot().Polling)
}

func TestReportAddsRedirectForAuth(t *testing.T) {
	m := newManager(t, newMemStore())
	s, err := m.Login("tok", Profile{})
	require.NoError(t, err)
	ws := s.Workspace()

	ws.Report(apperrors.Auth("dashboard", ""))
	ws.Report(apperrors.Transient("dashboard", errors.New("timeout")))
	ws.Report(nil)

	list := ws.Notices.List()
	require.Len(t, list, 2)
	redirects := map[string]bool{}
	for _, n := range list {
		redirects[n.Redirect] = true
	}
	assert.True(t, redirects["/login"])
	assert.True(t, redirects[""])
}
