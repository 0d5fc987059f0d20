// Package session replaces the browser's persisted auth store: each signed-in
// user gets a Session holding the backend token, and a Workspace holding that
// session's view state. Sessions are persisted so a restart does not sign
// everyone out; workspaces are rebuilt lazily.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"learnfront/apiclient"
	"learnfront/apperrors"
	"learnfront/models"
	"learnfront/utils"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
)

var ErrNoSession = errors.New("session not found or expired")

// Store is where sessions are persisted
type Store interface {
	Save(s *models.Session) error
	Delete(id string) error
	LoadActive(now time.Time) ([]models.Session, error)
	PruneExpired(now time.Time) (int64, error)
}

// Profile is who the backend token belongs to
type Profile struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type Session struct {
	ID        string
	Token     string
	Profile   Profile
	CreatedAt time.Time
	ExpiresAt time.Time

	ws *Workspace
}

func (s *Session) Workspace() *Workspace { return s.ws }

func (s *Session) IsTutor() bool { return s.Profile.Role == RoleTutor }

type ManagerOptions struct {
	TTL       time.Duration
	Workspace WorkspaceOptions
	Logger    *utils.Logger
}

type Manager struct {
	client *apiclient.Client
	store  Store
	opts   ManagerOptions
	log    *utils.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	janitor *utils.Poller
}

// NewManager takes the unauthenticated base client; each session derives its
// own from it.
func NewManager(client *apiclient.Client, store Store, opts ManagerOptions) *Manager {
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Workspace.Logger == nil {
		opts.Workspace.Logger = opts.Logger
	}
	return &Manager{
		client:   client,
		store:    store,
		opts:     opts,
		log:      opts.Logger,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]*Session),
	}
}

// Login opens a session for a backend token. An expired JWT is refused
// without contacting the backend.
func (m *Manager) Login(token string, p Profile) (*Session, error) {
	token = strings.TrimSpace(token)
	if err := m.client.WithToken(token).CheckToken("login"); err != nil {
		return nil, err
	}
	p.Role = strings.ToLower(strings.TrimSpace(p.Role))
	if p.Role == "" {
		p.Role = RoleStudent
	}
	if p.Role != RoleStudent && p.Role != RoleTutor {
		return nil, apperrors.Validation("login", map[string]string{"role": "Role must be student or tutor!"})
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		Profile:   p,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}
	if err := m.store.Save(toRow(s)); err != nil {
		return nil, err
	}

	s.ws = m.newWorkspace(token)
	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	utils.SetActiveSessions(n)
	m.log.Info("session opened", "session_id", s.ID, "user_id", p.UserID, "role", p.Role)
	return s, nil
}

// Get returns a live session. An expired one is closed and reported missing.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNoSession
	}
	if !m.now().Before(s.ExpiresAt) {
		_ = m.Logout(id)
		return nil, ErrNoSession
	}
	return s, nil
}

// Logout drops the session and everything its workspace holds
func (m *Manager) Logout(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if ok {
		s.ws.Close()
		utils.SetActiveSessions(n)
	}
	if err := m.store.Delete(id); err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}
	m.log.Info("session closed", "session_id", id)
	return nil
}

// Rehydrate loads the unexpired persisted sessions. Those whose backend JWT
// has expired meanwhile are dropped.
func (m *Manager) Rehydrate() (int, error) {
	now := m.now()
	rows, err := m.store.LoadActive(now)
	if err != nil {
		return 0, err
	}

	loaded := 0
	for i := range rows {
		s := fromRow(&rows[i])
		if err := m.client.WithToken(s.Token).CheckToken("rehydrate"); err != nil {
			_ = m.store.Delete(s.ID)
			continue
		}
		s.ws = m.newWorkspace(s.Token)
		m.mu.Lock()
		if old, dup := m.sessions[s.ID]; dup {
			old.ws.Close()
		}
		m.sessions[s.ID] = s
		m.mu.Unlock()
		loaded++
	}

	m.mu.Lock()
	n := len(m.sessions)
	m.mu.Unlock()
	utils.SetActiveSessions(n)
	m.log.Info("sessions rehydrated", "count", loaded)
	return loaded, nil
}

// Prune closes expired sessions, deletes their rows and closes idle views in
// the rest. It returns how many sessions went.
func (m *Manager) Prune() (int, error) {
	now := m.now()
	m.mu.Lock()
	var expired []*Session
	live := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			expired = append(expired, s)
			delete(m.sessions, id)
			continue
		}
		live = append(live, s)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.ws.Close()
	}
	for _, s := range live {
		s.ws.CloseIdle()
	}
	utils.SetActiveSessions(n)

	removed, err := m.store.PruneExpired(now)
	if err != nil {
		return len(expired), err
	}
	if int(removed) > len(expired) {
		return int(removed), nil
	}
	return len(expired), nil
}

// StartJanitor prunes on a fixed interval until Close
func (m *Manager) StartJanitor(interval time.Duration) error {
	p, err := utils.StartPoller("sessions", utils.EverySpec(interval), m.log, func(ctx context.Context) {
		if n, err := m.Prune(); err != nil {
			m.log.Warn("session prune failed", "error", err)
		} else if n > 0 {
			m.log.Info("sessions pruned", "count", n)
		}
	})
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.janitor = p
	m.mu.Unlock()
	return nil
}

// Count is the number of live sessions
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the janitor and tears down every workspace. Rows stay so the
// sessions can be rehydrated.
func (m *Manager) Close() {
	m.mu.Lock()
	j := m.janitor
	m.janitor = nil
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	if j != nil {
		j.Stop()
	}
	for _, s := range sessions {
		s.ws.Close()
	}
	utils.SetActiveSessions(0)
}

func (m *Manager) newWorkspace(token string) *Workspace {
	return NewWorkspace(m.client.WithToken(token), m.opts.Workspace)
}

func toRow(s *Session) *models.Session {
	profile, _ := json.Marshal(s.Profile)
	return &models.Session{
		ID:        s.ID,
		Token:     s.Token,
		UserID:    s.Profile.UserID,
		Name:      s.Profile.Name,
		Email:     s.Profile.Email,
		Role:      s.Profile.Role,
		Profile:   datatypes.JSON(profile),
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

func fromRow(row *models.Session) *Session {
	s := &Session{
		ID:        row.ID,
		Token:     row.Token,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
		Profile: Profile{
			UserID: row.UserID,
			Name:   row.Name,
			Email:  row.Email,
			Role:   row.Role,
		},
	}
	if len(row.Profile) > 0 {
		var p Profile
		if err := json.Unmarshal(row.Profile, &p); err == nil && p.Role != "" {
			s.Profile = p
		}
	}
	return s
}
