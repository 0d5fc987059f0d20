// Package modulestore holds the module list of one course view and the
// contents of the selected module.
//
// List loads and module selections each carry a sequence number; a result is
// applied only if no newer request of the same kind was started meanwhile.
// Optimistic completion marks recorded through the Sink methods are kept as
// overlays and reasserted on top of every fetched result until the backend
// has confirmed them.
package modulestore

import (
	"context"
	"errors"
	"learnfront/apperrors"
	"learnfront/models/course"
	"learnfront/utils"
	"sort"
	"strings"
	"sync"
	"time"
)

type ListState string

const (
	StateIdle    ListState = "idle"
	StateLoading ListState = "loading"
	StateReady   ListState = "ready"
	StateError   ListState = "error"
)

type SelectionState string

const (
	SelectionNone      SelectionState = "no-selection"
	SelectionSelecting SelectionState = "selecting"
	SelectionSelected  SelectionState = "selected"
	SelectionError     SelectionState = "selection-error"
)

var (
	ErrClosed     = errors.New("module store is closed")
	ErrSuperseded = errors.New("result superseded by a newer request")
)

// Backend is the part of the API client the store needs
type Backend interface {
	ListModules(ctx context.Context, courseID uint) ([]course.Module, error)
	ListContents(ctx context.Context, moduleID uint) ([]course.Content, error)
	CreateModule(ctx context.Context, courseID uint, in course.ModuleInput) (*course.Module, error)
	UpdateModule(ctx context.Context, courseID, moduleID uint, patch course.ModulePatch) (*course.Module, error)
	DeleteModule(ctx context.Context, courseID, moduleID uint) error
}

type Options struct {
	Logger *utils.Logger
	// OnBackgroundError is told about failed poll refreshes
	OnBackgroundError func(error)
}

// Snapshot is a copy of the view state
type Snapshot struct {
	CourseID       uint             `json:"course_id"`
	State          ListState        `json:"state"`
	Modules        []course.Module  `json:"modules"`
	Error          string           `json:"error,omitempty"`
	StaleError     string           `json:"stale_error,omitempty"`
	Selection      SelectionState   `json:"selection"`
	SelectedID     uint             `json:"selected_module_id,omitempty"`
	Contents       []course.Content `json:"contents"`
	SelectionError string           `json:"selection_error,omitempty"`
	Polling        bool             `json:"polling"`
}

type Store struct {
	courseID uint
	backend  Backend
	log      *utils.Logger
	onBgErr  func(error)

	life   context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	closed    bool
	state     ListState
	hasLoaded bool
	modules   []course.Module
	listErr   error
	staleErr  error
	listSeq   uint64

	selection  SelectionState
	selectedID uint
	contents   []course.Content
	selErr     error
	selSeq     uint64

	gen      uint64 // bumped by every fetch, list or contents
	overlays overlays

	poller *utils.Poller
}

func New(courseID uint, backend Backend, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	life, cancel := context.WithCancel(context.Background())
	return &Store{
		courseID:  courseID,
		backend:   backend,
		log:       opts.Logger.With("course_id", courseID),
		onBgErr:   opts.OnBackgroundError,
		life:      life,
		cancel:    cancel,
		state:     StateIdle,
		selection: SelectionNone,
		overlays:  newOverlays(),
	}
}

func (s *Store) CourseID() uint { return s.courseID }

// bind derives a request context that is also cancelled when the store closes
func (s *Store) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// LoadModules fetches and replaces the module list. On failure the list is
// emptied and the store enters the error state.
func (s *Store) LoadModules(ctx context.Context) ([]course.Module, error) {
	return s.load(ctx, false)
}

// Refresh is the background variant used by polling: once a list has been
// shown, a failed refresh keeps it and records a stale error instead.
func (s *Store) Refresh(ctx context.Context) error {
	_, err := s.load(ctx, true)
	return err
}

func (s *Store) load(ctx context.Context, background bool) ([]course.Module, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.listSeq++
	seq := s.listSeq
	s.gen++
	gen := s.gen
	s.state = StateLoading
	s.mu.Unlock()

	rctx, done := s.bind(ctx)
	mods, err := s.backend.ListModules(rctx, s.courseID)
	done()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if seq != s.listSeq {
		return cloneModules(s.modules), nil
	}

	if err != nil {
		if background && s.hasLoaded {
			s.state = StateReady
			s.staleErr = err
			utils.RecordPollFailure()
			s.log.Warn("module refresh failed, keeping last list", "error", err)
			if s.onBgErr != nil {
				go s.onBgErr(err)
			}
			return cloneModules(s.modules), err
		}
		s.state = StateError
		s.modules = nil
		s.listErr = err
		s.log.Warn("module load failed", "error", err)
		return nil, err
	}

	sortModules(mods)
	s.modules = mods
	s.reassertModules(gen)
	s.state = StateReady
	s.hasLoaded = true
	s.listErr = nil
	s.staleErr = nil

	if s.selectedID != 0 && s.indexOf(s.selectedID) < 0 {
		s.clearSelection()
	}
	return cloneModules(s.modules), nil
}

// SelectModule makes moduleID the active module and fetches its contents.
// If another selection starts before this one resolves, this call returns
// ErrSuperseded and its result is dropped.
func (s *Store) SelectModule(ctx context.Context, moduleID uint) ([]course.Content, error) {
	return s.fetchContents(ctx, moduleID, false)
}

// ReloadContents re-fetches the selected module's contents, keeping the
// current ones visible meanwhile.
func (s *Store) ReloadContents(ctx context.Context) ([]course.Content, error) {
	s.mu.Lock()
	id := s.selectedID
	s.mu.Unlock()
	if id == 0 {
		return nil, nil
	}
	return s.fetchContents(ctx, id, true)
}

func (s *Store) fetchContents(ctx context.Context, moduleID uint, keep bool) ([]course.Content, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.selSeq++
	seq := s.selSeq
	s.gen++
	gen := s.gen
	if !keep || s.selectedID != moduleID {
		s.contents = nil
	}
	s.selectedID = moduleID
	s.selection = SelectionSelecting
	s.selErr = nil
	s.mu.Unlock()

	rctx, done := s.bind(ctx)
	contents, err := s.backend.ListContents(rctx, moduleID)
	done()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if seq != s.selSeq {
		return nil, ErrSuperseded
	}
	if err != nil {
		s.selection = SelectionError
		s.selErr = err
		s.log.Warn("content load failed", "module_id", moduleID, "error", err)
		return nil, err
	}

	sortContents(contents)
	s.contents = contents
	s.reassertContents(gen)
	s.selection = SelectionSelected
	return cloneContents(s.contents), nil
}

// ClearSelection drops the active module and discards any in-flight selection
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSelection()
}

func (s *Store) clearSelection() {
	s.selSeq++
	s.selectedID = 0
	s.contents = nil
	s.selErr = nil
	s.selection = SelectionNone
}

// CreateModule validates locally, then creates the module and inserts it.
func (s *Store) CreateModule(ctx context.Context, in course.ModuleInput) (*course.Module, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	errs := make(map[string]string)
	if in.Title == "" {
		errs["title"] = "Title is required!"
	}
	if in.Order < 0 {
		errs["order"] = "Order must be zero or greater!"
	}
	if len(errs) > 0 {
		return nil, apperrors.Validation("create module", errs)
	}
	if s.isClosed() {
		return nil, ErrClosed
	}

	rctx, done := s.bind(ctx)
	m, err := s.backend.CreateModule(rctx, s.courseID, in)
	done()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeListLoad()
	if i := s.indexOf(m.ID); i >= 0 {
		s.modules[i] = *m
	} else {
		s.modules = append(s.modules, *m)
	}
	sortModules(s.modules)
	s.markLoaded()
	out := *m
	return &out, nil
}

// UpdateModule applies patch on the backend first; the local list changes
// only once the backend has accepted it.
func (s *Store) UpdateModule(ctx context.Context, moduleID uint, patch course.ModulePatch) (*course.Module, error) {
	errs := make(map[string]string)
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
		if t == "" {
			errs["title"] = "Title cannot be empty!"
		}
	}
	if patch.Order != nil && *patch.Order < 0 {
		errs["order"] = "Order must be zero or greater!"
	}
	if len(errs) > 0 {
		return nil, apperrors.Validation("update module", errs)
	}
	if s.isClosed() {
		return nil, ErrClosed
	}

	rctx, done := s.bind(ctx)
	updated, err := s.backend.UpdateModule(rctx, s.courseID, moduleID, patch)
	done()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeListLoad()

	merged := *updated
	if i := s.indexOf(moduleID); i >= 0 {
		// Progress fields are learner-relative; keep the local ones.
		local := s.modules[i]
		local.Title = updated.Title
		local.Description = updated.Description
		local.Order = updated.Order
		s.modules[i] = local
		merged = local
		sortModules(s.modules)
	}
	return &merged, nil
}

// DeleteModule removes the module once the backend has deleted it
func (s *Store) DeleteModule(ctx context.Context, moduleID uint) error {
	if s.isClosed() {
		return ErrClosed
	}

	rctx, done := s.bind(ctx)
	err := s.backend.DeleteModule(rctx, s.courseID, moduleID)
	done()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeListLoad()
	if i := s.indexOf(moduleID); i >= 0 {
		s.modules = append(s.modules[:i:i], s.modules[i+1:]...)
	}
	if s.selectedID == moduleID {
		s.clearSelection()
	}
	s.overlays.dropModule(moduleID)
	return nil
}

// ReplaceContent patches one content item of the selected module in place
func (s *Store) ReplaceContent(c course.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contents {
		if s.contents[i].ID == c.ID {
			if c.ModuleID == 0 {
				c.ModuleID = s.contents[i].ModuleID
			}
			c.Completed = c.Completed || s.contents[i].Completed
			s.contents[i] = c
			sortContents(s.contents)
			return
		}
	}
	if c.ModuleID == s.selectedID && s.selectedID != 0 {
		s.contents = append(s.contents, c)
		sortContents(s.contents)
		if i := s.indexOf(c.ModuleID); i >= 0 {
			s.modules[i].TotalContentCount++
		}
	}
}

// RemoveContent drops a content item from the selected module
func (s *Store) RemoveContent(contentID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contents {
		if s.contents[i].ID != contentID {
			continue
		}
		removed := s.contents[i]
		s.contents = append(s.contents[:i:i], s.contents[i+1:]...)
		if m := s.indexOf(removed.ModuleID); m >= 0 {
			mod := &s.modules[m]
			if mod.TotalContentCount > 0 {
				mod.TotalContentCount--
			}
			if removed.Completed && mod.CompletedContentCount > 0 {
				mod.CompletedContentCount--
			}
			clampCounters(mod)
		}
		break
	}
	s.overlays.dropContent(contentID)
}

// StartPolling refreshes the list every interval until StopPolling or Close
func (s *Store) StartPolling(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.poller != nil {
		return nil
	}
	p, err := utils.StartPoller("modules", utils.EverySpec(interval), s.log, func(ctx context.Context) {
		if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrClosed) {
			s.log.Debug("poll tick failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.poller = p
	return nil
}

func (s *Store) StopPolling() {
	s.mu.Lock()
	p := s.poller
	s.poller = nil
	s.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

// Close tears the view down: polling stops, in-flight fetches are cancelled
// and their results discarded.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.StopPolling()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		CourseID:   s.courseID,
		State:      s.state,
		Modules:    cloneModules(s.modules),
		Selection:  s.selection,
		SelectedID: s.selectedID,
		Contents:   cloneContents(s.contents),
		Polling:    s.poller != nil,
	}
	if s.listErr != nil {
		snap.Error = apperrors.As(s.listErr).Message()
	}
	if s.staleErr != nil {
		snap.StaleError = apperrors.As(s.staleErr).Message()
	}
	if s.selErr != nil {
		snap.SelectionError = apperrors.As(s.selErr).Message()
	}
	return snap
}

// Module returns the module with id from the current list
func (s *Store) Module(id uint) (course.Module, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.modules[i], true
	}
	return course.Module{}, false
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// supersedeListLoad makes an in-flight list load drop its result, which may
// predate the mutation just applied.
func (s *Store) supersedeListLoad() {
	s.listSeq++
	if s.state == StateLoading && s.hasLoaded {
		s.state = StateReady
	}
}

func (s *Store) markLoaded() {
	if !s.hasLoaded || s.state == StateIdle || s.state == StateError {
		s.state = StateReady
		s.listErr = nil
		s.hasLoaded = true
	}
}

func (s *Store) indexOf(id uint) int {
	for i := range s.modules {
		if s.modules[i].ID == id {
			return i
		}
	}
	return -1
}

func sortModules(mods []course.Module) {
	sort.SliceStable(mods, func(i, j int) bool {
		if mods[i].Order != mods[j].Order {
			return mods[i].Order < mods[j].Order
		}
		return mods[i].ID < mods[j].ID
	})
}

func sortContents(items []course.Content) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].ID < items[j].ID
	})
}

func cloneModules(in []course.Module) []course.Module {
	out := make([]course.Module, len(in))
	copy(out, in)
	return out
}

func cloneContents(in []course.Content) []course.Content {
	out := make([]course.Content, len(in))
	copy(out, in)
	return out
}

func clampCounters(m *course.Module) {
	if m.CompletedContentCount < 0 {
		m.CompletedContentCount = 0
	}
	if m.TotalContentCount < 0 {
		m.TotalContentCount = 0
	}
	if m.CompletedContentCount > m.TotalContentCount {
		m.CompletedContentCount = m.TotalContentCount
	}
}
