package session

import (
	"context"
	"learnfront/apiclient"
	"learnfront/apperrors"
	"learnfront/authoring"
	"learnfront/contenttype"
	"learnfront/modulestore"
	"learnfront/notify"
	"learnfront/progress"
	"learnfront/utils"
	"sync"
	"time"
)

type WorkspaceOptions struct {
	PollInterval    time.Duration
	NotificationTTL time.Duration
	IdleTimeout     time.Duration
	Logger          *utils.Logger
}

type courseView struct {
	store    *modulestore.Store
	detach   func()
	lastUsed time.Time
}

// Workspace is the per-session view state: the bound backend client and
// every store the session's pages read from.
type Workspace struct {
	Client    *apiclient.Client
	Types     *contenttype.Registry
	Notices   *notify.Center
	Progress  *progress.Tracker
	Authoring *authoring.Workspace

	opts WorkspaceOptions
	log  *utils.Logger

	mu     sync.Mutex
	views  map[uint]*courseView
	closed bool
	now    func() time.Time
}

func NewWorkspace(client *apiclient.Client, opts WorkspaceOptions) *Workspace {
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	w := &Workspace{
		Client:  client,
		Types:   contenttype.NewRegistry(client),
		Notices: notify.NewCenter(opts.NotificationTTL),
		opts:    opts,
		log:     opts.Logger,
		views:   make(map[uint]*courseView),
		now:     time.Now,
	}
	w.Progress = progress.NewTracker(client, opts.Logger)
	w.Authoring = authoring.New(client, w.Types, w.FindModuleView, opts.Logger)
	return w
}

// OpenView returns the course's view, creating it, loading its module list
// and starting its poller on first use. A failed first load still leaves the
// view open in its error state.
func (w *Workspace) OpenView(ctx context.Context, courseID uint) (*modulestore.Store, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, modulestore.ErrClosed
	}
	if v, ok := w.views[courseID]; ok {
		v.lastUsed = w.now()
		w.mu.Unlock()
		return v.store, nil
	}

	store := modulestore.New(courseID, w.Client, modulestore.Options{
		Logger: w.log,
		OnBackgroundError: func(err error) {
			w.Report(err)
		},
	})
	v := &courseView{store: store, lastUsed: w.now()}
	v.detach = w.Progress.Attach(courseID, store)
	w.views[courseID] = v
	w.mu.Unlock()

	if err := store.StartPolling(w.opts.PollInterval); err != nil {
		w.log.Warn("module polling not started", "course_id", courseID, "error", err)
	}
	if _, err := store.LoadModules(ctx); err != nil {
		return store, err
	}
	return store, nil
}

// View returns an already open view
func (w *Workspace) View(courseID uint) (*modulestore.Store, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.views[courseID]
	if !ok {
		return nil, false
	}
	v.lastUsed = w.now()
	return v.store, true
}

// FindModuleView returns the open view whose module list contains moduleID
func (w *Workspace) FindModuleView(moduleID uint) *modulestore.Store {
	w.mu.Lock()
	stores := make([]*modulestore.Store, 0, len(w.views))
	for _, v := range w.views {
		stores = append(stores, v.store)
	}
	w.mu.Unlock()
	for _, s := range stores {
		if _, ok := s.Module(moduleID); ok {
			return s
		}
	}
	return nil
}

// CloseView tears down the course's view: its poller stops and its pending
// fetches are dropped.
func (w *Workspace) CloseView(courseID uint) bool {
	w.mu.Lock()
	v, ok := w.views[courseID]
	delete(w.views, courseID)
	w.mu.Unlock()
	if ok {
		v.detach()
		v.store.Close()
	}
	return ok
}

// CloseIdle closes views not used within the idle timeout
func (w *Workspace) CloseIdle() int {
	if w.opts.IdleTimeout <= 0 {
		return 0
	}
	cutoff := w.now().Add(-w.opts.IdleTimeout)
	w.mu.Lock()
	var idle []uint
	for id, v := range w.views {
		if v.lastUsed.Before(cutoff) {
			idle = append(idle, id)
		}
	}
	w.mu.Unlock()
	for _, id := range idle {
		w.CloseView(id)
	}
	return len(idle)
}

// OpenViews lists the course ids with an open view
func (w *Workspace) OpenViews() []uint {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]uint, 0, len(w.views))
	for id := range w.views {
		ids = append(ids, id)
	}
	return ids
}

// Report turns err into a notification. Auth failures carry a redirect to
// the login page.
func (w *Workspace) Report(err error) {
	if err == nil {
		return
	}
	e := apperrors.As(err)
	if e.Kind == apperrors.KindAuth {
		w.Notices.PushRedirect(notify.LevelError, e.Message(), "/login")
		return
	}
	w.Notices.Push(notify.LevelError, e.Message())
}

// Close tears down every view and pending notification timer
func (w *Workspace) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	views := w.views
	w.views = make(map[uint]*courseView)
	w.mu.Unlock()

	for _, v := range views {
		v.detach()
		v.store.Close()
	}
	w.Notices.Close()
}
