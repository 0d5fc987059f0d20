package modulestore

import (
	"context"
	"errors"
	"learnfront/apperrors"
	"learnfront/models/course"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu        sync.Mutex
	modules   []course.Module
	listErr   error
	listGate  chan struct{}
	contents  map[uint][]course.Content
	gates     map[uint]chan struct{}
	mutateErr error
	calls     map[string]int
}

func newFake(mods ...course.Module) *fakeBackend {
	return &fakeBackend{
		modules:  mods,
		contents: make(map[uint][]course.Content),
		gates:    make(map[uint]chan struct{}),
		calls:    make(map[string]int),
	}
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) setModules(mods ...course.Module) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modules = mods
}

func (f *fakeBackend) ListModules(ctx context.Context, courseID uint) ([]course.Module, error) {
	f.mu.Lock()
	f.calls["list"]++
	gate, err := f.listGate, f.listErr
	mods := append([]course.Module(nil), f.modules...)
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return mods, nil
}

func (f *fakeBackend) ListContents(ctx context.Context, moduleID uint) ([]course.Content, error) {
	f.mu.Lock()
	f.calls["contents"]++
	gate := f.gates[moduleID]
	items := append([]course.Content(nil), f.contents[moduleID]...)
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return items, nil
}

func (f *fakeBackend) CreateModule(ctx context.Context, courseID uint, in course.ModuleInput) (*course.Module, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	return &course.Module{ID: 100, CourseID: courseID, Title: in.Title, Order: in.Order}, nil
}

func (f *fakeBackend) UpdateModule(ctx context.Context, courseID, moduleID uint, patch course.ModulePatch) (*course.Module, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	m := course.Module{ID: moduleID, CourseID: courseID, Title: "old"}
	if patch.Title != nil {
		m.Title = *patch.Title
	}
	if patch.Order != nil {
		m.Order = *patch.Order
	}
	return &m, nil
}

func (f *fakeBackend) DeleteModule(ctx context.Context, courseID, moduleID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	return f.mutateErr
}

func mod(id uint, order, done, total int) course.Module {
	return course.Module{ID: id, Title: "m", Order: order, CompletedContentCount: done, TotalContentCount: total}
}

func TestLoadModulesSortsAndBecomesReady(t *testing.T) {
	f := newFake(mod(2, 1, 0, 0), mod(1, 0, 0, 0), mod(3, 1, 0, 0))
	s := New(7, f, Options{})
	defer s.Close()

	assert.Equal(t, StateIdle, s.Snapshot().State)
	mods, err := s.LoadModules(context.Background())
	require.NoError(t, err)

	ids := []uint{mods[0].ID, mods[1].ID, mods[2].ID}
	assert.Equal(t, []uint{1, 2, 3}, ids)
	assert.Equal(t, StateReady, s.Snapshot().State)
}

func TestForegroundFailureEmptiesList(t *testing.T) {
	f := newFake(mod(1, 0, 0, 0))
	s := New(7, f, Options{})
	defer s.Close()

	_, err := s.LoadModules(context.Background())
	require.NoError(t, err)

	f.listErr = apperrors.Transient("list modules", errors.New("timeout"))
	_, err = s.LoadModules(context.Background())
	assert.Error(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	assert.Empty(t, snap.Modules)
	assert.NotEmpty(t, snap.Error)
}

func TestBackgroundFailureKeepsList(t *testing.T) {
	f := newFake(mod(1, 0, 0, 0))
	surfaced := make(chan error, 1)
	s := New(7, f, Options{OnBackgroundError: func(err error) { surfaced <- err }})
	defer s.Close()

	_, err := s.LoadModules(context.Background())
	require.NoError(t, err)

	f.listErr = apperrors.Transient("list modules", errors.New("timeout"))
	assert.Error(t, s.Refresh(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Len(t, snap.Modules, 1)
	assert.NotEmpty(t, snap.StaleError)

	select {
	case err := <-surfaced:
		assert.True(t, errors.Is(err, apperrors.ErrTransient))
	case <-time.After(time.Second):
		t.Fatal("background error was not surfaced")
	}
}

func TestBackgroundFailureOnFirstLoadIsError(t *testing.T) {
	f := newFake()
	f.listErr = errors.New("down")
	s := New(7, f, Options{})
	defer s.Close()

	assert.Error(t, s.Refresh(context.Background()))
	assert.Equal(t, StateError, s.Snapshot().State)
}

func TestCreateModuleNegativeOrderMakesNoRequest(t *testing.T) {
	f := newFake()
	s := New(7, f, Options{})
	defer s.Close()

	_, err := s.CreateModule(context.Background(), course.ModuleInput{Title: "Intro", Order: -1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, apperrors.As(err).Fields, "order")
	assert.Equal(t, 0, f.count("create"))
	assert.Equal(t, 0, f.count("list"))
}

func TestCreateModuleInsertsInOrder(t *testing.T) {
	f := newFake(mod(1, 0, 0, 0), mod(2, 5, 0, 0))
	s := New(7, f, Options{})
	defer s.Close()
	_, err := s.LoadModules(context.Background())
	require.NoError(t, err)

	m, err := s.CreateModule(context.Background(), course.ModuleInput{Title: " Middle ", Order: 3})
	require.NoError(t, err)
	assert.Equal(t, "Middle", m.Title)

	snap := s.Snapshot()
	require.Len(t, snap.Modules, 3)
	assert.Equal(t, uint(100), snap.Modules[1].ID)
}

func TestSelectionLastWriteWins(t *testing.T) {
	f := newFake(mod(1, 0, 0, 0), mod(2, 1, 0, 0))
	f.contents[1] = []course.Content{{ID: 10, ModuleID: 1, ContentType: "1"}}
	f.contents[2] = []course.Content{{ID: 20, ModuleID: 2, ContentType: "1"}}
	gateA := make(chan struct{})
	f.gates[1] = gateA

	s := New(7, f, Options{})
	defer s.Close()

	resA := make(chan error, 1)
	go func() {
		_, err := s.SelectModule(context.Background(), 1)
		resA <- err
	}()
	require.Eventually(t, func() bool { return f.count("contents") == 1 }, time.Second, time.Millisecond)

	contentsB, err := s.SelectModule(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, contentsB, 1)
	assert.Equal(t, uint(20), contentsB[0].ID)

	close(gateA)
	assert.ErrorIs(t, <-resA, ErrSuperseded)

	snap := s.Snapshot()
	assert.Equal(t, SelectionSelected, snap.Selection)
	assert.Equal(t, uint(2), snap.SelectedID)
	require.Len(t, snap.Contents, 1)
	assert.Equal(t, uint(20), snap.Contents[0].ID)
}

func TestUpdateModuleIsTransactional(t *testing.T) {
	f := newFake(mod(1, 0, 2, 4))
	s := New(7, f, Options{})
	defer s.Close()
	_, err := s.LoadModules(context.Background())
	require.NoError(t, err)
	before := s.Snapshot().Modules

	f.mutateErr = apperrors.FromStatus("update module", 403, "Not yours.", nil)
	title := "Renamed"
	_, err = s.UpdateModule(context.Background(), 1, course.ModulePatch{Title: &title})
	assert.Error(t, err)
	assert.Equal(t, before, s.Snapshot().Modules)

	f.mutateErr = nil
	updated, err := s.UpdateModule(context.Background(), 1, course.ModulePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 2, updated.CompletedContentCount, "learner counters survive an edit")
	assert.Equal(t, "Renamed", s.Snapshot().Modules[0].Title)
}

func TestUpdateModuleRejectsNegativeOrder(t *testing.T) {
	f := newFake()
	s := New(7, f, Options{})
	defer s.Close()

	order := -2
	_, err := s.UpdateModule(context.Background(), 1, course.ModulePatch{Order: &order})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, 0, f.count("update"))
}

func TestDeleteModuleIsTransactional(t *testing.T) {
	f := newFake(mod(1, 0, 0, 0), mod(2, 1, 0, 0))
	s := New(7, f, Options{})
	defer s.Close()
	_, err := s.LoadModules(context.Background())
	require.NoError(t, err)
	_, err = s.SelectModule(context.Background(), 2)
	require.NoError(t, err)

	f.mutateErr = errors.New("boom")
	assert.Error(t, s.DeleteModule(context.Background(), 2))
	assert.Len(t, s.Snapshot().Modules, 2)

	f.mutateErr = nil
	require.NoError(t, s.DeleteModule(context.Background(), 2))
	snap := s.Snapshot()
	assert.Len(t, snap.Modules, 1)
	assert.Equal(t, SelectionNone, snap.Selection)
}

func TestOptimisticMarkSurvivesStaleRefresh(t *testing.T) {
	f := newFake(mod(1, 0, 0, 2))
	f.contents[1] = []course.Content{{ID: 10, ModuleID: 1, ContentType: "1"}, {ID: 11, ModuleID: 1, ContentType: "1"}}
	s := New(7, f, Options{})
	defer s.Close()
	_, err := s.LoadModules(context.Background())
	require.NoError(t, err)
	_, err = s.SelectModule(context.Background(), 1)
	require.NoError(t, err)

	s.MarkContent(1, 10)
	s.MarkContent(1, 10)
	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Modules[0].CompletedContentCount)
	assert.True(t, snap.Contents[0].Completed)

	// The backend has not caught up yet: both fetches come back stale.
	require.NoError(t, s.Refresh(context.Background()))
	_, err = s.ReloadContents(context.Background())
	require.NoError(t, err)
	snap = s.Snapshot()
	assert.Equal(t, 1, snap.Modules[0].CompletedContentCount)
	assert.True(t, snap.Contents[0].Completed)

	// After confirmation, later fetches are trusted as is.
	s.ConfirmContent(1, 10)
	f.setModules(mod(1, 0, 1, 2))
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 1, s.Snapshot().Modules[0].CompletedContentCount)
}

func TestRevertRestoresPreviousState(t *testing.T) {
	f := newFake(mod(1, 0, 0, 1))
	f.contents[1] = []course.Content{{ID: 10, ModuleID: 1, ContentType: "1"}}
	s := New(7, f, Options{})
	defer s.Close()
	_, _ = s.LoadModules(context.Background())
	_, _ = s.SelectModule(context.Background(), 1)

	s.MarkContent(1, 10)
	s.MarkModule(1)
	s.RevertContent(1, 10)
	s.RevertModule(1)

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Modules[0].CompletedContentCount)
	assert.False(t, snap.Modules[0].Completed)
	assert.False(t, snap.Contents[0].Completed)
}

func TestCounterNeverExceedsTotal(t *testing.T) {
	f := newFake(mod(1, 0, 1, 1))
	s := New(7, f, Options{})
	defer s.Close()
	_, _ = s.LoadModules(context.Background())

	s.MarkContent(1, 10)
	assert.Equal(t, 1, s.Snapshot().Modules[0].CompletedContentCount)
}

func TestCloseCancelsInFlightLoad(t *testing.T) {
	f := newFake(mod(1, 0, 0, 0))
	f.listGate = make(chan struct{})
	s := New(7, f, Options{})

	done := make(chan error, 1)
	go func() {
		_, err := s.LoadModules(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return f.count("list") == 1 }, time.Second, time.Millisecond)

	s.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("load was not cancelled")
	}

	_, err := s.SelectModule(context.Background(), 1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.StartPolling(time.Second), ErrClosed)
}

func TestPollingRefreshesUntilClosed(t *testing.T) {
	f := newFake(mod(1, 0, 0, 0))
	s := New(7, f, Options{})

	require.NoError(t, s.StartPolling(time.Second))
	require.NoError(t, s.StartPolling(time.Second))
	assert.True(t, s.Snapshot().Polling)

	assert.Eventually(t, func() bool { return f.count("list") >= 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, StateReady, s.Snapshot().State)

	s.Close()
	calls := f.count("list")
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, calls, f.count("list"))
	assert.False(t, s.Snapshot().Polling)
}
