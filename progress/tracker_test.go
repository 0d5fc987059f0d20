package progress

import (
	"context"
	"errors"
	"fmt"
	"learnfront/apiclient"
	"learnfront/apperrors"
	"learnfront/models/course"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu         sync.Mutex
	dash       *course.Dashboard
	dashErr    error
	completeEr error
	gate       chan struct{}
	dashGate   chan struct{}
	students   []course.StudentProgress
	studentErr error
	calls      []string
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeBackend) Dashboard(ctx context.Context) (*course.Dashboard, error) {
	f.record("dashboard")
	if f.dashErr != nil {
		return nil, f.dashErr
	}
	// hand out a copy so the tracker's edits do not leak back
	f.mu.Lock()
	d := *f.dash
	d.Courses = cloneCourses(f.dash.Courses)
	gate := f.dashGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &d, nil
}

func (f *fakeBackend) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeBackend) CompleteContent(ctx context.Context, courseID, contentID uint) error {
	f.record(fmt.Sprintf("content:%d", contentID))
	if err := f.wait(ctx); err != nil {
		return err
	}
	return f.completeEr
}

func (f *fakeBackend) CompleteModule(ctx context.Context, courseID, moduleID uint) error {
	f.record(fmt.Sprintf("module:%d", moduleID))
	if err := f.wait(ctx); err != nil {
		return err
	}
	return f.completeEr
}

func (f *fakeBackend) StudentsProgress(ctx context.Context, courseID uint) ([]course.StudentProgress, error) {
	f.record("students")
	return append([]course.StudentProgress(nil), f.students...), nil
}

func (f *fakeBackend) SetStudentState(ctx context.Context, courseID, studentID uint, action apiclient.StudentAction) error {
	f.record(fmt.Sprintf("student:%s:%d", action, studentID))
	if err := f.wait(ctx); err != nil {
		return err
	}
	return f.studentErr
}

type recordingSink struct {
	mu    sync.Mutex
	calls []string
}

func (s *recordingSink) add(c string) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
}

func (s *recordingSink) MarkContent(m, c uint)    { s.add(fmt.Sprintf("mark-content:%d", c)) }
func (s *recordingSink) ConfirmContent(m, c uint) { s.add(fmt.Sprintf("confirm-content:%d", c)) }
func (s *recordingSink) RevertContent(m, c uint)  { s.add(fmt.Sprintf("revert-content:%d", c)) }
func (s *recordingSink) MarkModule(m uint)        { s.add(fmt.Sprintf("mark-module:%d", m)) }
func (s *recordingSink) ConfirmModule(m uint)     { s.add(fmt.Sprintf("confirm-module:%d", m)) }
func (s *recordingSink) RevertModule(m uint)      { s.add(fmt.Sprintf("revert-module:%d", m)) }

func (s *recordingSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func sampleDashboard(active bool) *course.Dashboard {
	return &course.Dashboard{
		IsActive: active,
		Courses: []course.DashboardCourse{{
			Course: course.Course{ID: 1, Title: "Go"},
			Modules: []course.DashboardModule{{
				Module: course.Module{ID: 10, CourseID: 1, Title: "Basics", CompletedContentCount: 1, TotalContentCount: 3},
				Contents: []course.Content{
					{ID: 100, ModuleID: 10, ContentType: "1", Completed: true},
					{ID: 101, ModuleID: 10, ContentType: "1"},
					{ID: 102, ModuleID: 10, ContentType: "1"},
				},
			}},
		}},
	}
}

func loaded(t *testing.T, f *fakeBackend) *Tracker {
	t.Helper()
	tr := NewTracker(f, nil)
	_, err := tr.Load(context.Background())
	require.NoError(t, err)
	return tr
}

func firstModule(v View) course.DashboardModule {
	return v.Courses[0].Modules[0]
}

func TestLoadInactiveHidesCourses(t *testing.T) {
	f := &fakeBackend{dash: sampleDashboard(false)}
	tr := NewTracker(f, nil)

	v, err := tr.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateInactive, v.State)
	assert.False(t, v.Active)
	assert.Empty(t, v.Courses)
}

func TestLoadFailure(t *testing.T) {
	f := &fakeBackend{dashErr: apperrors.Auth("dashboard", "Token expired.")}
	tr := NewTracker(f, nil)

	v, err := tr.Load(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrAuth))
	assert.Equal(t, StateError, v.State)
	assert.Equal(t, "Token expired.", v.Error)
}

func TestMarkContentCompleteOptimistic(t *testing.T) {
	f := &fakeBackend{dash: sampleDashboard(true), gate: make(chan struct{})}
	tr := loaded(t, f)
	sink := &recordingSink{}
	tr.Attach(1, sink)

	done := make(chan error, 1)
	go func() { done <- tr.MarkContentComplete(context.Background(), 1, 10, 101) }()

	require.Eventually(t, func() bool { return tr.InFlight(1, 101) }, time.Second, time.Millisecond)
	m := firstModule(tr.View())
	assert.True(t, m.Contents[1].Completed, "flipped before the backend answers")
	assert.Equal(t, 2, m.CompletedContentCount)

	// A second call while the first is in flight issues nothing.
	require.NoError(t, tr.MarkContentComplete(context.Background(), 1, 10, 101))

	close(f.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.count("content:101"))
	assert.Equal(t, []string{"mark-content:101", "confirm-content:101"}, sink.all())
	assert.False(t, tr.InFlight(1, 101))
}

func TestMarkContentAlreadyCompleteIsNoop(t *testing.T) {
	f := &fakeBackend{dash: sampleDashboard(true)}
	tr := loaded(t, f)

	require.NoError(t, tr.MarkContentComplete(context.Background(), 1, 10, 100))
	assert.Equal(t, 0, f.count("content:"))
	assert.Equal(t, 1, firstModule(tr.View()).CompletedContentCount)
}

func TestMarkContentRollsBackOnFailure(t *testing.T) {
	f := &fakeBackend{dash: sampleDashboard(true), completeEr: apperrors.Transient("complete content", errors.New("timeout"))}
	tr := loaded(t, f)
	sink := &recordingSink{}
	detach := tr.Attach(1, sink)
	defer detach()

	err := tr.MarkContentComplete(context.Background(), 1, 10, 101)
	assert.True(t, errors.Is(err, apperrors.ErrTransient))

	m := firstModule(tr.View())
	assert.False(t, m.Contents[1].Completed)
	assert.Equal(t, 1, m.CompletedContentCount)
	assert.Equal(t, []string{"mark-content:101", "revert-content:101"}, sink.all())
}

func TestConflictCountsAsConfirmed(t *testing.T) {
	f := &fakeBackend{dash: sampleDashboard(true), completeEr: apperrors.FromStatus("complete module", 409, "Already completed.", nil)}
	tr := loaded(t, f)

	require.NoError(t, tr.MarkModuleComplete(context.Background(), 1, 10))
	assert.True(t, firstModule(tr.View()).Completed)

	require.NoError(t, tr.MarkModuleComplete(context.Background(), 1, 10))
	assert.Equal(t, 1, f.count("module:10"), "already complete locally")
}

func TestMarkModuleRollsBack(t *testing.T) {
	f := &fakeBackend{dash: sampleDashboard(true), completeEr: apperrors.FromStatus("complete module", 500, "", nil)}
	tr := loaded(t, f)
	sink := &recordingSink{}
	tr.Attach(1, sink)
	tr.Attach(2, &recordingSink{})

	assert.Error(t, tr.MarkModuleComplete(context.Background(), 1, 10))
	assert.False(t, firstModule(tr.View()).Completed)
	assert.Equal(t, []string{"mark-module:10", "revert-module:10"}, sink.all())
}

func TestPendingMarkSurvivesReload(t *testing.T) {
	f := &fakeBackend{dash: sampleDashboard(true), gate: make(chan struct{})}
	tr := loaded(t, f)

	done := make(chan error, 1)
	go func() { done <- tr.MarkContentComplete(context.Background(), 1, 10, 102) }()
	require.Eventually(t, func() bool { return tr.InFlight(1, 102) }, time.Second, time.Millisecond)

	v, err := tr.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, firstModule(v).Contents[2].Completed)
	assert.Equal(t, 2, firstModule(v).CompletedContentCount)

	close(f.gate)
	require.NoError(t, <-done)
}

func TestConfirmedMarkSurvivesOlderLoad(t *testing.T) {
	f := &fakeBackend{dash: sampleDashboard(true)}
	tr := loaded(t, f)

	f.mu.Lock()
	f.dashGate = make(chan struct{})
	f.mu.Unlock()
	reload := make(chan View, 1)
	go func() {
		v, _ := tr.Load(context.Background())
		reload <- v
	}()
	require.Eventually(t, func() bool { return f.count("dashboard") == 2 }, time.Second, time.Millisecond)

	require.NoError(t, tr.MarkContentComplete(context.Background(), 1, 10, 101))
	assert.Equal(t, 2, firstModule(tr.View()).CompletedContentCount)

	close(f.dashGate)
	v := <-reload
	assert.True(t, firstModule(v).Contents[1].Completed, "answer predates the completion")
	assert.Equal(t, 2, firstModule(v).CompletedContentCount)

	// a load issued after the confirmation is taken as is
	f.mu.Lock()
	f.dashGate = nil
	f.mu.Unlock()
	v, err := tr.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, firstModule(v).Contents[1].Completed)
	assert.Empty(t, tr.settled)
}

func TestConfirmedModuleSurvivesOlderLoad(t *testing.T) {
	f := &fakeBackend{dash: sampleDashboard(true), dashGate: make(chan struct{})}
	tr := NewTracker(f, nil)

	reload := make(chan View, 1)
	go func() {
		v, _ := tr.Load(context.Background())
		reload <- v
	}()
	require.Eventually(t, func() bool { return f.count("dashboard") == 1 }, time.Second, time.Millisecond)

	require.NoError(t, tr.MarkModuleComplete(context.Background(), 1, 10))
	close(f.dashGate)
	assert.True(t, firstModule(<-reload).Completed)
}

func TestComputeModuleProgressPercent(t *testing.T) {
	cases := []struct {
		name        string
		done, total int
		want        int
	}{
		{"three of four", 3, 4, 75},
		{"empty module", 0, 0, 0},
		{"rounds down", 1, 3, 33},
		{"complete", 5, 5, 100},
		{"never above 100", 7, 5, 100},
		{"negative total", 1, -1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := course.Module{CompletedContentCount: tc.done, TotalContentCount: tc.total}
			assert.Equal(t, tc.want, ComputeModuleProgressPercent(m))
		})
	}
}

func studentsFixture() []course.StudentProgress {
	return []course.StudentProgress{
		{StudentID: 1, Student: "Ada", IsActive: true},
		{StudentID: 2, Student: "Linus", IsActive: false},
		{StudentID: 3, Student: "Grace", IsActive: true},
	}
}

func TestStudentStateChanges(t *testing.T) {
	f := &fakeBackend{students: studentsFixture()}
	tr := NewTracker(f, nil)
	_, err := tr.LoadStudents(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, tr.ActivateStudent(context.Background(), 1, 2))
	assert.True(t, tr.Students(1)[1].IsActive)

	require.NoError(t, tr.DeactivateStudent(context.Background(), 1, 1))
	assert.False(t, tr.Students(1)[0].IsActive)

	require.NoError(t, tr.RemoveStudent(context.Background(), 1, 3))
	assert.Len(t, tr.Students(1), 2)
	assert.Equal(t, 1, f.count("student:remove:3"))
}

func TestStudentChangeRollsBack(t *testing.T) {
	f := &fakeBackend{students: studentsFixture(), studentErr: apperrors.FromStatus("remove student", 403, "Not your course.", nil)}
	tr := NewTracker(f, nil)
	_, err := tr.LoadStudents(context.Background(), 1)
	require.NoError(t, err)

	err = tr.RemoveStudent(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Equal(t, "Not your course.", apperrors.As(err).Message())
	assert.Equal(t, studentsFixture(), tr.Students(1))

	assert.Error(t, tr.DeactivateStudent(context.Background(), 1, 1))
	assert.True(t, tr.Students(1)[0].IsActive)
	assert.Equal(t, 1, f.count("student:deactivate:1"), "no silent retry")
}

func TestStudentChangeOptimistic(t *testing.T) {
	f := &fakeBackend{students: studentsFixture(), gate: make(chan struct{})}
	tr := NewTracker(f, nil)
	_, err := tr.LoadStudents(context.Background(), 1)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- tr.RemoveStudent(context.Background(), 1, 1) }()
	require.Eventually(t, func() bool { return len(tr.Students(1)) == 2 }, time.Second, time.Millisecond)

	err = tr.ActivateStudent(context.Background(), 1, 1)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	close(f.gate)
	require.NoError(t, <-done)
}
