// Package progress tracks the learner's completion state and the tutor's
// view of enrolled students.
//
// Completion actions are applied locally first and then sent to the backend.
// A refused mutation is rolled back in the tracker and in every attached Sink,
// and the error is returned for the caller to surface. The backend answering
// 409 means the entity was already complete, which counts as confirmation.
package progress

import (
	"context"
	"learnfront/apiclient"
	"learnfront/apperrors"
	"learnfront/models/course"
	"learnfront/utils"
	"sync"
)

type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateInactive State = "inactive"
	StateError    State = "error"
)

// Sink receives optimistic completion changes, e.g. an open course view
type Sink interface {
	MarkContent(moduleID, contentID uint)
	ConfirmContent(moduleID, contentID uint)
	RevertContent(moduleID, contentID uint)
	MarkModule(moduleID uint)
	ConfirmModule(moduleID uint)
	RevertModule(moduleID uint)
}

type Backend interface {
	Dashboard(ctx context.Context) (*course.Dashboard, error)
	CompleteContent(ctx context.Context, courseID, contentID uint) error
	CompleteModule(ctx context.Context, courseID, moduleID uint) error
	StudentsProgress(ctx context.Context, courseID uint) ([]course.StudentProgress, error)
	SetStudentState(ctx context.Context, courseID, studentID uint, action apiclient.StudentAction) error
}

// View is what the dashboard shows. Courses is empty while inactive.
type View struct {
	State   State                    `json:"state"`
	Active  bool                     `json:"is_active"`
	Courses []course.DashboardCourse `json:"courses"`
	Error   string                   `json:"error,omitempty"`
}

type entityKind uint8

const (
	entityContent entityKind = iota
	entityModule
	entityStudent
)

type entityKey struct {
	kind   entityKind
	course uint
	id     uint
}

// pending is an unconfirmed completion, reapplied when the dashboard reloads
type pending struct {
	moduleID uint
	bumped   bool
	prev     bool
}

// confirmedMark is a confirmed completion. Loads numbered up to through may have
// been answered before the backend saw it, so it is reasserted onto them.
type confirmedMark struct {
	moduleID uint
	through  uint64
}

type Tracker struct {
	backend Backend
	log     *utils.Logger

	mu       sync.Mutex
	state    State
	loadErr  error
	dash     *course.Dashboard
	loadSeq  uint64
	inflight map[entityKey]*pending
	settled  map[entityKey]confirmedMark
	sinks    map[uint]map[int]Sink
	nextSink int
	students map[uint][]course.StudentProgress
}

func NewTracker(backend Backend, log *utils.Logger) *Tracker {
	if log == nil {
		log = utils.NewNopLogger()
	}
	return &Tracker{
		backend:  backend,
		log:      log,
		state:    StateIdle,
		inflight: make(map[entityKey]*pending),
		settled:  make(map[entityKey]confirmedMark),
		sinks:    make(map[uint]map[int]Sink),
		students: make(map[uint][]course.StudentProgress),
	}
}

// Attach registers a sink for one course. The returned func detaches it.
func (t *Tracker) Attach(courseID uint, s Sink) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextSink++
	id := t.nextSink
	if t.sinks[courseID] == nil {
		t.sinks[courseID] = make(map[int]Sink)
	}
	t.sinks[courseID][id] = s
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.sinks[courseID], id)
		if len(t.sinks[courseID]) == 0 {
			delete(t.sinks, courseID)
		}
	}
}

func (t *Tracker) sinksFor(courseID uint) []Sink {
	out := make([]Sink, 0, len(t.sinks[courseID]))
	for _, s := range t.sinks[courseID] {
		out = append(out, s)
	}
	return out
}

// Load fetches the learner dashboard. An inactive account hides all courses.
func (t *Tracker) Load(ctx context.Context) (View, error) {
	t.mu.Lock()
	t.loadSeq++
	seq := t.loadSeq
	t.state = StateLoading
	t.mu.Unlock()

	dash, err := t.backend.Dashboard(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if seq != t.loadSeq {
		return t.view(), nil
	}
	if err != nil {
		t.state = StateError
		t.loadErr = err
		t.dash = nil
		t.log.Warn("dashboard load failed", "error", err)
		return t.view(), err
	}

	t.loadErr = nil
	t.dash = dash
	if !dash.IsActive {
		t.state = StateInactive
		return t.view(), nil
	}
	t.state = StateReady
	t.reapplyPending()
	t.reapplySettled(seq)
	return t.view(), nil
}

func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view()
}

func (t *Tracker) view() View {
	v := View{State: t.state, Courses: []course.DashboardCourse{}}
	if t.loadErr != nil {
		v.Error = apperrors.As(t.loadErr).Message()
	}
	if t.dash == nil {
		return v
	}
	v.Active = t.dash.IsActive
	if t.dash.IsActive {
		v.Courses = cloneCourses(t.dash.Courses)
	}
	return v
}

func (t *Tracker) reapplyPending() {
	for key, p := range t.inflight {
		p.bumped = t.assert(key, p.moduleID)
	}
}

// reapplySettled reasserts confirmed completions onto a load that may predate
// them. A load issued after the confirmation is authoritative and retires them.
func (t *Tracker) reapplySettled(seq uint64) {
	for key, s := range t.settled {
		if seq > s.through {
			delete(t.settled, key)
			continue
		}
		t.assert(key, s.moduleID)
	}
}

// assert sets the completed flag for key in the loaded dashboard. It reports
// whether the module's completed count was bumped.
func (t *Tracker) assert(key entityKey, moduleID uint) bool {
	switch key.kind {
	case entityContent:
		if m, c := t.findContent(key.course, moduleID, key.id); c != nil && !c.Completed {
			c.Completed = true
			return bump(&m.Module, 1)
		}
	case entityModule:
		if m := t.findModule(key.course, key.id); m != nil {
			m.Completed = true
		}
	}
	return false
}

// settle moves a confirmed mark out of flight. Caller holds t.mu.
func (t *Tracker) settle(key entityKey, moduleID uint) {
	delete(t.inflight, key)
	t.settled[key] = confirmedMark{moduleID: moduleID, through: t.loadSeq}
}

// MarkContentComplete marks one content item done. A call for content that is
// already complete locally, or whose completion is still in flight, does
// nothing.
func (t *Tracker) MarkContentComplete(ctx context.Context, courseID, moduleID, contentID uint) error {
	key := entityKey{kind: entityContent, course: courseID, id: contentID}

	t.mu.Lock()
	if _, busy := t.inflight[key]; busy {
		t.mu.Unlock()
		return nil
	}
	p := &pending{moduleID: moduleID}
	m, c := t.findContent(courseID, moduleID, contentID)
	if c != nil {
		if c.Completed {
			t.mu.Unlock()
			return nil
		}
		c.Completed = true
		p.bumped = bump(&m.Module, 1)
	}
	t.inflight[key] = p
	sinks := t.sinksFor(courseID)
	t.mu.Unlock()

	for _, s := range sinks {
		s.MarkContent(moduleID, contentID)
	}

	err := t.backend.CompleteContent(ctx, courseID, contentID)
	if err != nil && !apperrors.IsKind(err, apperrors.KindConflict) {
		t.mu.Lock()
		delete(t.inflight, key)
		if m, c := t.findContent(courseID, moduleID, contentID); c != nil {
			c.Completed = false
			if p.bumped {
				bump(&m.Module, -1)
			}
		}
		sinks = t.sinksFor(courseID)
		t.mu.Unlock()

		for _, s := range sinks {
			s.RevertContent(moduleID, contentID)
		}
		utils.RecordRollback("content")
		t.log.Warn("content completion rolled back", "course_id", courseID, "content_id", contentID, "error", err)
		return err
	}

	t.mu.Lock()
	t.settle(key, moduleID)
	sinks = t.sinksFor(courseID)
	t.mu.Unlock()
	for _, s := range sinks {
		s.ConfirmContent(moduleID, contentID)
	}
	return nil
}

// MarkModuleComplete sets the module's completed flag, with the same
// in-flight and rollback rules as MarkContentComplete.
func (t *Tracker) MarkModuleComplete(ctx context.Context, courseID, moduleID uint) error {
	key := entityKey{kind: entityModule, course: courseID, id: moduleID}

	t.mu.Lock()
	if _, busy := t.inflight[key]; busy {
		t.mu.Unlock()
		return nil
	}
	p := &pending{moduleID: moduleID}
	if m := t.findModule(courseID, moduleID); m != nil {
		if m.Completed {
			t.mu.Unlock()
			return nil
		}
		p.prev = m.Completed
		m.Completed = true
	}
	t.inflight[key] = p
	sinks := t.sinksFor(courseID)
	t.mu.Unlock()

	for _, s := range sinks {
		s.MarkModule(moduleID)
	}

	err := t.backend.CompleteModule(ctx, courseID, moduleID)
	if err != nil && !apperrors.IsKind(err, apperrors.KindConflict) {
		t.mu.Lock()
		delete(t.inflight, key)
		if m := t.findModule(courseID, moduleID); m != nil {
			m.Completed = p.prev
		}
		sinks = t.sinksFor(courseID)
		t.mu.Unlock()

		for _, s := range sinks {
			s.RevertModule(moduleID)
		}
		utils.RecordRollback("module")
		t.log.Warn("module completion rolled back", "course_id", courseID, "module_id", moduleID, "error", err)
		return err
	}

	t.mu.Lock()
	t.settle(key, moduleID)
	sinks = t.sinksFor(courseID)
	t.mu.Unlock()
	for _, s := range sinks {
		s.ConfirmModule(moduleID)
	}
	return nil
}

// InFlight reports whether a completion for the content is awaiting the backend
func (t *Tracker) InFlight(courseID, contentID uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inflight[entityKey{kind: entityContent, course: courseID, id: contentID}]
	return ok
}

// ComputeModuleProgressPercent is floor(completed*100/total), 0 for an empty
// module, never above 100.
func ComputeModuleProgressPercent(m course.Module) int {
	if m.TotalContentCount <= 0 || m.CompletedContentCount <= 0 {
		return 0
	}
	pct := m.CompletedContentCount * 100 / m.TotalContentCount
	if pct > 100 {
		return 100
	}
	return pct
}

func (t *Tracker) findModule(courseID, moduleID uint) *course.DashboardModule {
	if t.dash == nil {
		return nil
	}
	for ci := range t.dash.Courses {
		c := &t.dash.Courses[ci]
		if c.ID != courseID {
			continue
		}
		for mi := range c.Modules {
			if c.Modules[mi].ID == moduleID {
				return &c.Modules[mi]
			}
		}
	}
	return nil
}

func (t *Tracker) findContent(courseID, moduleID, contentID uint) (*course.DashboardModule, *course.Content) {
	m := t.findModule(courseID, moduleID)
	if m == nil {
		return nil, nil
	}
	for i := range m.Contents {
		if m.Contents[i].ID == contentID {
			return m, &m.Contents[i]
		}
	}
	return m, nil
}

func bump(m *course.Module, delta int) bool {
	before := m.CompletedContentCount
	m.CompletedContentCount += delta
	if m.CompletedContentCount < 0 {
		m.CompletedContentCount = 0
	}
	if m.CompletedContentCount > m.TotalContentCount {
		m.CompletedContentCount = m.TotalContentCount
	}
	return m.CompletedContentCount != before
}

func cloneCourses(in []course.DashboardCourse) []course.DashboardCourse {
	out := make([]course.DashboardCourse, len(in))
	for i, c := range in {
		out[i] = c
		out[i].Modules = make([]course.DashboardModule, len(c.Modules))
		for j, m := range c.Modules {
			out[i].Modules[j] = m
			out[i].Modules[j].Contents = append([]course.Content(nil), m.Contents...)
		}
	}
	return out
}
