package modulestore

import "learnfront/models/course"

// A mark is an optimistic completion the backend has not yet confirmed, or has
// confirmed after some fetches were already in flight. Fetch results whose
// generation is not past trustAfter may predate the change, so the mark is
// reasserted on them.
type contentMark struct {
	moduleID   uint
	pending    bool
	trustAfter uint64
	bumped     bool // the module counter was incremented for this mark
}

type moduleMark struct {
	pending    bool
	trustAfter uint64
	prev       bool
}

type overlays struct {
	contents map[uint]*contentMark
	modules  map[uint]*moduleMark
}

func newOverlays() overlays {
	return overlays{
		contents: make(map[uint]*contentMark),
		modules:  make(map[uint]*moduleMark),
	}
}

func trusted(pending bool, trustAfter, gen uint64) bool {
	return !pending && gen > trustAfter
}

func (o overlays) dropContent(contentID uint) {
	delete(o.contents, contentID)
}

func (o overlays) dropModule(moduleID uint) {
	delete(o.modules, moduleID)
	for id, m := range o.contents {
		if m.moduleID == moduleID {
			delete(o.contents, id)
		}
	}
}

// MarkContent flips the content's completed flag and bumps its module's
// counter. A second mark for the same content is a no-op.
func (s *Store) MarkContent(moduleID, contentID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.overlays.contents[contentID]; ok {
		return
	}
	mark := &contentMark{moduleID: moduleID, pending: true}
	s.overlays.contents[contentID] = mark

	already := false
	if c := s.findContent(contentID); c != nil {
		already = c.Completed
		c.Completed = true
	}
	if !already {
		mark.bumped = s.bumpCompleted(moduleID, 1)
	}
}

func (s *Store) ConfirmContent(moduleID, contentID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mark, ok := s.overlays.contents[contentID]; ok {
		mark.pending = false
		mark.trustAfter = s.gen
	}
}

// RevertContent undoes MarkContent after the backend refused it
func (s *Store) RevertContent(moduleID, contentID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mark, ok := s.overlays.contents[contentID]
	if !ok {
		return
	}
	delete(s.overlays.contents, contentID)
	if c := s.findContent(contentID); c != nil {
		c.Completed = false
	}
	if mark.bumped {
		s.bumpCompleted(mark.moduleID, -1)
	}
}

func (s *Store) MarkModule(moduleID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.overlays.modules[moduleID]; ok {
		return
	}
	mark := &moduleMark{pending: true}
	if i := s.indexOf(moduleID); i >= 0 {
		mark.prev = s.modules[i].Completed
		s.modules[i].Completed = true
	}
	s.overlays.modules[moduleID] = mark
}

func (s *Store) ConfirmModule(moduleID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mark, ok := s.overlays.modules[moduleID]; ok {
		mark.pending = false
		mark.trustAfter = s.gen
	}
}

func (s *Store) RevertModule(moduleID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mark, ok := s.overlays.modules[moduleID]
	if !ok {
		return
	}
	delete(s.overlays.modules, moduleID)
	if i := s.indexOf(moduleID); i >= 0 {
		s.modules[i].Completed = mark.prev
	}
}

// reassertModules runs on a module list fetched at gen, with s.mu held
func (s *Store) reassertModules(gen uint64) {
	for id, mark := range s.overlays.contents {
		if trusted(mark.pending, mark.trustAfter, gen) {
			delete(s.overlays.contents, id)
			continue
		}
		mark.bumped = s.bumpCompleted(mark.moduleID, 1)
	}
	for id, mark := range s.overlays.modules {
		if trusted(mark.pending, mark.trustAfter, gen) {
			delete(s.overlays.modules, id)
			continue
		}
		if i := s.indexOf(id); i >= 0 {
			mark.prev = s.modules[i].Completed
			s.modules[i].Completed = true
		}
	}
}

// reassertContents runs on a content list fetched at gen, with s.mu held
func (s *Store) reassertContents(gen uint64) {
	for id, mark := range s.overlays.contents {
		if trusted(mark.pending, mark.trustAfter, gen) {
			continue
		}
		if c := s.findContent(id); c != nil {
			c.Completed = true
		}
	}
}

func (s *Store) findContent(contentID uint) *course.Content {
	for i := range s.contents {
		if s.contents[i].ID == contentID {
			return &s.contents[i]
		}
	}
	return nil
}

// bumpCompleted moves a module's completed counter by delta within
// [0, total] and reports whether it changed.
func (s *Store) bumpCompleted(moduleID uint, delta int) bool {
	i := s.indexOf(moduleID)
	if i < 0 {
		return false
	}
	m := &s.modules[i]
	before := m.CompletedContentCount
	m.CompletedContentCount += delta
	clampCounters(m)
	return m.CompletedContentCount != before
}
