package progress

import (
	"context"
	"learnfront/apiclient"
	"learnfront/apperrors"
	"learnfront/models/course"
	"learnfront/utils"
)

// LoadStudents fetches the progress records of a tutor's course
func (t *Tracker) LoadStudents(ctx context.Context, courseID uint) ([]course.StudentProgress, error) {
	records, err := t.backend.StudentsProgress(ctx, courseID)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.students[courseID] = records
	return cloneStudents(records), nil
}

// Students returns the last loaded records of a course
func (t *Tracker) Students(courseID uint) []course.StudentProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneStudents(t.students[courseID])
}

func (t *Tracker) ActivateStudent(ctx context.Context, courseID, studentID uint) error {
	return t.setStudent(ctx, courseID, studentID, apiclient.ActivateStudent)
}

func (t *Tracker) DeactivateStudent(ctx context.Context, courseID, studentID uint) error {
	return t.setStudent(ctx, courseID, studentID, apiclient.DeactivateStudent)
}

func (t *Tracker) RemoveStudent(ctx context.Context, courseID, studentID uint) error {
	return t.setStudent(ctx, courseID, studentID, apiclient.RemoveStudent)
}

// setStudent changes the record locally, then asks the backend. A refusal
// puts the record back where it was; nothing is retried.
func (t *Tracker) setStudent(ctx context.Context, courseID, studentID uint, action apiclient.StudentAction) error {
	key := entityKey{kind: entityStudent, course: courseID, id: studentID}

	t.mu.Lock()
	if _, busy := t.inflight[key]; busy {
		t.mu.Unlock()
		return apperrors.Validation(string(action)+" student", map[string]string{"student": "Another change for this student is in progress."})
	}
	t.inflight[key] = &pending{}
	records := t.students[courseID]
	idx := indexOfStudent(records, studentID)
	var prev course.StudentProgress
	if idx >= 0 {
		prev = records[idx]
		switch action {
		case apiclient.ActivateStudent:
			records[idx].IsActive = true
		case apiclient.DeactivateStudent:
			records[idx].IsActive = false
		case apiclient.RemoveStudent:
			t.students[courseID] = append(records[:idx:idx], records[idx+1:]...)
		}
	}
	t.mu.Unlock()

	err := t.backend.SetStudentState(ctx, courseID, studentID, action)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, key)
	if err == nil {
		return nil
	}
	if idx >= 0 {
		t.restoreStudent(courseID, idx, prev, action)
	}
	utils.RecordRollback("student")
	t.log.Warn("student change rolled back", "course_id", courseID, "student_id", studentID, "action", string(action), "error", err)
	return err
}

func (t *Tracker) restoreStudent(courseID uint, idx int, prev course.StudentProgress, action apiclient.StudentAction) {
	records := t.students[courseID]
	if action != apiclient.RemoveStudent {
		if i := indexOfStudent(records, prev.StudentID); i >= 0 {
			records[i] = prev
		}
		return
	}
	if indexOfStudent(records, prev.StudentID) >= 0 {
		return
	}
	if idx > len(records) {
		idx = len(records)
	}
	out := make([]course.StudentProgress, 0, len(records)+1)
	out = append(out, records[:idx]...)
	out = append(out, prev)
	out = append(out, records[idx:]...)
	t.students[courseID] = out
}

func indexOfStudent(records []course.StudentProgress, studentID uint) int {
	for i := range records {
		if records[i].StudentID == studentID {
			return i
		}
	}
	return -1
}

func cloneStudents(in []course.StudentProgress) []course.StudentProgress {
	out := make([]course.StudentProgress, len(in))
	copy(out, in)
	return out
}
