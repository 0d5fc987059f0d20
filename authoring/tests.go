package authoring

import (
	"context"
	"learnfront/apperrors"
	"learnfront/models/course"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// TestDraft is the tutor's test form. Times are free-form and parsed on submit.
type TestDraft struct {
	Name       string `json:"name"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	TotalMarks int    `json:"total_marks"`
}

// AddTestQuestion appends q to the module's unsent question list and returns
// the list. Multiple choice needs at least one non-blank option; text
// questions carry none.
func (w *Workspace) AddTestQuestion(moduleID uint, q course.Question) ([]course.Question, error) {
	q.Text = strings.TrimSpace(q.Text)
	errs := make(map[string]string)
	if q.Text == "" {
		errs["question"] = "Question text is required!"
	}

	switch q.Type {
	case course.QuestionMultipleChoice:
		opts := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		if len(opts) == 0 {
			errs["options"] = "Add at least one option!"
		}
		q.Options = opts
	case course.QuestionText:
		q.Options = nil
	default:
		errs["type"] = "Type must be multiple_choice or text!"
	}
	if len(errs) > 0 {
		return nil, apperrors.Validation("add question", errs)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.questions[moduleID] = append(w.questions[moduleID], q)
	return cloneQuestions(w.questions[moduleID]), nil
}

func (w *Workspace) Questions(moduleID uint) []course.Question {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneQuestions(w.questions[moduleID])
}

// RemoveQuestion drops the question at index i
func (w *Workspace) RemoveQuestion(moduleID uint, i int) ([]course.Question, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	qs := w.questions[moduleID]
	if i < 0 || i >= len(qs) {
		return nil, apperrors.Validation("remove question", map[string]string{"index": "No such question!"})
	}
	w.questions[moduleID] = append(qs[:i:i], qs[i+1:]...)
	return cloneQuestions(w.questions[moduleID]), nil
}

func (w *Workspace) ClearQuestions(moduleID uint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.questions, moduleID)
}

// SubmitTest sends the draft with the accumulated questions. The questions
// are kept if the backend refuses, and cleared once it accepts.
func (w *Workspace) SubmitTest(ctx context.Context, moduleID uint, draft TestDraft) error {
	const op = "submit test"
	questions := w.Questions(moduleID)

	test, errs := parseDraft(draft)
	if len(questions) == 0 {
		errs["questions"] = "Add at least one question!"
	}
	if len(errs) > 0 {
		return apperrors.Validation(op, errs)
	}

	sub := course.TestSubmission{Test: test, Questions: questions}
	if err := w.backend.AddTest(ctx, moduleID, sub); err != nil {
		return err
	}

	w.mu.Lock()
	// Questions added while the request was in flight stay for the next test.
	if rest := w.questions[moduleID]; len(rest) > len(questions) {
		w.questions[moduleID] = cloneQuestions(rest[len(questions):])
	} else {
		delete(w.questions, moduleID)
	}
	w.mu.Unlock()
	w.log.Info("test submitted", "module_id", moduleID, "questions", len(questions))
	return nil
}

func parseDraft(d TestDraft) (course.Test, map[string]string) {
	errs := make(map[string]string)
	t := course.Test{Name: strings.TrimSpace(d.Name), TotalMarks: d.TotalMarks}
	if t.Name == "" {
		errs["name"] = "Test name is required!"
	}
	if t.TotalMarks <= 0 {
		errs["total_marks"] = "Total marks must be a positive number!"
	}

	var err error
	if t.StartTime, err = parseTime(d.StartTime); err != nil {
		errs["start_time"] = "Invalid start time!"
	}
	if t.EndTime, err = parseTime(d.EndTime); err != nil {
		errs["end_time"] = "Invalid end time!"
	}
	if _, bad := errs["start_time"]; !bad {
		if _, bad := errs["end_time"]; !bad && !t.EndTime.After(t.StartTime) {
			errs["end_time"] = "End time must be after the start time!"
		}
	}
	return t, errs
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperrors.Validation("parse time", nil)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return now.Parse(s)
}

func cloneQuestions(in []course.Question) []course.Question {
	out := make([]course.Question, len(in))
	for i, q := range in {
		out[i] = q
		out[i].Options = append([]string(nil), q.Options...)
	}
	return out
}
