package authoring

import (
	"context"
	"errors"
	"learnfront/apperrors"
	"learnfront/models/course"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() TestDraft {
	return TestDraft{
		Name:       "Week 1",
		StartTime:  "2026-05-01 09:00",
		EndTime:    "2026-05-02 11:00",
		TotalMarks: 10,
	}
}

func TestAddTestQuestionAccumulates(t *testing.T) {
	w := New(newFake(), nil, nil, nil)

	qs, err := w.AddTestQuestion(4, course.Question{Text: " Pick one ", Type: course.QuestionMultipleChoice, Options: []string{"a", " ", "b"}})
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Pick one", qs[0].Text)
	assert.Equal(t, []string{"a", "b"}, qs[0].Options)

	qs, err = w.AddTestQuestion(4, course.Question{Text: "Explain", Type: course.QuestionText, Options: []string{"ignored"}})
	require.NoError(t, err)
	assert.Len(t, qs, 2)
	assert.Nil(t, qs[1].Options)

	assert.Empty(t, w.Questions(5), "lists are per module")
}

func TestAddTestQuestionRejects(t *testing.T) {
	cases := []struct {
		name  string
		q     course.Question
		field string
	}{
		{"blank text", course.Question{Text: " ", Type: course.QuestionText}, "question"},
		{"no options", course.Question{Text: "Q", Type: course.QuestionMultipleChoice, Options: []string{"", " "}}, "options"},
		{"unknown type", course.Question{Text: "Q", Type: "essay"}, "type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := New(newFake(), nil, nil, nil)
			_, err := w.AddTestQuestion(1, tc.q)
			require.Error(t, err)
			assert.Contains(t, apperrors.As(err).Fields, tc.field)
			assert.Empty(t, w.Questions(1))
		})
	}
}

func TestRemoveQuestion(t *testing.T) {
	w := New(newFake(), nil, nil, nil)
	for _, text := range []string{"one", "two", "three"} {
		_, err := w.AddTestQuestion(1, course.Question{Text: text, Type: course.QuestionText})
		require.NoError(t, err)
	}

	qs, err := w.RemoveQuestion(1, 1)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "three", qs[1].Text)

	_, err = w.RemoveQuestion(1, 5)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestSubmitTest(t *testing.T) {
	b := newFake()
	w := New(b, nil, nil, nil)
	_, err := w.AddTestQuestion(4, course.Question{Text: "Q", Type: course.QuestionText})
	require.NoError(t, err)

	require.NoError(t, w.SubmitTest(context.Background(), 4, validDraft()))
	require.Len(t, b.tests, 1)
	sub := b.tests[0]
	assert.Equal(t, "Week 1", sub.Name)
	assert.Len(t, sub.Questions, 1)
	assert.Equal(t, 11, sub.EndTime.Hour())
	assert.True(t, sub.EndTime.After(sub.StartTime))
	assert.Empty(t, w.Questions(4), "cleared after the backend accepts")
}

func TestSubmitTestAcceptsRFC3339(t *testing.T) {
	b := newFake()
	w := New(b, nil, nil, nil)
	_, err := w.AddTestQuestion(4, course.Question{Text: "Q", Type: course.QuestionText})
	require.NoError(t, err)

	d := TestDraft{Name: "Final", StartTime: "2026-06-01T09:00:00Z", EndTime: "2026-06-01T10:30:00+00:00", TotalMarks: 50}
	require.NoError(t, w.SubmitTest(context.Background(), 4, d))
	assert.Equal(t, 30, b.tests[0].EndTime.Minute())
}

func TestSubmitTestKeepsQuestionsOnFailure(t *testing.T) {
	b := newFake()
	w := New(b, nil, nil, nil)
	_, err := w.AddTestQuestion(4, course.Question{Text: "Q", Type: course.QuestionText})
	require.NoError(t, err)

	b.err = apperrors.FromStatus("add test", 400, "Module has a test already.", nil)
	err = w.SubmitTest(context.Background(), 4, validDraft())
	assert.Equal(t, "Module has a test already.", apperrors.As(err).Message())
	assert.Len(t, w.Questions(4), 1)
}

func TestSubmitTestValidation(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*TestDraft)
		field string
	}{
		{"name", func(d *TestDraft) { d.Name = "" }, "name"},
		{"marks", func(d *TestDraft) { d.TotalMarks = 0 }, "total_marks"},
		{"start", func(d *TestDraft) { d.StartTime = "soon" }, "start_time"},
		{"end before start", func(d *TestDraft) { d.EndTime = "2026-04-30 00:00" }, "end_time"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newFake()
			w := New(b, nil, nil, nil)
			_, err := w.AddTestQuestion(4, course.Question{Text: "Q", Type: course.QuestionText})
			require.NoError(t, err)

			d := validDraft()
			tc.edit(&d)
			err = w.SubmitTest(context.Background(), 4, d)
			assert.Contains(t, apperrors.As(err).Fields, tc.field)
			assert.Empty(t, b.tests)
		})
	}

	w := New(newFake(), nil, nil, nil)
	err := w.SubmitTest(context.Background(), 4, validDraft())
	assert.Contains(t, apperrors.As(err).Fields, "questions")
}
