package apiclient

import (
	"context"
	"fmt"
	"learnfront/apperrors"
	"learnfront/models/course"
	"net/http"
)

// StudentAction is the tutor's enrollment gate operation
type StudentAction string

const (
	ActivateStudent   StudentAction = "activate"
	DeactivateStudent StudentAction = "deactivate"
	RemoveStudent     StudentAction = "remove"
)

// Dashboard fetches the learner's tree. The token travels in the body as well
// as the header because the dashboard endpoint reads it from there.
func (c *Client) Dashboard(ctx context.Context) (*course.Dashboard, error) {
	var out course.Dashboard
	body := map[string]string{"token": c.token}
	if err := c.sendJSON(ctx, "dashboard", authRequired, http.MethodPost, "/students/dashboard/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CompleteContent(ctx context.Context, courseID, contentID uint) error {
	path := fmt.Sprintf("/courses/%d/content/%d/complete/", courseID, contentID)
	return c.sendJSON(ctx, "complete content", authRequired, http.MethodPost, path, nil, nil)
}

func (c *Client) CompleteModule(ctx context.Context, courseID, moduleID uint) error {
	path := fmt.Sprintf("/courses/%d/module/%d/complete/", courseID, moduleID)
	return c.sendJSON(ctx, "complete module", authRequired, http.MethodPost, path, nil, nil)
}

func (c *Client) StudentsProgress(ctx context.Context, courseID uint) ([]course.StudentProgress, error) {
	var out []course.StudentProgress
	path := fmt.Sprintf("/courses/%d/students-progress/", courseID)
	if err := c.getJSON(ctx, "students progress", authRequired, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetStudentState(ctx context.Context, courseID, studentID uint, action StudentAction) error {
	switch action {
	case ActivateStudent, DeactivateStudent, RemoveStudent:
	default:
		return apperrors.Validation(string(action)+" student", map[string]string{"action": "Unknown student action!"})
	}
	op := string(action) + " student"
	path := fmt.Sprintf("/courses/%d/%s-student/%d/", courseID, action, studentID)
	return c.sendJSON(ctx, op, authRequired, http.MethodPost, path, nil, nil)
}

// Enroll creates the student account, enrolls it and returns its session token
func (c *Client) Enroll(ctx context.Context, in course.EnrollmentRequest) (*course.EnrollmentResult, error) {
	var out course.EnrollmentResult
	if err := c.sendJSON(ctx, "enroll", authNone, http.MethodPost, "/students/enroll/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
