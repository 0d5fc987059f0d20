package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"learnfront/apperrors"
	"learnfront/models/course"
	"net/http"
	"strconv"
	"strings"
)

// ListCourses is the public catalog
func (c *Client) ListCourses(ctx context.Context) ([]course.Course, error) {
	var out []course.Course
	if err := c.getJSON(ctx, "list courses", authNone, "/courses/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCourse(ctx context.Context, courseID uint) (*course.CourseDetail, error) {
	var out course.CourseDetail
	if err := c.getJSON(ctx, "get course", authOptional, fmt.Sprintf("/courses/%d/", courseID), &out); err != nil {
		return nil, err
	}
	if out.ID != courseID {
		return nil, apperrors.Malformedf("get course", "asked for course %d, got %d", courseID, out.ID)
	}
	return &out, nil
}

// MyCourses lists the courses owned by the authenticated tutor
func (c *Client) MyCourses(ctx context.Context) ([]course.Course, error) {
	var out []course.Course
	if err := c.getJSON(ctx, "list tutor courses", authRequired, "/courses/user/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Subjects lists the subjects a new course can be filed under
func (c *Client) Subjects(ctx context.Context) ([]course.Subject, error) {
	var out []course.Subject
	if err := c.getJSON(ctx, "list subjects", authNone, "/subjects/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCourse(ctx context.Context, in course.CourseInput) (*course.Course, error) {
	const op = "create course"
	var out course.Course
	if err := c.sendCourseForm(ctx, op, http.MethodPost, "/courses/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCourse sends only the non-empty fields of in
func (c *Client) UpdateCourse(ctx context.Context, courseID uint, in course.CourseInput) (*course.Course, error) {
	const op = "update course"
	var out course.Course
	if err := c.sendCourseForm(ctx, op, http.MethodPatch, fmt.Sprintf("/courses/%d/", courseID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCourse(ctx context.Context, courseID uint) error {
	req, err := c.newRequest(ctx, "delete course", authRequired)
	if err != nil {
		return err
	}
	return c.send("delete course", req, http.MethodDelete, fmt.Sprintf("/courses/%d/", courseID), nil)
}

func (c *Client) sendCourseForm(ctx context.Context, op, method, path string, in course.CourseInput, out *course.Course) error {
	req, err := c.newRequest(ctx, op, authRequired)
	if err != nil {
		return err
	}

	fields := map[string]string{}
	for k, v := range map[string]string{"title": in.Title, "overview": in.Overview} {
		if v = strings.TrimSpace(v); v != "" {
			fields[k] = v
		}
	}
	if in.Subject != nil {
		fields["subject"] = strconv.FormatUint(uint64(*in.Subject), 10)
	} else if title := strings.TrimSpace(in.SubjectTitle); title != "" {
		fields["subject_title"] = title
	}
	req.SetMultipartFormData(fields)
	if in.Cover != nil {
		req.SetMultipartField("image", in.Cover.Filename, in.Cover.ContentType, bytes.NewReader(in.Cover.Data))
	}
	return c.send(op, req, method, path, out)
}
