// Package catalog is the public, read-only course listing.
package catalog

import (
	"context"
	"learnfront/apperrors"
	"learnfront/models/course"
	"sort"
)

type Backend interface {
	ListCourses(ctx context.Context) ([]course.Course, error)
	GetCourse(ctx context.Context, courseID uint) (*course.CourseDetail, error)
}

type Catalog struct {
	backend Backend
}

func New(backend Backend) *Catalog {
	return &Catalog{backend: backend}
}

func (c *Catalog) ListCourses(ctx context.Context) ([]course.Course, error) {
	courses, err := c.backend.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return courses, nil
}

// GetCourseDetail returns the course with its modules in display order
func (c *Catalog) GetCourseDetail(ctx context.Context, courseID uint) (*course.CourseDetail, error) {
	if courseID == 0 {
		return nil, apperrors.Validation("get course", map[string]string{"id": "Invalid Course ID!"})
	}
	detail, err := c.backend.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if detail.Modules == nil {
		detail.Modules = []course.Module{}
	}
	sort.SliceStable(detail.Modules, func(i, j int) bool {
		if detail.Modules[i].Order != detail.Modules[j].Order {
			return detail.Modules[i].Order < detail.Modules[j].Order
		}
		return detail.Modules[i].ID < detail.Modules[j].ID
	})
	return detail, nil
}
