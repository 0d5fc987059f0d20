package course

import "strings"

// Course is a published course as the backend describes it
type Course struct {
	ID       uint    `json:"id" validate:"required"`
	Title    string  `json:"title" validate:"required"`
	Slug     string  `json:"slug,omitempty"`
	Overview string  `json:"overview"`
	Image    string  `json:"image,omitempty"`
	Progress float64 `json:"progress" validate:"gte=0,lte=100"` // learner-relative, server computed
	Created  string  `json:"created,omitempty"`
}

// CourseDetail is a course with its module outline
type CourseDetail struct {
	Course
	Modules []Module `json:"modules" validate:"dive"`
}

// Subject groups courses. A new course files under an existing subject or
// names a new one.
type Subject struct {
	ID    uint   `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
}

// CourseInput is the tutor's create/edit form for a course. Subject wins over
// SubjectTitle when both are set.
type CourseInput struct {
	Title        string
	Overview     string
	Subject      *uint
	SubjectTitle string
	Cover        *Upload
}

// Upload is a binary attachment forwarded to the backend as a multipart part
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IsImage reports whether the sniffed type is an image
func (u *Upload) IsImage() bool {
	return strings.HasPrefix(u.ContentType, "image/")
}
