// Package authoring is the tutor's workspace: course, module and content
// editing on top of an open course view, plus the test question builder.
package authoring

import (
	"context"
	"learnfront/apperrors"
	"learnfront/contenttype"
	"learnfront/models/course"
	"learnfront/modulestore"
	"learnfront/utils"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type Backend interface {
	CreateContent(ctx context.Context, moduleID uint, tag contenttype.Tag, title string, fields map[string]string, upload *course.Upload) (*course.Content, error)
	UpdateContent(ctx context.Context, contentID uint, title string, data map[string]string, upload *course.Upload) (*course.Content, error)
	DeleteContent(ctx context.Context, contentID uint) error
	AddTest(ctx context.Context, moduleID uint, sub course.TestSubmission) error
	MyCourses(ctx context.Context) ([]course.Course, error)
	Subjects(ctx context.Context) ([]course.Subject, error)
	CreateCourse(ctx context.Context, in course.CourseInput) (*course.Course, error)
	UpdateCourse(ctx context.Context, courseID uint, in course.CourseInput) (*course.Course, error)
	DeleteCourse(ctx context.Context, courseID uint) error
}

// TypeSource yields the loaded content type map
type TypeSource interface {
	Load(ctx context.Context) (*contenttype.Map, error)
}

// ViewLookup finds the open course view holding moduleID, or nil
type ViewLookup func(moduleID uint) *modulestore.Store

type Workspace struct {
	backend Backend
	types   TypeSource
	views   ViewLookup
	log     *utils.Logger

	mu        sync.Mutex
	questions map[uint][]course.Question
}

var check = validator.New()

func New(backend Backend, types TypeSource, views ViewLookup, log *utils.Logger) *Workspace {
	if log == nil {
		log = utils.NewNopLogger()
	}
	if views == nil {
		views = func(uint) *modulestore.Store { return nil }
	}
	return &Workspace{
		backend:   backend,
		types:     types,
		views:     views,
		log:       log,
		questions: make(map[uint][]course.Question),
	}
}

// ============ Modules ============

func (w *Workspace) AddModule(ctx context.Context, view *modulestore.Store, in course.ModuleInput) (*course.Module, error) {
	return view.CreateModule(ctx, in)
}

func (w *Workspace) EditModule(ctx context.Context, view *modulestore.Store, moduleID uint, patch course.ModulePatch) (*course.Module, error) {
	return view.UpdateModule(ctx, moduleID, patch)
}

// DeleteModule also drops the module's unsent test questions
func (w *Workspace) DeleteModule(ctx context.Context, view *modulestore.Store, moduleID uint) error {
	if err := view.DeleteModule(ctx, moduleID); err != nil {
		return err
	}
	w.ClearQuestions(moduleID)
	return nil
}

// ============ Contents ============

// AddContent creates a content item of kind in moduleID. Text and video go
// as form fields, image and file as a multipart file part.
func (w *Workspace) AddContent(ctx context.Context, moduleID uint, kind contenttype.Kind, in course.ContentInput) (*course.Content, error) {
	const op = "add content"
	fields, upload, err := contentFields(op, kind, in)
	if err != nil {
		return nil, err
	}
	tag, err := w.tagFor(ctx, op, kind)
	if err != nil {
		return nil, err
	}
	fields["module"] = strconv.FormatUint(uint64(moduleID), 10)

	c, err := w.backend.CreateContent(ctx, moduleID, tag, strings.TrimSpace(in.Title), fields, upload)
	if err != nil {
		return nil, err
	}
	if view := w.views(moduleID); view != nil {
		view.ReplaceContent(*c)
	}
	w.log.Info("content added", "module_id", moduleID, "content_id", c.ID, "kind", kind.String())
	return c, nil
}

// EditContent replaces the data of an existing content item of kind
func (w *Workspace) EditContent(ctx context.Context, moduleID, contentID uint, kind contenttype.Kind, in course.ContentInput) (*course.Content, error) {
	const op = "edit content"
	data, upload, err := contentFields(op, kind, in)
	if err != nil {
		return nil, err
	}
	c, err := w.backend.UpdateContent(ctx, contentID, strings.TrimSpace(in.Title), data, upload)
	if err != nil {
		return nil, err
	}
	if c.ModuleID == 0 {
		c.ModuleID = moduleID
	}
	if view := w.views(moduleID); view != nil {
		view.ReplaceContent(*c)
	}
	return c, nil
}

func (w *Workspace) DeleteContent(ctx context.Context, moduleID, contentID uint) error {
	if err := w.backend.DeleteContent(ctx, contentID); err != nil {
		return err
	}
	if view := w.views(moduleID); view != nil {
		view.RemoveContent(contentID)
	}
	return nil
}

func (w *Workspace) tagFor(ctx context.Context, op string, kind contenttype.Kind) (contenttype.Tag, error) {
	m, err := w.types.Load(ctx)
	if err != nil {
		return "", err
	}
	tag, ok := m.TagFor(kind)
	if !ok {
		return "", apperrors.Validation(op, map[string]string{"content_type": "This content type is not available!"})
	}
	return tag, nil
}

func contentFields(op string, kind contenttype.Kind, in course.ContentInput) (map[string]string, *course.Upload, error) {
	errs := make(map[string]string)
	fields := make(map[string]string)
	var upload *course.Upload

	switch kind {
	case contenttype.KindText:
		if strings.TrimSpace(in.Text) == "" {
			errs["content"] = "Text content is required!"
		}
		fields["content"] = in.Text
	case contenttype.KindVideo:
		url := strings.TrimSpace(in.URL)
		if url == "" {
			errs["url"] = "Video URL is required!"
		} else if check.Var(url, "url") != nil {
			errs["url"] = "Invalid video URL!"
		}
		fields["url"] = url
	case contenttype.KindImage, contenttype.KindFile:
		switch {
		case in.Upload == nil || len(in.Upload.Data) == 0:
			errs["file"] = "A file is required!"
		case kind == contenttype.KindImage && !in.Upload.IsImage():
			errs["file"] = "The file must be an image!"
		}
		upload = in.Upload
	default:
		errs["content_type"] = "Choose a content type!"
	}

	if len(errs) > 0 {
		return nil, nil, apperrors.Validation(op, errs)
	}
	return fields, upload, nil
}

// ============ Courses ============

func (w *Workspace) MyCourses(ctx context.Context) ([]course.Course, error) {
	courses, err := w.backend.MyCourses(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return courses, nil
}

func (w *Workspace) Subjects(ctx context.Context) ([]course.Subject, error) {
	subjects, err := w.backend.Subjects(ctx)
	if err != nil {
		return nil, err
	}
	if subjects == nil {
		subjects = []course.Subject{}
	}
	return subjects, nil
}

func (w *Workspace) CreateCourse(ctx context.Context, in course.CourseInput) (*course.Course, error) {
	in, err := checkCourse("create course", in, true)
	if err != nil {
		return nil, err
	}
	return w.backend.CreateCourse(ctx, in)
}

func (w *Workspace) UpdateCourse(ctx context.Context, courseID uint, in course.CourseInput) (*course.Course, error) {
	in, err := checkCourse("update course", in, false)
	if err != nil {
		return nil, err
	}
	return w.backend.UpdateCourse(ctx, courseID, in)
}

func (w *Workspace) DeleteCourse(ctx context.Context, courseID uint) error {
	return w.backend.DeleteCourse(ctx, courseID)
}

func checkCourse(op string, in course.CourseInput, create bool) (course.CourseInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Overview = strings.TrimSpace(in.Overview)
	in.SubjectTitle = strings.TrimSpace(in.SubjectTitle)
	if in.Subject != nil {
		in.SubjectTitle = ""
	}

	errs := make(map[string]string)
	if create && in.Title == "" {
		errs["title"] = "Title is required!"
	}
	switch {
	case in.Subject != nil && *in.Subject == 0:
		errs["subject"] = "Invalid subject ID!"
	case create && in.Subject == nil && in.SubjectTitle == "":
		errs["subject"] = "Choose a subject or name a new one!"
	}
	if in.Cover != nil && !in.Cover.IsImage() {
		errs["image"] = "The cover must be an image!"
	}
	if len(errs) > 0 {
		return in, apperrors.Validation(op, errs)
	}
	return in, nil
}
