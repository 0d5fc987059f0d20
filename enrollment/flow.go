// Package enrollment validates a prospective student's profile and enrolls
// them in a course in one step.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"learnfront/apperrors"
	"learnfront/models/course"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/now"
)

type Backend interface {
	Enroll(ctx context.Context, in course.EnrollmentRequest) (*course.EnrollmentResult, error)
}

type Flow struct {
	backend  Backend
	validate *validator.Validate
	clock    func() time.Time
}

func NewFlow(backend Backend) *Flow {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Flow{backend: backend, validate: v, clock: time.Now}
}

// Validate checks the form without contacting the backend and returns the
// normalized copy that would be sent.
func (f *Flow) Validate(form course.ProfileForm) (course.ProfileForm, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Surname = strings.TrimSpace(form.Surname)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))
	form.PhoneNumber = strings.TrimSpace(form.PhoneNumber)
	form.Gender = strings.ToLower(strings.TrimSpace(form.Gender))
	form.Address = strings.TrimSpace(form.Address)
	form.DateOfBirth = strings.TrimSpace(form.DateOfBirth)

	errs := make(map[string]string)
	if err := f.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return form, apperrors.Validation("enroll", map[string]string{"form": err.Error()})
		}
		for _, fe := range verrs {
			errs[fe.Field()] = message(fe)
		}
	}

	if form.DateOfBirth != "" {
		dob, err := now.New(f.clock()).Parse(form.DateOfBirth)
		switch {
		case err != nil:
			errs["date_of_birth"] = "Invalid date of birth!"
		case !dob.Before(now.With(f.clock()).BeginningOfDay()):
			errs["date_of_birth"] = "Date of birth must be in the past!"
		default:
			form.DateOfBirth = dob.Format("2006-01-02")
		}
	}

	if len(errs) > 0 {
		return form, apperrors.Validation("enroll", errs)
	}
	return form, nil
}

// Submit enrolls the student in courseID. The backend's own refusal text is
// returned unchanged in the error.
func (f *Flow) Submit(ctx context.Context, courseID uint, form course.ProfileForm) (*course.EnrollmentResult, error) {
	if courseID == 0 {
		return nil, apperrors.Validation("enroll", map[string]string{"course_id": "Invalid Course ID!"})
	}
	form, err := f.Validate(form)
	if err != nil {
		return nil, err
	}
	return f.backend.Enroll(ctx, course.EnrollmentRequest{ProfileForm: form, CourseID: courseID})
}

func message(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	switch fe.Tag() {
	case "required":
		return label + " is required!"
	case "email":
		return "Invalid email format!"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long!", label, fe.Param())
	default:
		return "Invalid " + strings.ToLower(label) + "!"
	}
}
