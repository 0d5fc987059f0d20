package enrollment

import (
	"context"
	"errors"
	"learnfront/apperrors"
	"learnfront/models/course"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	got    *course.EnrollmentRequest
	result *course.EnrollmentResult
	err    error
}

func (f *fakeBackend) Enroll(ctx context.Context, in course.EnrollmentRequest) (*course.EnrollmentResult, error) {
	f.got = &in
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func fixedFlow(b Backend) *Flow {
	f := NewFlow(b)
	f.clock = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func validForm() course.ProfileForm {
	return course.ProfileForm{
		Name:        " Ada ",
		Surname:     "Lovelace",
		Email:       "Ada@Example.com",
		Gender:      "Female",
		DateOfBirth: "1990-12-10",
	}
}

func TestSubmitSendsNormalizedForm(t *testing.T) {
	b := &fakeBackend{result: &course.EnrollmentResult{Token: "tok", Role: "student"}}
	res, err := fixedFlow(b).Submit(context.Background(), 3, validForm())
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)

	require.NotNil(t, b.got)
	assert.Equal(t, uint(3), b.got.CourseID)
	assert.Equal(t, "Ada", b.got.Name)
	assert.Equal(t, "ada@example.com", b.got.Email)
	assert.Equal(t, "female", b.got.Gender)
	assert.Equal(t, "1990-12-10", b.got.DateOfBirth)
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*course.ProfileForm)
		field string
	}{
		{"missing name", func(f *course.ProfileForm) { f.Name = "  " }, "name"},
		{"missing surname", func(f *course.ProfileForm) { f.Surname = "" }, "surname"},
		{"bad email", func(f *course.ProfileForm) { f.Email = "nope" }, "email"},
		{"unknown gender", func(f *course.ProfileForm) { f.Gender = "robot" }, "gender"},
		{"unparseable birth date", func(f *course.ProfileForm) { f.DateOfBirth = "someday" }, "date_of_birth"},
		{"birth date in the future", func(f *course.ProfileForm) { f.DateOfBirth = "2030-01-01" }, "date_of_birth"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &fakeBackend{}
			form := validForm()
			tc.edit(&form)

			_, err := fixedFlow(b).Submit(context.Background(), 3, form)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
			assert.Contains(t, apperrors.As(err).Fields, tc.field)
			assert.Nil(t, b.got, "nothing is sent for an invalid form")
		})
	}
}

func TestValidateMessages(t *testing.T) {
	form := validForm()
	form.Email = ""
	_, err := fixedFlow(&fakeBackend{}).Validate(form)
	assert.Equal(t, "Email is required!", apperrors.As(err).Fields["email"])
}

func TestSubmitKeepsServerDetail(t *testing.T) {
	b := &fakeBackend{err: apperrors.FromStatus("enroll", 400, "A user with this email already exists.", nil)}
	_, err := fixedFlow(b).Submit(context.Background(), 3, validForm())
	require.Error(t, err)
	assert.Equal(t, "A user with this email already exists.", apperrors.As(err).Message())
}

func TestSubmitRequiresCourse(t *testing.T) {
	b := &fakeBackend{}
	_, err := fixedFlow(b).Submit(context.Background(), 0, validForm())
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Nil(t, b.got)
}
