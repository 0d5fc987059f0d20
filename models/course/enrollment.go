package course

// ProfileForm is the prospective student's details collected before enrollment
type ProfileForm struct {
	Name        string `json:"name" validate:"required,max=100"`
	Surname     string `json:"surname" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	Gender      string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Address     string `json:"address,omitempty" validate:"omitempty,max=255"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// EnrollmentRequest is the create-account-and-enroll body
type EnrollmentRequest struct {
	ProfileForm
	CourseID uint `json:"course_id"`
}

// EnrollmentResult is the session the backend opens for the new student
type EnrollmentResult struct {
	Token  string `json:"token" validate:"required"`
	UserID uint   `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}
