package course

// StudentProgress is one student's standing in a tutor's course
type StudentProgress struct {
	StudentID          uint    `json:"student_id" validate:"required"`
	Student            string  `json:"student"`
	Email              string  `json:"email"`
	ProgressPercentage float64 `json:"progress_percentage" validate:"gte=0,lte=100"`
	CompletedModules   int     `json:"completed_modules" validate:"gte=0"`
	TotalModules       int     `json:"total_modules" validate:"gte=0"`
	CompletedContents  int     `json:"completed_contents" validate:"gte=0"`
	TotalContents      int     `json:"total_contents" validate:"gte=0"`
	IsActive           bool    `json:"is_active"`
}

// Dashboard is the learner's full tree, gated by IsActive
type Dashboard struct {
	IsActive bool              `json:"is_active"`
	Courses  []DashboardCourse `json:"courses" validate:"dive"`
}

type DashboardCourse struct {
	Course
	Modules []DashboardModule `json:"modules" validate:"dive"`
}

type DashboardModule struct {
	Module
	Contents []Content `json:"contents" validate:"dive"`
}
