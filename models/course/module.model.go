package course

// Module represents a section/module within a course
type Module struct {
	ID                    uint   `json:"id" validate:"required"`
	CourseID              uint   `json:"course,omitempty"`
	Title                 string `json:"title" validate:"required"`
	Description           string `json:"description"`
	Order                 int    `json:"order" validate:"gte=0"`
	Completed             bool   `json:"completed"`
	CompletedContentCount int    `json:"completed_content_count" validate:"gte=0,ltefield=TotalContentCount"`
	TotalContentCount     int    `json:"total_content_count" validate:"gte=0"`
}

// ModuleInput is the body for module creation
type ModuleInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// ModulePatch carries only the fields being changed
type ModulePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

