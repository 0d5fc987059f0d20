package course

import "time"

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionText           QuestionType = "text"
)

// Question is accumulated locally until the test is submitted
type Question struct {
	Text    string       `json:"question"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
}

// Test belongs to a module
type Test struct {
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	TotalMarks int       `json:"total_marks"`
}

// TestSubmission is the add_test body
type TestSubmission struct {
	Test
	Questions []Question `json:"questions"`
	Token     string     `json:"token,omitempty"`
}
