package course

import (
	"encoding/json"
	"learnfront/contenttype"
)

// Content is one learning item inside a module. ContentData is decoded only
// after ContentType has been resolved to a kind.
type Content struct {
	ID          uint            `json:"id" validate:"required"`
	ModuleID    uint            `json:"module,omitempty"`
	ContentType contenttype.Tag `json:"content_type" validate:"required"`
	ContentData json.RawMessage `json:"content_data"`
	Title       string          `json:"title,omitempty"`
	Order       int             `json:"order,omitempty"`
	Completed   bool            `json:"completed"`
}

// ContentInput is what a tutor submits for a new or edited content item.
// Text and URL feed the text and video kinds; Upload feeds image and file.
type ContentInput struct {
	Title  string
	Text   string
	URL    string
	Upload *Upload
}
