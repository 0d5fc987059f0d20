package renderer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"learnfront/contenttype"

	"github.com/go-playground/validator/v10"
)

// Payload is the decoded content_data of a content item. The concrete type
// always matches the kind it was decoded for.
type Payload interface {
	Kind() contenttype.Kind
}

type TextPayload struct {
	Content *string `json:"content" validate:"required"`
}

type ImagePayload struct {
	File  string `json:"file" validate:"required"`
	Title string `json:"title"`
}

type VideoPayload struct {
	URL   string `json:"url" validate:"required"`
	Title string `json:"title"`
}

type FilePayload struct {
	File  string `json:"file" validate:"required"`
	Title string `json:"title"`
}

func (TextPayload) Kind() contenttype.Kind  { return contenttype.KindText }
func (ImagePayload) Kind() contenttype.Kind { return contenttype.KindImage }
func (VideoPayload) Kind() contenttype.Kind { return contenttype.KindVideo }
func (FilePayload) Kind() contenttype.Kind  { return contenttype.KindFile }

var validate = validator.New()

// Decode parses raw as the payload shape of kind. A payload that does not have
// the fields its kind requires is an error, never a zero value.
func Decode(kind contenttype.Kind, raw json.RawMessage) (Payload, error) {
	raw = unwrapString(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%s content has no content_data", kind)
	}

	var p Payload
	switch kind {
	case contenttype.KindText:
		p = &TextPayload{}
	case contenttype.KindImage:
		p = &ImagePayload{}
	case contenttype.KindVideo:
		p = &VideoPayload{}
	case contenttype.KindFile:
		p = &FilePayload{}
	default:
		return nil, fmt.Errorf("no payload shape for %s content", kind)
	}

	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s content_data: %w", kind, err)
	}
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%s content_data: %w", kind, err)
	}

	switch v := p.(type) {
	case *TextPayload:
		return *v, nil
	case *ImagePayload:
		return *v, nil
	case *VideoPayload:
		return *v, nil
	case *FilePayload:
		return *v, nil
	}
	return p, nil
}

// Some backends serialise content_data as a JSON string holding the object.
func unwrapString(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return raw
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return raw
	}
	inner := bytes.TrimSpace([]byte(s))
	if len(inner) > 0 && inner[0] == '{' {
		return inner
	}
	return raw
}
