// Package renderer turns content items into display models. Everything here
// is pure: no network, no shared state.
package renderer

import (
	"learnfront/contenttype"
	"learnfront/models/course"
	"strings"
)

type DisplayKind string

const (
	DisplayText       DisplayKind = "text"
	DisplayImage      DisplayKind = "image"
	DisplayVideoEmbed DisplayKind = "video_embed"
	DisplayVideo      DisplayKind = "video"
	DisplayFile       DisplayKind = "file"
	DisplayLoading    DisplayKind = "loading"
	DisplayUnknown    DisplayKind = "unknown"
	DisplayInvalid    DisplayKind = "invalid"
)

// User-facing placeholder text
const (
	MessageLoading = "Loading content..."
	MessageUnknown = "Unknown content type."
	MessageInvalid = "This content could not be displayed."
)

// Display is what the browser draws for one content item.
// Text is shown verbatim and must not be interpreted as markup.
type Display struct {
	ContentID uint        `json:"content_id"`
	Kind      DisplayKind `json:"kind"`
	Title     string      `json:"title,omitempty"`
	Text      string      `json:"text,omitempty"`
	URL       string      `json:"url,omitempty"`
	Alt       string      `json:"alt,omitempty"`
	Label     string      `json:"label,omitempty"`
	Message   string      `json:"message,omitempty"`
	Completed bool        `json:"completed"`
}

// Options carries the base URL that relative media paths are resolved against
type Options struct {
	MediaBase string
}

// Render dispatches on the kind the resolver gives for the item's tag.
func Render(c course.Content, r contenttype.Resolver, opts Options) Display {
	d := Display{ContentID: c.ID, Title: c.Title, Completed: c.Completed}

	if r == nil || !r.Loaded() {
		d.Kind = DisplayLoading
		d.Message = MessageLoading
		return d
	}

	kind := r.Resolve(c.ContentType)
	if kind == contenttype.KindUnknown {
		d.Kind = DisplayUnknown
		d.Message = MessageUnknown
		return d
	}

	payload, err := Decode(kind, c.ContentData)
	if err != nil {
		d.Kind = DisplayInvalid
		d.Message = MessageInvalid
		return d
	}

	switch p := payload.(type) {
	case TextPayload:
		d.Kind = DisplayText
		d.Text = *p.Content
	case ImagePayload:
		d.Kind = DisplayImage
		d.URL = AbsoluteURL(opts.MediaBase, p.File)
		d.Alt = p.Title
		d.Title = firstNonEmpty(p.Title, c.Title)
	case VideoPayload:
		d.Title = firstNonEmpty(p.Title, c.Title)
		if IsYouTube(p.URL) {
			d.Kind = DisplayVideoEmbed
			d.URL = EmbedURL(p.URL)
		} else {
			d.Kind = DisplayVideo
			d.URL = p.URL
		}
	case FilePayload:
		d.Kind = DisplayFile
		d.URL = AbsoluteURL(opts.MediaBase, p.File)
		d.Label = firstNonEmpty(p.Title, c.Title, "Download file")
		d.Title = firstNonEmpty(p.Title, c.Title)
	}
	return d
}

// RenderAll renders items in order
func RenderAll(items []course.Content, r contenttype.Resolver, opts Options) []Display {
	out := make([]Display, 0, len(items))
	for _, c := range items {
		out = append(out, Render(c, r, opts))
	}
	return out
}

// IsYouTube is a plain substring check; the URL is never parsed
func IsYouTube(url string) bool {
	return strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")
}

// EmbedURL rewrites a YouTube watch or short link into its embed form. Other
// URLs, and malformed ones, come back unchanged.
func EmbedURL(url string) string {
	if !IsYouTube(url) {
		return url
	}
	url = strings.Replace(url, "watch?v=", "embed/", 1)
	url = strings.Replace(url, "youtu.be/", "www.youtube.com/embed/", 1)
	return url
}

// AbsoluteURL prefixes base to a relative media path. Paths that already carry
// a scheme or are protocol-relative are returned as is.
func AbsoluteURL(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(path, "//") {
		return path
	}
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
