package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"learnfront/apperrors"
	"learnfront/contenttype"
	"learnfront/models/course"
	"net/http"
	"strings"
)

// FetchContentTypes reads the kind -> tag map. The backend answers either with
// an object ({"text": 1, ...}) or with a list of {"id": 1, "model": "text"}.
func (c *Client) FetchContentTypes(ctx context.Context) (map[string]contenttype.Tag, error) {
	const op = "get content types"
	var raw json.RawMessage
	req, err := c.newRequest(ctx, op, authOptional)
	if err != nil {
		return nil, err
	}
	if err := c.send(op, req, http.MethodGet, "/get-content-types/", &raw); err != nil {
		return nil, err
	}

	out := make(map[string]contenttype.Tag)
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '{':
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, apperrors.Malformed(op, err)
		}
	case len(trimmed) > 0 && trimmed[0] == '[':
		var rows []struct {
			ID    contenttype.Tag `json:"id"`
			Model string          `json:"model"`
			Name  string          `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, apperrors.Malformed(op, err)
		}
		for _, r := range rows {
			name := r.Model
			if name == "" {
				name = r.Name
			}
			if name != "" && r.ID != "" {
				out[strings.ToLower(name)] = r.ID
			}
		}
	default:
		return nil, apperrors.Malformedf(op, "unexpected content type payload")
	}
	return out, nil
}

func (c *Client) ListContents(ctx context.Context, moduleID uint) ([]course.Content, error) {
	var out []course.Content
	path := fmt.Sprintf("/modules/%d/get_contents/", moduleID)
	body := map[string]interface{}{}
	if c.token != "" {
		body["token"] = c.token
	}
	if err := c.sendJSON(ctx, "list contents", authOptional, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].ModuleID == 0 {
			out[i].ModuleID = moduleID
		}
	}
	return out, nil
}

// CreateContent always posts multipart: fields carry the text/url parts and
// upload, when present, is sent as the "file" part.
func (c *Client) CreateContent(ctx context.Context, moduleID uint, tag contenttype.Tag, title string, fields map[string]string, upload *course.Upload) (*course.Content, error) {
	const op = "create content"
	req, err := c.newRequest(ctx, op, authRequired)
	if err != nil {
		return nil, err
	}

	form := map[string]string{"content_type": string(tag)}
	if title != "" {
		form["title"] = title
	}
	for k, v := range fields {
		form[k] = v
	}
	req.SetMultipartFormData(form)
	if upload != nil {
		req.SetMultipartField("file", upload.Filename, upload.ContentType, bytes.NewReader(upload.Data))
	}

	var out course.Content
	if err := c.send(op, req, http.MethodPost, fmt.Sprintf("/modules/%d/contents/", moduleID), &out); err != nil {
		return nil, err
	}
	if out.ModuleID == 0 {
		out.ModuleID = moduleID
	}
	return &out, nil
}

// UpdateContent replaces a content item's data. With an upload the request is
// multipart, otherwise content_data goes as JSON.
func (c *Client) UpdateContent(ctx context.Context, contentID uint, title string, data map[string]string, upload *course.Upload) (*course.Content, error) {
	const op = "update content"
	path := fmt.Sprintf("/contents/%d/", contentID)
	var out course.Content

	if upload == nil {
		body := map[string]interface{}{"content_data": data}
		if title != "" {
			body["title"] = title
		}
		if err := c.sendJSON(ctx, op, authRequired, http.MethodPut, path, body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	req, err := c.newRequest(ctx, op, authRequired)
	if err != nil {
		return nil, err
	}
	form := map[string]string{}
	for k, v := range data {
		form[k] = v
	}
	if title != "" {
		form["title"] = title
	}
	req.SetMultipartFormData(form)
	req.SetMultipartField("file", upload.Filename, upload.ContentType, bytes.NewReader(upload.Data))
	if err := c.send(op, req, http.MethodPut, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteContent(ctx context.Context, contentID uint) error {
	req, err := c.newRequest(ctx, "delete content", authRequired)
	if err != nil {
		return err
	}
	return c.send("delete content", req, http.MethodDelete, fmt.Sprintf("/contents/%d/", contentID), nil)
}

// AddTest submits a test with its questions
func (c *Client) AddTest(ctx context.Context, moduleID uint, sub course.TestSubmission) error {
	sub.Token = c.token
	path := fmt.Sprintf("/modules/%d/add_test/", moduleID)
	return c.sendJSON(ctx, "add test", authRequired, http.MethodPost, path, sub, nil)
}
