// Package apiclient talks to the learning platform's REST backend. Every
// response is decoded into an explicit schema and checked before it is
// handed to the view-model stores; failures come back as *apperrors.Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"learnfront/apperrors"
	"learnfront/utils"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v4"
)

type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

// Options configures a Client
type Options struct {
	BaseURL    string
	AuthScheme string // "Token" or "Bearer"
	Timeout    time.Duration
	RetryCount int
	Logger     *utils.Logger
}

// Client is bound to at most one session token. WithToken derives a client for
// another session sharing the same connection pool.
type Client struct {
	rc     *resty.Client
	scheme string
	token  string
	log    *utils.Logger
}

var schema = validator.New()

func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	if opts.AuthScheme == "" {
		opts.AuthScheme = "Token"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	if opts.RetryCount > 0 {
		// Only idempotent reads are retried; mutations surface their failure.
		rc.SetRetryCount(opts.RetryCount).
			SetRetryWaitTime(200 * time.Millisecond).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
					return false
				}
				return err != nil || r.StatusCode() >= http.StatusBadGateway
			})
	}

	return &Client{rc: rc, scheme: opts.AuthScheme, log: opts.Logger}
}

// WithToken returns a copy of the client that authenticates as token
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = strings.TrimSpace(token)
	return &cp
}

func (c *Client) Token() string { return c.token }

// CheckToken fails with an auth error when the token is missing or is a JWT
// whose exp has passed. Opaque tokens are only checked for presence.
func (c *Client) CheckToken(op string) error {
	if c.token == "" {
		return apperrors.Auth(op, "Authentication required.")
	}
	if strings.Count(c.token, ".") != 2 {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(c.token, claims); err != nil {
		return nil
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), false) {
		return apperrors.Auth(op, "Session token has expired.")
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, op string, mode authMode) (*resty.Request, error) {
	req := c.rc.R().SetContext(ctx)
	switch mode {
	case authRequired:
		if err := c.CheckToken(op); err != nil {
			return nil, err
		}
		req.SetHeader("Authorization", c.scheme+" "+c.token)
	case authOptional:
		if c.token != "" && c.CheckToken(op) == nil {
			req.SetHeader("Authorization", c.scheme+" "+c.token)
		}
	}
	return req, nil
}

// send executes req and decodes a 2xx body into out when out is non-nil.
func (c *Client) send(op string, req *resty.Request, method, path string, out interface{}) error {
	start := time.Now()
	resp, err := req.Execute(method, path)

	status := 0
	if resp != nil && resp.RawResponse != nil {
		status = resp.StatusCode()
	}
	utils.ObserveBackendRequest(op, status, time.Since(start))

	if err != nil {
		c.log.Warn("backend request failed", "op", op, "method", method, "path", path, "error", err)
		return apperrors.Transient(op, err)
	}

	if status >= 300 {
		detail, fields := extractDetail(resp.Body())
		c.log.Info("backend rejected request", "op", op, "path", path, "status", status, "detail", detail)
		return apperrors.FromStatus(op, status, detail, fields)
	}

	c.log.Debug("backend request", "op", op, "path", path, "status", status, "took", time.Since(start))

	if out == nil {
		return nil
	}
	return decode(op, resp.Body(), out)
}

func (c *Client) getJSON(ctx context.Context, op string, mode authMode, path string, out interface{}) error {
	req, err := c.newRequest(ctx, op, mode)
	if err != nil {
		return err
	}
	return c.send(op, req, http.MethodGet, path, out)
}

func (c *Client) sendJSON(ctx context.Context, op string, mode authMode, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, op, mode)
	if err != nil {
		return err
	}
	if body == nil {
		body = map[string]interface{}{}
	}
	req.SetHeader("Content-Type", "application/json").SetBody(body)
	return c.send(op, req, method, path, out)
}

func decode(op string, body []byte, out interface{}) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return apperrors.Malformedf(op, "empty response body")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Malformed(op, err)
	}
	if err := checkSchema(out); err != nil {
		return apperrors.Malformed(op, err)
	}
	return nil
}

// checkSchema validates structs, and each struct inside slices, against their
// validate tags.
func checkSchema(v interface{}) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return schema.Struct(rv.Interface())
	case reflect.Slice:
		if k := rv.Type().Elem().Kind(); k != reflect.Struct && k != reflect.Ptr {
			return nil
		}
		for i := 0; i < rv.Len(); i++ {
			if err := checkSchema(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

// extractDetail pulls the server's message out of an error body. DRF style
// field errors ({"title": ["This field is required."]}) become the field map.
func extractDetail(body []byte) (string, map[string]string) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", nil
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		text := string(body)
		if len(text) <= 200 && !strings.Contains(text, "<") {
			return text, nil
		}
		return "", nil
	}

	for _, key := range []string{"detail", "error", "message"} {
		if s := firstString(obj[key]); s != "" {
			return s, nil
		}
	}

	fields := make(map[string]string)
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	detail := ""
	for _, k := range keys {
		s := firstString(obj[k])
		if s == "" {
			continue
		}
		if k == "non_field_errors" {
			detail = s
			continue
		}
		fields[k] = s
	}
	if len(fields) == 0 {
		fields = nil
	}
	return detail, fields
}

func firstString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		for _, item := range t {
			if s := firstString(item); s != "" {
				return s
			}
		}
	}
	return ""
}
