// Package notify holds the user-visible notifications of one session.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Redirect  string    `json:"redirect,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Center keeps notifications until they auto-dismiss after ttl
type Center struct {
	ttl time.Duration

	mu     sync.Mutex
	items  map[string]Notification
	timers map[string]*time.Timer
	closed bool
}

func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Center{
		ttl:    ttl,
		items:  make(map[string]Notification),
		timers: make(map[string]*time.Timer),
	}
}

// Push adds a notification and schedules its dismissal. Returns "" once closed.
func (c *Center) Push(level Level, message string) string {
	return c.push(Notification{Level: level, Message: message})
}

// PushRedirect is Push with a navigation hint, used for auth failures
func (c *Center) PushRedirect(level Level, message, redirect string) string {
	return c.push(Notification{Level: level, Message: message, Redirect: redirect})
}

func (c *Center) push(n Notification) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ""
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	c.items[n.ID] = n
	id := n.ID
	c.timers[id] = time.AfterFunc(c.ttl, func() { c.Dismiss(id) })
	return id
}

func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	delete(c.items, id)
}

// List returns live notifications, oldest first
func (c *Center) List() []Notification {
	c.mu.Lock()
	out := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		out = append(out, n)
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Close stops every pending dismissal timer and drops all notifications
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.items = make(map[string]Notification)
	c.closed = true
}
