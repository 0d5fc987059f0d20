// Package contenttype resolves the backend's opaque content type tags to
// semantic kinds. Tag values are assigned by the backend and may differ
// between deployments, so nothing outside this package compares raw tags.
package contenttype

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindImage
	KindVideo
	KindFile
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindText:    "text",
	KindImage:   "image",
	KindVideo:   "video",
	KindFile:    "file",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// ParseKind maps a kind name to a Kind; anything unrecognised is KindUnknown
func ParseKind(name string) Kind {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, s := range kindNames {
		if k != KindUnknown && s == name {
			return k
		}
	}
	return KindUnknown
}

// Tag is the backend's identifier for a content type. It arrives as a JSON
// number or string and is compared in its canonical text form.
type Tag string

func (t *Tag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Tag(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("content type tag must be a number or string: %w", err)
	}
	*t = Tag(n.String())
	return nil
}

// MarshalJSON writes numeric tags back as numbers so the backend sees what it sent
func (t Tag) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	if _, err := json.Number(t).Int64(); err == nil {
		return []byte(t), nil
	}
	return json.Marshal(string(t))
}

// Map is an immutable kind<->tag snapshot.
type Map struct {
	byKind map[Kind]Tag
	byTag  map[Tag]Kind
}

// NewMap builds a snapshot from the backend's kind-name -> tag mapping.
// Names that are not a known kind are ignored; two kinds sharing a tag is an error.
func NewMap(raw map[string]Tag) (*Map, error) {
	m := &Map{byKind: make(map[Kind]Tag), byTag: make(map[Tag]Kind)}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		kind := ParseKind(name)
		tag := raw[name]
		if kind == KindUnknown || tag == "" {
			continue
		}
		if other, dup := m.byTag[tag]; dup && other != kind {
			return nil, fmt.Errorf("content type tag %q is assigned to both %s and %s", tag, other, kind)
		}
		m.byKind[kind] = tag
		m.byTag[tag] = kind
	}

	if len(m.byKind) == 0 {
		return nil, fmt.Errorf("content type map has no known kinds")
	}
	return m, nil
}

func (m *Map) Resolve(tag Tag) Kind {
	if m == nil {
		return KindUnknown
	}
	if k, ok := m.byTag[tag]; ok {
		return k
	}
	return KindUnknown
}

func (m *Map) TagFor(kind Kind) (Tag, bool) {
	if m == nil {
		return "", false
	}
	t, ok := m.byKind[kind]
	return t, ok
}

// Entries returns a copy keyed by kind name
func (m *Map) Entries() map[string]Tag {
	out := make(map[string]Tag, len(m.byKind))
	for k, t := range m.byKind {
		out[k.String()] = t
	}
	return out
}

// Resolver is what renderers need: a lookup and whether the map has arrived yet.
type Resolver interface {
	Resolve(tag Tag) Kind
	Loaded() bool
}

// Loaded lets a Map snapshot act as a Resolver
func (m *Map) Loaded() bool { return m != nil }

// Fetcher retrieves the raw mapping from the backend.
type Fetcher interface {
	FetchContentTypes(ctx context.Context) (map[string]Tag, error)
}

// Registry loads the map once per session and answers lookups from memory.
type Registry struct {
	fetcher Fetcher
	group   singleflight.Group

	mu sync.RWMutex
	m  *Map
}

func NewRegistry(f Fetcher) *Registry {
	return &Registry{fetcher: f}
}

// Load fetches the map on first use. Concurrent callers share one request;
// a failed load leaves the registry empty so a later call can retry.
func (r *Registry) Load(ctx context.Context) (*Map, error) {
	if m := r.Snapshot(); m != nil {
		return m, nil
	}

	ch := r.group.DoChan("load", func() (interface{}, error) {
		if m := r.Snapshot(); m != nil {
			return m, nil
		}
		raw, err := r.fetcher.FetchContentTypes(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		m, err := NewMap(raw)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.m = m
		r.mu.Unlock()
		return m, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Map), nil
	}
}

func (r *Registry) Snapshot() *Map {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.m
}

func (r *Registry) Loaded() bool {
	return r.Snapshot() != nil
}

// Resolve returns KindUnknown before the map is loaded; use Loaded to tell
// "not yet" from "unrecognised".
func (r *Registry) Resolve(tag Tag) Kind {
	return r.Snapshot().Resolve(tag)
}

func (r *Registry) TagFor(kind Kind) (Tag, bool) {
	return r.Snapshot().TagFor(kind)
}
