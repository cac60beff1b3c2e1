package task

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo     Status = "todo"
	StatusDoing    Status = "doing"
	StatusBlocked  Status = "blocked"
	StatusDone     Status = "done"
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusBlocked, StatusDone, StatusArchived:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank orders priorities from low (0) to urgent (3). Unknown values rank
// below low so they never satisfy a minimum-priority filter.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	}
	return -1
}

// Context is the sphere-of-life category of a task, unrelated to
// context.Context.
type Context string

const (
	ContextPersonal     Context = "personal"
	ContextProfessional Context = "professional"
	ContextMixed        Context = "mixed"
)

func (c Context) Valid() bool {
	switch c {
	case ContextPersonal, ContextProfessional, ContextMixed:
		return true
	}
	return false
}

type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status     `json:"status" yaml:"status"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	DueAt       *time.Time `json:"due_at,omitempty" yaml:"due_at,omitempty"`
	Tags        []string   `json:"tags" yaml:"tags"`
	Context     Context    `json:"context" yaml:"context"`
	Workspace   string     `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// Create carries the client-supplied fields of a new task. The server
// assigns id and timestamps.
type Create struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Context     Context    `json:"context,omitempty"`
	Workspace   string     `json:"workspace,omitempty"`
}

// Update is a partial update: nil fields are left untouched by the server.
type Update struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Context     *Context   `json:"context,omitempty"`
	Workspace   *string    `json:"workspace,omitempty"`
}

type Pagination struct {
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
	TotalCount int    `json:"total_count"`
}

type List struct {
	Tasks      []*Task    `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

// Query combines the optional list filters with sorting and pagination.
// Zero-valued fields are treated as unset.
type Query struct {
	Status       string // comma-separated set of statuses
	Context      string
	Tags         string // comma-separated
	Priority     string // minimum priority level
	DueBefore    time.Time
	DueAfter     time.Time
	UpdatedSince time.Time
	Sort         string
	Order        string
	Limit        int
	Cursor       string
}

var sortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_at":     true,
	"priority":   true,
	"title":      true,
}

func ValidSort(field string) bool {
	return sortFields[field]
}

// Values serializes the query into request parameters. Unset fields are
// omitted entirely; present fields appear exactly once.
func (q Query) Values() url.Values {
	v := url.Values{}
	setNonEmpty(v, "status", q.Status)
	setNonEmpty(v, "context", q.Context)
	setNonEmpty(v, "tags", q.Tags)
	setNonEmpty(v, "priority", q.Priority)
	setTime(v, "due_before", q.DueBefore)
	setTime(v, "due_after", q.DueAfter)
	setTime(v, "updated_since", q.UpdatedSince)
	setNonEmpty(v, "sort", q.Sort)
	setNonEmpty(v, "order", q.Order)
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	setNonEmpty(v, "cursor", q.Cursor)
	return v
}

// Key is the canonical serialization used to identify a list query in the
// cache: two queries with equal parameters share a key.
func (q Query) Key() string {
	return q.Values().Encode()
}

func setNonEmpty(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setTime(v url.Values, key string, t time.Time) {
	if !t.IsZero() {
		v.Set(key, t.UTC().Format(time.RFC3339Nano))
	}
}

// ParseTags splits free-text comma-separated tag input, trimming whitespace
// and dropping empty entries.
func ParseTags(input string) []string {
	var tags []string
	for _, part := range strings.Split(input, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// NormalizeTags trims whitespace, drops blanks and removes duplicates while
// preserving the order tags were entered.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
