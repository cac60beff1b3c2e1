package view

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tickdone/tickdone/internal/querycache"
	"github.com/tickdone/tickdone/internal/task"
)

// ErrEmptyTitle is returned when a form is submitted with a blank or
// whitespace-only title. No network call is made in that case.
var ErrEmptyTitle = errors.New("title must not be empty")

// CreateForm collects the fields of a new task. TagsText is free-text
// comma-separated input, split and cleaned on submit.
type CreateForm struct {
	Title       string
	Description string
	Priority    task.Priority
	Context     task.Context
	TagsText    string
	DueAt       *time.Time
	Workspace   string
}

// Submit validates the form locally and creates the task. On success the
// query cache has already been invalidated/seeded by the mutation path.
func (f CreateForm) Submit(ctx context.Context, queries *querycache.Queries) (*task.Task, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	return queries.CreateTask(ctx, task.Create{
		Title:       title,
		Description: strings.TrimSpace(f.Description),
		Priority:    f.Priority,
		Context:     f.Context,
		Tags:        task.ParseTags(f.TagsText),
		DueAt:       f.DueAt,
		Workspace:   f.Workspace,
	})
}
