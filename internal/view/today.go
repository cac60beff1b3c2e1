package view

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/tickdone/tickdone/internal/querycache"
	"github.com/tickdone/tickdone/internal/task"
	"github.com/tickdone/tickdone/pkg/cerr"
)

// TodayBounds computes the local calendar day containing now: start is
// local midnight, end is 23:59:59.999 local time.
func TodayBounds(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), now.Location())
	return start, end
}

// TodayQuery is the list query behind the Today view: open tasks due within
// the current local day, soonest first.
func TodayQuery(now time.Time) task.Query {
	start, end := TodayBounds(now)
	return task.Query{
		Status:    "todo,doing,blocked",
		DueAfter:  start,
		DueBefore: end,
		Sort:      "due_at",
		Order:     "asc",
	}
}

// ToggleStatus maps a task's status to its next one when the checkbox is
// toggled: done goes back to todo, everything else counts as "not done"
// and becomes done.
func ToggleStatus(current task.Status) task.Status {
	if current == task.StatusDone {
		return task.StatusTodo
	}
	return task.StatusDone
}

// SubmitEdit confirms an inline edit: the title is trimmed and required,
// the description is trimmed and omitted from the update when empty. A
// blank title fails locally without a network call.
func SubmitEdit(ctx context.Context, queries *querycache.Queries, id, title, description string) (*task.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	update := task.Update{Title: &title}
	if description = strings.TrimSpace(description); description != "" {
		update.Description = &description
	}
	return queries.UpdateTask(ctx, id, update)
}

type TodayView struct {
	queries *querycache.Queries
	out     io.Writer
	now     func() time.Time
}

func NewTodayView(queries *querycache.Queries, out io.Writer) *TodayView {
	return &TodayView{
		queries: queries,
		out:     out,
		now:     time.Now,
	}
}

// Render draws one of the view's three states: an error banner, an
// empty-state message, or the task list.
func (v *TodayView) Render(ctx context.Context) error {
	now := v.now()
	list, err := v.queries.Tasks(ctx, TodayQuery(now))
	if err != nil {
		renderError(v.out, "Error Loading Tasks", err)
		return err
	}

	titleLine := color.New(color.Bold).Sprint("Today")
	fmt.Fprintf(v.out, "%s  %s\n", titleLine, mdDim.Sprint(now.Format("Mon, Jan 2")))
	fmt.Fprintln(v.out, mdDim.Sprint("Tasks due today"))
	fmt.Fprintln(v.out)

	if len(list.Tasks) == 0 {
		fmt.Fprintln(v.out, color.New(color.FgGreen).Sprint("All caught up!"))
		fmt.Fprintln(v.out, "No tasks due today.")
		return nil
	}

	for _, t := range list.Tasks {
		renderTask(v.out, t)
	}
	return nil
}

// Watch re-renders on the given interval until the context is cancelled.
// Repeated renders hit the query cache, so a stale result is shown
// immediately while the refresh happens off the render path.
func (v *TodayView) Watch(ctx context.Context, interval time.Duration) error {
	if err := v.Render(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fmt.Fprintln(v.out)
			if err := v.Render(ctx); err != nil {
				return err
			}
		}
	}
}

func renderError(out io.Writer, heading string, err error) {
	fmt.Fprintln(out, color.New(color.FgRed, color.Bold).Sprint(heading))
	msg := "An unexpected error occurred"
	if err != nil {
		msg = cerr.Message(err)
	}
	fmt.Fprintln(out, msg)
}
