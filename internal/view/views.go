package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/tickdone/tickdone/internal/task"
)

var priorityColors = map[task.Priority]*color.Color{
	task.PriorityUrgent: color.New(color.FgRed, color.Bold),
	task.PriorityHigh:   color.New(color.FgRed),
	task.PriorityMedium: color.New(color.FgYellow),
	task.PriorityLow:    color.New(color.FgWhite),
}

func renderTask(out io.Writer, t *task.Task) {
	checkbox := "[ ]"
	if t.Status == task.StatusDone {
		checkbox = "[x]"
	}

	title := t.Title
	if t.Status == task.StatusDone {
		title = mdDim.Sprint(title)
	}
	fmt.Fprintf(out, "%s %s  %s\n", checkbox, title, mdDim.Sprint(t.ID))

	meta := []string{priorityBadge(t.Priority), string(t.Context)}
	if t.Status != task.StatusTodo && t.Status != task.StatusDone {
		meta = append(meta, string(t.Status))
	}
	if t.DueAt != nil {
		meta = append(meta, "due "+t.DueAt.Local().Format("15:04"))
	}
	for _, tag := range t.Tags {
		meta = append(meta, "#"+tag)
	}
	fmt.Fprintf(out, "    %s\n", strings.Join(meta, "  "))

	if t.Description != "" {
		for _, line := range strings.Split(RenderMarkdown(t.Description), "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
}

func priorityBadge(p task.Priority) string {
	c, ok := priorityColors[p]
	if !ok {
		return string(p)
	}
	return c.Sprint(string(p))
}

// RenderList draws an arbitrary task list result, used by the list command.
func RenderList(out io.Writer, list *task.List) {
	if len(list.Tasks) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return
	}
	for _, t := range list.Tasks {
		renderTask(out, t)
	}
	if list.Pagination.HasMore {
		fmt.Fprintf(out, "%d of %d tasks shown (next cursor: %s)\n",
			len(list.Tasks), list.Pagination.TotalCount, list.Pagination.NextCursor)
	}
}

// RenderTask draws a single task, used by the show command.
func RenderTask(out io.Writer, t *task.Task) {
	renderTask(out, t)
	if t.Workspace != "" {
		fmt.Fprintf(out, "    workspace: %s\n", t.Workspace)
	}
	fmt.Fprintf(out, "    created %s, updated %s\n",
		t.CreatedAt.Local().Format("2006-01-02 15:04"),
		t.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if t.CompletedAt != nil {
		fmt.Fprintf(out, "    completed %s\n", t.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
}

// Placeholder renders the not-yet-implemented views.
func Placeholder(out io.Writer, title, message string) {
	fmt.Fprintln(out, color.New(color.Bold).Sprint(title))
	fmt.Fprintln(out, message)
	fmt.Fprintln(out, mdDim.Sprint("Coming soon."))
}
