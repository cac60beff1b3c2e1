package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/tickdone/tickdone/internal/client"
	"github.com/tickdone/tickdone/internal/config"
	"github.com/tickdone/tickdone/internal/querycache"
	"github.com/tickdone/tickdone/internal/task"
	"github.com/tickdone/tickdone/internal/view"
	"github.com/tickdone/tickdone/pkg/cerr"
	"github.com/tickdone/tickdone/pkg/clog"
)

var (
	app = kingpin.New("tickdone", "Personal task management client")

	// Views
	todayCmd      = app.Command("today", "Tasks due today")
	todayWatch    = todayCmd.Flag("watch", "Re-render periodically").Bool()
	todayInterval = todayCmd.Flag("interval", "Watch refresh interval").Default("30s").Duration()

	inboxCmd    = app.Command("inbox", "Inbox view")
	contextsCmd = app.Command("contexts", "Contexts view")
	tagsCmd     = app.Command("tags", "Tags view")

	// Task commands
	addCmd         = app.Command("add", "Create a new task")
	addTitle       = addCmd.Arg("title", "Task title").Required().String()
	addDescription = addCmd.Flag("description", "Task description (markdown)").Short('d').String()
	addPriority    = addCmd.Flag("priority", "Priority (low|medium|high|urgent)").Default("medium").String()
	addContext     = addCmd.Flag("context", "Context (personal|professional|mixed)").Default("personal").String()
	addTags        = addCmd.Flag("tags", "Comma-separated tags").String()
	addDue         = addCmd.Flag("due", "Due time (RFC3339)").String()
	addWorkspace   = addCmd.Flag("workspace", "Workspace label").String()

	editCmd         = app.Command("edit", "Edit a task's title and description")
	editID          = editCmd.Arg("id", "Task ID").Required().String()
	editTitle       = editCmd.Flag("title", "New title").Required().String()
	editDescription = editCmd.Flag("description", "New description").Short('d').String()

	toggleCmd = app.Command("toggle", "Toggle a task between done and not done")
	toggleID  = toggleCmd.Arg("id", "Task ID").Required().String()

	showCmd = app.Command("show", "Show task details")
	showID  = showCmd.Arg("id", "Task ID").Required().String()

	listCmd      = app.Command("list", "List tasks with filters")
	listStatus   = listCmd.Flag("status", "Comma-separated statuses").String()
	listContext  = listCmd.Flag("context", "Context filter").String()
	listTags     = listCmd.Flag("tags", "Comma-separated tag filter").String()
	listPriority = listCmd.Flag("priority", "Minimum priority").String()
	listSort     = listCmd.Flag("sort", "Sort field").Default("updated_at").String()
	listOrder    = listCmd.Flag("order", "Sort order (asc|desc)").Default("desc").String()
	listLimit    = listCmd.Flag("limit", "Maximum results").Default("100").Int()
	listCursor   = listCmd.Flag("cursor", "Pagination cursor").String()

	rmCmd = app.Command("rm", "Delete (archive) a task")
	rmID  = rmCmd.Arg("id", "Task ID").Required().String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	color.NoColor = color.NoColor || env.NoColor

	handler := clog.NewTextHandler(os.Stderr,
		clog.WithLevel(env.SlogLevel()),
		clog.WithColor(!env.NoColor),
	)
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	api := client.NewTaskClient(env.APIURL, client.WithTimeout(env.HTTPTimeout))
	queries := querycache.NewQueries(api,
		querycache.WithStaleAfter(env.StaleAfter),
		querycache.WithEvictAfter(env.EvictAfter),
	)
	defer queries.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command, queries); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", cerr.Message(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, queries *querycache.Queries) error {
	out := os.Stdout

	switch command {
	case todayCmd.FullCommand():
		today := view.NewTodayView(queries, out)
		if *todayWatch {
			return today.Watch(ctx, *todayInterval)
		}
		return today.Render(ctx)

	case inboxCmd.FullCommand():
		view.Placeholder(out, "Inbox", "Unscheduled tasks will land here.")
		return nil

	case contextsCmd.FullCommand():
		view.Placeholder(out, "Contexts", "Tasks grouped by sphere of life.")
		return nil

	case tagsCmd.FullCommand():
		view.Placeholder(out, "Tags", "Tasks grouped by tag.")
		return nil

	case addCmd.FullCommand():
		return runAdd(ctx, queries, out)

	case editCmd.FullCommand():
		t, err := view.SubmitEdit(ctx, queries, *editID, *editTitle, *editDescription)
		if err != nil {
			return err
		}
		view.RenderTask(out, t)
		return nil

	case toggleCmd.FullCommand():
		return runToggle(ctx, queries, out)

	case showCmd.FullCommand():
		t, err := queries.Task(ctx, *showID)
		if err != nil {
			return err
		}
		view.RenderTask(out, t)
		return nil

	case listCmd.FullCommand():
		list, err := queries.Tasks(ctx, task.Query{
			Status:   *listStatus,
			Context:  *listContext,
			Tags:     *listTags,
			Priority: *listPriority,
			Sort:     *listSort,
			Order:    *listOrder,
			Limit:    *listLimit,
			Cursor:   *listCursor,
		})
		if err != nil {
			return err
		}
		view.RenderList(out, list)
		return nil

	case rmCmd.FullCommand():
		t, err := queries.DeleteTask(ctx, *rmID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Archived %s (%s)\n", t.Title, t.ID)
		return nil
	}
	return fmt.Errorf("unknown command %q", command)
}

func runAdd(ctx context.Context, queries *querycache.Queries, out *os.File) error {
	form := view.CreateForm{
		Title:       *addTitle,
		Description: *addDescription,
		Priority:    task.Priority(*addPriority),
		Context:     task.Context(*addContext),
		TagsText:    *addTags,
		Workspace:   *addWorkspace,
	}
	if *addDue != "" {
		due, err := time.Parse(time.RFC3339, *addDue)
		if err != nil {
			return fmt.Errorf("invalid --due timestamp: %w", err)
		}
		form.DueAt = &due
	}
	t, err := form.Submit(ctx, queries)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created %s (%s)\n", t.Title, t.ID)
	return nil
}

func runToggle(ctx context.Context, queries *querycache.Queries, out *os.File) error {
	t, err := queries.Task(ctx, *toggleID)
	if err != nil {
		return err
	}
	next := view.ToggleStatus(t.Status)
	updated, err := queries.UpdateTask(ctx, t.ID, task.Update{Status: &next})
	if err != nil {
		return err
	}
	view.RenderTask(out, updated)
	return nil
}
