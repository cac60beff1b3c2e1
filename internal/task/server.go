package task

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/tickdone/tickdone/pkg/cerr"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
	cursorPrefix = "offset_"
)

// Server exposes the task resource over REST. Results and errors are handed
// to the cerr response middleware via the request context.
type Server struct {
	repo Repository
	now  func() time.Time
}

func NewServer(repo Repository) *Server {
	return &Server{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Server) Mount(r chi.Router) {
	r.Get("/tasks", s.handleList)
	r.Post("/tasks", s.handleCreate)
	r.Get("/tasks/{taskID}", s.handleGet)
	r.Put("/tasks/{taskID}", s.handleUpdate)
	r.Delete("/tasks/{taskID}", s.handleDelete)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req Create
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "title must not be empty", nil)
		return
	}
	if req.Status == "" {
		req.Status = StatusTodo
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if req.Context == "" {
		req.Context = ContextPersonal
	}
	if err := validateEnums(req.Status, req.Priority, req.Context); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	now := s.now().UTC()
	t := &Task{
		ID:          ulid.Make().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueAt:       req.DueAt,
		Tags:        NormalizeTags(req.Tags),
		Context:     req.Context,
		Workspace:   req.Workspace,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Status == StatusDone {
		t.CompletedAt = &now
	}

	if err := s.repo.Create(ctx, t); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseStatus(ctx, http.StatusCreated, t)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := s.repo.Get(ctx, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req Update
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}

	t, err := s.repo.Get(ctx, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if t.Status == StatusArchived {
		cerr.SetNewJSONError(ctx, cerr.Aborted, "cannot update archived task", nil)
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "title must not be empty", nil)
			return
		}
		t.Title = title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.DueAt != nil {
		t.DueAt = req.DueAt
	}
	if req.Tags != nil {
		t.Tags = NormalizeTags(req.Tags)
		if t.Tags == nil {
			t.Tags = []string{}
		}
	}
	if req.Context != nil {
		t.Context = *req.Context
	}
	if req.Workspace != nil {
		t.Workspace = *req.Workspace
	}
	if err := validateEnums(t.Status, t.Priority, t.Context); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	now := s.now().UTC()
	if t.Status == StatusDone && t.CompletedAt == nil {
		t.CompletedAt = &now
	} else if t.Status != StatusDone {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now

	if err := s.repo.Update(ctx, t); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

// handleDelete archives the task rather than removing it, and returns the
// last representation.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t, err := s.repo.Get(ctx, chi.URLParam(r, "taskID"))
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if t.Status == StatusArchived {
		cerr.SetNewJSONError(ctx, cerr.Aborted, "task already archived", nil)
		return
	}

	t.Status = StatusArchived
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := parseListParams(r.URL.Query())
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}

	var filtered []*Task
	for _, t := range all {
		if params.matches(t) {
			filtered = append(filtered, t)
		}
	}
	sortTasks(filtered, params.sort, params.order)

	total := len(filtered)
	page := filtered[min(params.offset, total):]
	if len(page) > params.limit {
		page = page[:params.limit]
	}
	if page == nil {
		page = []*Task{}
	}

	result := &List{
		Tasks: page,
		Pagination: Pagination{
			HasMore:    params.offset+len(page) < total,
			TotalCount: total,
		},
	}
	if result.Pagination.HasMore {
		result.Pagination.NextCursor = fmt.Sprintf("%s%d", cursorPrefix, params.offset+len(page))
	}
	cerr.SetJSONResponse(ctx, result)
}

type listParams struct {
	statuses     []Status
	context      Context
	tags         []string
	minPriority  Priority
	dueBefore    time.Time
	dueAfter     time.Time
	updatedSince time.Time
	sort         string
	order        string
	limit        int
	offset       int
}

func parseListParams(values url.Values) (*listParams, error) {
	p := &listParams{
		sort:  "updated_at",
		order: "desc",
		limit: defaultLimit,
	}

	// status may be given multiple times or as a comma-separated set.
	for _, raw := range values["status"] {
		for _, part := range strings.Split(raw, ",") {
			st := Status(strings.TrimSpace(part))
			if st == "" {
				continue
			}
			if !st.Valid() {
				return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid status %q", st), nil)
			}
			p.statuses = append(p.statuses, st)
		}
	}
	if raw := values.Get("context"); raw != "" {
		c := Context(raw)
		if !c.Valid() {
			return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid context %q", raw), nil)
		}
		p.context = c
	}
	if raw := values.Get("tags"); raw != "" {
		p.tags = ParseTags(raw)
	}
	if raw := values.Get("priority"); raw != "" {
		pr := Priority(raw)
		if !pr.Valid() {
			return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid priority %q", raw), nil)
		}
		p.minPriority = pr
	}

	var err error
	if p.dueBefore, err = parseTimeParam(values, "due_before"); err != nil {
		return nil, err
	}
	if p.dueAfter, err = parseTimeParam(values, "due_after"); err != nil {
		return nil, err
	}
	if p.updatedSince, err = parseTimeParam(values, "updated_since"); err != nil {
		return nil, err
	}

	if raw := values.Get("sort"); raw != "" {
		if !ValidSort(raw) {
			return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid sort field %q", raw), nil)
		}
		p.sort = raw
	}
	if raw := values.Get("order"); raw != "" {
		if raw != "asc" && raw != "desc" {
			return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid order %q", raw), nil)
		}
		p.order = raw
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			return nil, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("limit must be between 1 and %d", maxLimit), err)
		}
		p.limit = limit
	}
	if raw := values.Get("cursor"); raw != "" {
		offset, err := strconv.Atoi(strings.TrimPrefix(raw, cursorPrefix))
		if err != nil || !strings.HasPrefix(raw, cursorPrefix) || offset < 0 {
			return nil, cerr.NewError(cerr.InvalidArgument, "invalid cursor", err)
		}
		p.offset = offset
	}
	return p, nil
}

func parseTimeParam(values url.Values, key string) (time.Time, error) {
	raw := values.Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid %s timestamp", key), err)
	}
	return t, nil
}

func (p *listParams) matches(t *Task) bool {
	if len(p.statuses) > 0 {
		found := false
		for _, st := range p.statuses {
			if t.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.context != "" && t.Context != p.context {
		return false
	}
	if len(p.tags) > 0 {
		found := false
	outer:
		for _, want := range p.tags {
			for _, have := range t.Tags {
				if have == want {
					found = true
					break outer
				}
			}
		}
		if !found {
			return false
		}
	}
	if p.minPriority != "" && t.Priority.Rank() < p.minPriority.Rank() {
		return false
	}
	if !p.dueBefore.IsZero() && (t.DueAt == nil || !t.DueAt.Before(p.dueBefore)) {
		return false
	}
	if !p.dueAfter.IsZero() && (t.DueAt == nil || !t.DueAt.After(p.dueAfter)) {
		return false
	}
	if !p.updatedSince.IsZero() && !t.UpdatedAt.After(p.updatedSince) {
		return false
	}
	return true
}

func sortTasks(tasks []*Task, field, order string) {
	less := lessFunc(field)
	sort.SliceStable(tasks, func(i, j int) bool {
		if order == "desc" {
			return less(tasks[j], tasks[i])
		}
		return less(tasks[i], tasks[j])
	})
}

func lessFunc(field string) func(a, b *Task) bool {
	switch field {
	case "created_at":
		return func(a, b *Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "due_at":
		// Tasks without a due date sort after everything that has one.
		return func(a, b *Task) bool {
			switch {
			case a.DueAt == nil:
				return false
			case b.DueAt == nil:
				return true
			default:
				return a.DueAt.Before(*b.DueAt)
			}
		}
	case "priority":
		return func(a, b *Task) bool { return a.Priority.Rank() < b.Priority.Rank() }
	case "title":
		return func(a, b *Task) bool { return a.Title < b.Title }
	default:
		return func(a, b *Task) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
}

func validateEnums(st Status, pr Priority, c Context) error {
	if !st.Valid() {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid status %q", st), nil)
	}
	if !pr.Valid() {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid priority %q", pr), nil)
	}
	if !c.Valid() {
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid context %q", c), nil)
	}
	return nil
}
