package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickdone/tickdone/internal/task"
	"github.com/tickdone/tickdone/pkg/cerr"
)

func TestListTasksSerializesQuery(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(task.List{Tasks: []*task.Task{}})
	}))
	defer srv.Close()

	c := NewTaskClient(srv.URL)
	_, err := c.ListTasks(context.Background(), task.Query{
		Status: "todo,doing",
		Sort:   "due_at",
		Order:  "asc",
		Limit:  50,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/tasks", gotPath)
	assert.Equal(t, "todo,doing", gotQuery.Get("status"))
	assert.Equal(t, "due_at", gotQuery.Get("sort"))
	assert.Equal(t, "asc", gotQuery.Get("order"))
	assert.Equal(t, "50", gotQuery.Get("limit"))
	for _, absent := range []string{"context", "tags", "priority", "due_before", "due_after", "cursor"} {
		_, ok := gotQuery[absent]
		assert.False(t, ok, "unset parameter %q was sent", absent)
	}
}

func TestListTasksOmitsEmptyQueryString(t *testing.T) {
	var gotRawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(task.List{Tasks: []*task.Task{}})
	}))
	defer srv.Close()

	c := NewTaskClient(srv.URL)
	_, err := c.ListTasks(context.Background(), task.Query{})
	require.NoError(t, err)
	assert.Empty(t, gotRawQuery)
}

func TestCreateTaskRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/tasks", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req task.Create
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Buy milk", req.Title)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(task.Task{ID: "t1", Title: req.Title, Status: task.StatusTodo})
	}))
	defer srv.Close()

	c := NewTaskClient(srv.URL)
	got, err := c.CreateTask(context.Background(), task.Create{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "Buy milk", got.Title)
}

func TestUpdateTaskSendsOnlySetFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/v1/tasks/t1", r.URL.Path)

		var raw map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Contains(t, raw, "status")
		assert.NotContains(t, raw, "title")
		assert.NotContains(t, raw, "description")

		_ = json.NewEncoder(w).Encode(task.Task{ID: "t1", Status: task.StatusDone})
	}))
	defer srv.Close()

	c := NewTaskClient(srv.URL)
	done := task.StatusDone
	got, err := c.UpdateTask(context.Background(), "t1", task.Update{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, got.Status)
}

func TestErrorMessagePreservedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"aborted","message":"cannot update archived task"}}`))
	}))
	defer srv.Close()

	c := NewTaskClient(srv.URL)
	title := "x"
	_, err := c.UpdateTask(context.Background(), "t1", task.Update{Title: &title})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Aborted))
	assert.Equal(t, "cannot update archived task", cerr.Message(err))
}

func TestErrorWithoutBodyFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewTaskClient(srv.URL)
	_, err := c.GetTask(context.Background(), "t1")
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Unavailable))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewTaskClient(srv.URL, WithTimeout(time.Second))
	_, err := c.GetTask(context.Background(), "t1")
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Unavailable))
}

func TestEmptyIDRejectedLocally(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := NewTaskClient(srv.URL)
	ctx := context.Background()

	_, err := c.GetTask(ctx, "")
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	_, err = c.UpdateTask(ctx, "", task.Update{})
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	_, err = c.DeleteTask(ctx, "")
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))

	assert.Zero(t, calls)
}

func TestDeleteTaskReturnsLastRepresentation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		_ = json.NewEncoder(w).Encode(task.Task{ID: "t1", Title: "gone", Status: task.StatusArchived})
	}))
	defer srv.Close()

	c := NewTaskClient(srv.URL)
	got, err := c.DeleteTask(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, task.StatusArchived, got.Status)
	assert.Equal(t, "gone", got.Title)
}
