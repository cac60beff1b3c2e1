package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tickdone/tickdone/internal/task"
	"github.com/tickdone/tickdone/pkg/cerr"
)

const apiPath = "/api/v1"

// TaskClient is the sole boundary to the backend's task resource. Every
// operation is a single HTTP round trip with no retries; non-success
// responses are decoded into a cerr.Error carrying the server's message.
type TaskClient struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*TaskClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *TaskClient) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *TaskClient) {
		c.httpClient.Timeout = d
	}
}

// NewTaskClient creates a new task client. baseURL is the backend root
// without the /api/v1 path.
func NewTaskClient(baseURL string, opts ...Option) *TaskClient {
	c := &TaskClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTasks lists tasks matching the query.
func (c *TaskClient) ListTasks(ctx context.Context, q task.Query) (*task.List, error) {
	u := c.baseURL + apiPath + "/tasks"
	if params := q.Values().Encode(); params != "" {
		u += "?" + params
	}
	var result task.List
	if err := c.do(ctx, http.MethodGet, u, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTask fetches a single task by id.
func (c *TaskClient) GetTask(ctx context.Context, id string) (*task.Task, error) {
	if id == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "task id must not be empty", nil)
	}
	var t task.Task
	if err := c.do(ctx, http.MethodGet, c.taskURL(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask submits a new task and returns the created representation
// including the server-assigned id and timestamps.
func (c *TaskClient) CreateTask(ctx context.Context, tc task.Create) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPost, c.baseURL+apiPath+"/tasks", tc, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask submits only the changed fields and returns the updated task.
func (c *TaskClient) UpdateTask(ctx context.Context, id string, tu task.Update) (*task.Task, error) {
	if id == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "task id must not be empty", nil)
	}
	var t task.Task
	if err := c.do(ctx, http.MethodPut, c.taskURL(id), tu, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask removes the task and returns its last known representation.
func (c *TaskClient) DeleteTask(ctx context.Context, id string) (*task.Task, error) {
	if id == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "task id must not be empty", nil)
	}
	var t task.Task
	if err := c.do(ctx, http.MethodDelete, c.taskURL(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *TaskClient) taskURL(id string) string {
	return c.baseURL + apiPath + "/tasks/" + url.PathEscape(id)
}

func (c *TaskClient) do(ctx context.Context, method, u string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return cerr.NewError(cerr.Internal, "failed to encode request", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return cerr.NewError(cerr.Unavailable, "request failed", fmt.Errorf("%s %s: %w", method, u, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return cerr.DecodeResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return cerr.NewError(cerr.Internal, "failed to decode response", err)
	}
	return nil
}
