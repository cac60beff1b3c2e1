package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickdone/tickdone/internal/task"
	"github.com/tickdone/tickdone/pkg/cerr"
	"github.com/tickdone/tickdone/pkg/storage"
)

func newTestRepository(t *testing.T) *YAMLRepository {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(store)
}

func sampleTask(id string) *task.Task {
	due := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	return &task.Task{
		ID:        id,
		Title:     "Buy milk",
		Status:    task.StatusTodo,
		Priority:  task.PriorityHigh,
		DueAt:     &due,
		Tags:      []string{"shopping"},
		Context:   task.ContextPersonal,
		CreatedAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	want := sampleTask("t1")
	require.NoError(t, repo.Create(ctx, want))

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Tags, got.Tags)
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(*want.DueAt))
}

func TestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(ctx, sampleTask("t1")))
	err := repo.Create(ctx, sampleTask("t1"))
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))
}

func TestGetNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	assert.Equal(t, "task not found", cerr.Message(err))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	tk := sampleTask("t1")
	require.NoError(t, repo.Create(ctx, tk))

	tk.Status = task.StatusDone
	require.NoError(t, repo.Update(ctx, tk))

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, got.Status)
}

func TestUpdateMissing(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.Update(context.Background(), sampleTask("missing"))
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(ctx, sampleTask("t1")))
	require.NoError(t, repo.Delete(ctx, "t1"))

	_, err := repo.Get(ctx, "t1")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	err = repo.Delete(ctx, "t1")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestListEmptyAndPopulated(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, repo.Create(ctx, sampleTask("b")))
	require.NoError(t, repo.Create(ctx, sampleTask("a")))

	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Listing order follows the storage paths.
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}
