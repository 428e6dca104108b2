package localfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zachfleeman/tasuki/domain"
	"github.com/zachfleeman/tasuki/repository"
)

func newTestBackend(t *testing.T, content string) *Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo.txt")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return New(Config{Path: path}, nil)
}

func fileContent(t *testing.T, b *Backend) string {
	t.Helper()
	data, err := os.ReadFile(b.path)
	require.NoError(t, err)
	return string(data)
}

func TestFetchParsesAndNumbersLines(t *testing.T) {
	b := newTestBackend(t, "Buy milk\n# a comment\n\n(p1) Call dentist due:2025-03-20\nx 2025-02-20 Old chore\n")

	tasks, err := b.Fetch(context.Background(), repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, "local:1", tasks[0].ID)
	assert.Equal(t, 1, tasks[0].SourceLine)
	assert.Equal(t, b.path, tasks[0].SourcePath)
	assert.Equal(t, domain.SourceLocalFile, tasks[0].Source)

	// Comment and blank lines keep their physical numbering for later lines.
	assert.Equal(t, "local:4", tasks[1].ID)
	assert.Equal(t, "local:5", tasks[2].ID)
	assert.Equal(t, domain.StatusDone, tasks[2].Status)
}

func TestFetchMissingFileIsEmpty(t *testing.T) {
	b := New(Config{Path: filepath.Join(t.TempDir(), "absent.txt")}, nil)

	tasks, err := b.Fetch(context.Background(), repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestFetchAppliesFilter(t *testing.T) {
	b := newTestBackend(t, "Buy milk\nx Done thing\nCall the dentist\n")

	pending := domain.StatusPending
	tasks, err := b.Fetch(context.Background(), repository.TaskFilter{Status: &pending, Search: "DENTIST"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call the dentist", tasks[0].Title)
}

func TestCreateAppends(t *testing.T) {
	b := newTestBackend(t, "First task\n")

	due, err := domain.ParseDate("2025-04-01")
	require.NoError(t, err)
	task, err := b.Create(context.Background(), domain.NewTask{
		Title:    "New task",
		Priority: domain.PriorityHigh,
		Due:      &due,
		Tags:     []string{"work"},
	})
	require.NoError(t, err)

	assert.Equal(t, "local:2", task.ID)
	assert.Equal(t, domain.StatusPending, task.Status)
	require.NotNil(t, task.CreatedAt)

	content := fileContent(t, b)
	assert.Contains(t, content, "(p1) ")
	assert.Contains(t, content, " New task #work due:2025-04-01\n")
}

func TestCreateMissingFile(t *testing.T) {
	b := New(Config{Path: filepath.Join(t.TempDir(), "todo.txt")}, nil)

	task, err := b.Create(context.Background(), domain.NewTask{Title: "First"})
	require.NoError(t, err)
	assert.Equal(t, "local:1", task.ID)
}

func TestUpdateRewritesSingleLine(t *testing.T) {
	b := newTestBackend(t, "Buy milk\nCall dentist\nWater plants\n")

	title := "Call the good dentist"
	prio := domain.PriorityHigh
	task, err := b.Update(context.Background(), "local:2", domain.TaskUpdate{Title: &title, Priority: &prio})
	require.NoError(t, err)
	assert.Equal(t, "Call the good dentist", task.Title)
	assert.Equal(t, domain.PriorityHigh, task.Priority)

	assert.Equal(t, "Buy milk\n(p1) Call the good dentist\nWater plants\n", fileContent(t, b))
}

func TestUpdateClearsDueDate(t *testing.T) {
	b := newTestBackend(t, "Ship release due:2025-03-01\n")

	task, err := b.Update(context.Background(), "local:1", domain.TaskUpdate{DueSet: true, Due: nil})
	require.NoError(t, err)
	assert.Nil(t, task.Due)
	assert.Equal(t, "Ship release\n", fileContent(t, b))
}

func TestCompleteIsIdempotent(t *testing.T) {
	b := newTestBackend(t, "Buy milk\n")
	ctx := context.Background()

	require.NoError(t, b.Complete(ctx, "local:1"))
	require.NoError(t, b.Complete(ctx, "local:1"))

	tasks, err := b.Fetch(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.StatusDone, tasks[0].Status)
	assert.Equal(t, "Buy milk", tasks[0].Title)

	// A single status prefix, not a stacked one.
	content := fileContent(t, b)
	assert.Regexp(t, `^x \d{4}-\d{2}-\d{2} Buy milk\n$`, content)
}

func TestUncompleteDropsCompletion(t *testing.T) {
	b := newTestBackend(t, "x 2025-02-20 Buy milk\n")

	require.NoError(t, b.Uncomplete(context.Background(), "local:1"))

	assert.Equal(t, "Buy milk\n", fileContent(t, b))
}

func TestDeleteRemovesLineAndShiftsRest(t *testing.T) {
	b := newTestBackend(t, "one\ntwo\nthree\nfour\nfive\n")
	ctx := context.Background()

	require.NoError(t, b.Delete(ctx, "local:3"))
	assert.Equal(t, "one\ntwo\nfour\nfive\n", fileContent(t, b))

	// Position-based handles are stale after a structural edit: local:4 now
	// addresses what used to be line five.
	tasks, err := b.Fetch(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	assert.Equal(t, "local:4", tasks[3].ID)
	assert.Equal(t, "five", tasks[3].Title)
}

func TestMutationErrors(t *testing.T) {
	b := newTestBackend(t, "only line\n")
	ctx := context.Background()

	_, err := b.Update(ctx, "local:nope", domain.TaskUpdate{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeParse))

	_, err = b.Update(ctx, "remote:1", domain.TaskUpdate{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeParse))

	_, err = b.Update(ctx, "local:9", domain.TaskUpdate{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeParse))

	missing := New(Config{Path: filepath.Join(t.TempDir(), "absent.txt")}, nil)
	_, err = missing.Update(ctx, "local:1", domain.TaskUpdate{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	err = missing.Delete(ctx, "local:1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}
