// Package localfile stores tasks as lines of a single todo.txt-style file.
package localfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zachfleeman/tasuki/domain"
	"github.com/zachfleeman/tasuki/internal/lineedit"
	"github.com/zachfleeman/tasuki/repository"
)

const backendName = "local"

// Config holds the resolved settings for the flat-file backend.
type Config struct {
	// Path is the absolute path of the todo file.
	Path string
}

// Backend reads and mutates a single append-ordered todo file. The line
// number is the sole persistent handle for a task.
type Backend struct {
	path   string
	logger *zap.Logger
}

// New builds a flat-file backend.
func New(cfg Config, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{path: cfg.Path, logger: logger}
}

func (b *Backend) Name() string          { return backendName }
func (b *Backend) Source() domain.Source { return domain.SourceLocalFile }

// Fetch parses every line of the todo file. A missing file is an empty
// backend, not an error; malformed lines are skipped.
func (b *Backend) Fetch(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.WrapError(domain.ErrCodeIO, "read todo file", err)
	}

	var tasks []domain.Task
	for i, line := range fileLines(string(data)) {
		p, ok := parseLine(line)
		if !ok {
			continue
		}
		task := b.taskFromParsed(p, i+1)
		if filter.Matches(task) {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// Create appends one canonical line, stamping today as the creation date.
func (b *Backend) Create(_ context.Context, task domain.NewTask) (*domain.Task, error) {
	lineNum := 1
	if data, err := os.ReadFile(b.path); err == nil {
		lineNum = len(fileLines(string(data))) + 1
	} else if !os.IsNotExist(err) {
		return nil, domain.WrapError(domain.ErrCodeIO, "read todo file", err)
	}

	today := dateOnly(time.Now())
	p := parsedLine{
		Title:     task.Title,
		Status:    domain.StatusPending,
		Priority:  task.Priority,
		Due:       task.Due,
		CreatedAt: &today,
		Tags:      task.Tags,
	}

	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeIO, "open todo file", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(p) + "\n"); err != nil {
		return nil, domain.WrapError(domain.ErrCodeIO, "append to todo file", err)
	}

	b.logger.Debug("task appended",
		zap.String("path", b.path),
		zap.Int("line", lineNum))

	created := b.taskFromParsed(p, lineNum)
	return &created, nil
}

// Update rewrites the addressed line in canonical field order.
func (b *Backend) Update(_ context.Context, id string, update domain.TaskUpdate) (*domain.Task, error) {
	lineNum, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}

	var merged parsedLine
	err = lineedit.Apply(b.path, lineNum, func(current string) (string, error) {
		p, ok := parseLine(current)
		if !ok {
			return "", domain.ParseError("could not parse line %d of %s", lineNum, b.path)
		}
		merged = applyUpdate(p, update)
		return formatLine(merged), nil
	})
	if err != nil {
		return nil, b.mapLineError(err, lineNum)
	}

	task := b.taskFromParsed(merged, lineNum)
	return &task, nil
}

// Complete marks the addressed task done. Completing an already-done task is
// a no-op rewrite that keeps a single status prefix.
func (b *Backend) Complete(ctx context.Context, id string) error {
	done := domain.StatusDone
	_, err := b.Update(ctx, id, domain.TaskUpdate{Status: &done})
	return err
}

func (b *Backend) Uncomplete(ctx context.Context, id string) error {
	pending := domain.StatusPending
	_, err := b.Update(ctx, id, domain.TaskUpdate{Status: &pending})
	return err
}

// Delete removes the physical line. Identifiers issued for later lines keep
// pointing at their old positions and are stale after this.
func (b *Backend) Delete(_ context.Context, id string) error {
	lineNum, err := parseTaskID(id)
	if err != nil {
		return err
	}
	if err := lineedit.Delete(b.path, lineNum); err != nil {
		return b.mapLineError(err, lineNum)
	}
	return nil
}

func (b *Backend) taskFromParsed(p parsedLine, lineNum int) domain.Task {
	return domain.Task{
		ID:          fmt.Sprintf("%s:%d", backendName, lineNum),
		Title:       p.Title,
		Status:      p.Status,
		Priority:    p.Priority,
		Due:         p.Due,
		Tags:        p.Tags,
		Source:      domain.SourceLocalFile,
		SourceLine:  lineNum,
		SourcePath:  b.path,
		CreatedAt:   p.CreatedAt,
		CompletedAt: p.CompletedAt,
	}
}

func (b *Backend) mapLineError(err error, lineNum int) error {
	switch {
	case os.IsNotExist(err):
		return domain.WrapError(domain.ErrCodeNotFound, "todo file not found", err)
	case errors.Is(err, lineedit.ErrLineOutOfRange):
		return domain.ParseError("line %d not found in %s", lineNum, b.path)
	case domain.IsDomainError(err, domain.ErrCodeParse):
		return err
	default:
		return domain.WrapError(domain.ErrCodeIO, "rewrite todo file", err)
	}
}

// applyUpdate merges a change set into parsed fields. A transition to Done
// stamps today as the completion date unless the line already carries one; a
// transition back to Pending drops it.
func applyUpdate(p parsedLine, update domain.TaskUpdate) parsedLine {
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	if update.Priority != nil {
		p.Priority = *update.Priority
	}
	if update.DueSet {
		p.Due = update.Due
	}
	if update.Tags != nil {
		p.Tags = *update.Tags
	}

	switch p.Status {
	case domain.StatusDone:
		if p.CompletedAt == nil {
			today := dateOnly(time.Now())
			p.CompletedAt = &today
		}
	case domain.StatusPending:
		p.CompletedAt = nil
	}
	return p
}

// parseTaskID decodes "local:<line>" into a 1-indexed line number.
func parseTaskID(id string) (int, error) {
	rest, ok := strings.CutPrefix(id, backendName+":")
	if !ok {
		return 0, domain.ParseError("invalid task ID: %s", id)
	}
	lineNum, err := strconv.Atoi(rest)
	if err != nil {
		return 0, domain.ParseError("invalid task ID: %s", id)
	}
	return lineNum, nil
}

// fileLines splits file content into physical lines, ignoring the trailing
// newline so it does not count as an extra empty line.
func fileLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
