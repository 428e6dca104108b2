package repository

import (
	"context"
	"strings"
	"time"

	"github.com/zachfleeman/tasuki/domain"
)

// TaskFilter narrows a fetch. Zero value matches everything.
type TaskFilter struct {
	Status    *domain.Status
	DueBefore *time.Time
	DueAfter  *time.Time
	Search    string
}

// Matches reports whether a task passes the filter. The due-date bounds are
// inclusive and a task with no due date fails both of them.
func (f TaskFilter) Matches(t domain.Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.DueBefore != nil {
		if t.Due == nil || t.Due.After(*f.DueBefore) {
			return false
		}
	}
	if f.DueAfter != nil {
		if t.Due == nil || t.Due.Before(*f.DueAfter) {
			return false
		}
	}
	if f.Search != "" {
		if !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
			return false
		}
	}
	return true
}

// TaskBackend is the capability set every task source implements. Identifiers
// passed to the mutation operations are the ones the backend itself issued on
// a previous Fetch or Create.
type TaskBackend interface {
	// Name is the backend short name, used as the identifier prefix.
	Name() string
	Source() domain.Source

	Fetch(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task domain.NewTask) (*domain.Task, error)
	Update(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error)
	Complete(ctx context.Context, id string) error
	Uncomplete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
