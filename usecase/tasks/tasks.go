// Package tasks aggregates the configured backends behind one task surface:
// fetches fan out and merge, mutations route to the backend that issued the
// identifier.
package tasks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zachfleeman/tasuki/domain"
	"github.com/zachfleeman/tasuki/pkg/logger"
	"github.com/zachfleeman/tasuki/repository"
)

// Service dispatches over an ordered set of backends. It holds no state
// across calls; every fetch reconstructs tasks from the files.
type Service struct {
	backends []repository.TaskBackend
	logger   *zap.Logger
}

// New builds the aggregation service.
func New(backends []repository.TaskBackend, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{backends: backends, logger: log}
}

// HasBackends reports whether anything is configured to serve tasks.
func (s *Service) HasBackends() bool {
	return len(s.backends) > 0
}

// AllTasks fetches from every backend concurrently, waits for all of them,
// merges and sorts. A failed backend is dropped from the result as long as
// any backend succeeded; its error is logged, not surfaced. Only when every
// backend fails does the call fail, with the first backend's error.
func (s *Service) AllTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	ctx = logger.ContextWithOpID(ctx, uuid.NewString())
	log := logger.WithOpID(ctx, s.logger)

	results := make([][]domain.Task, len(s.backends))
	errs := make([]error, len(s.backends))

	var wg sync.WaitGroup
	for i, backend := range s.backends {
		wg.Add(1)
		go func(i int, backend repository.TaskBackend) {
			defer wg.Done()
			results[i], errs[i] = backend.Fetch(ctx, filter)
		}(i, backend)
	}
	wg.Wait()

	var merged []domain.Task
	var firstErr error
	var firstErrBackend string
	for i, backend := range s.backends {
		if errs[i] != nil {
			log.Error("backend fetch failed",
				zap.String("backend", backend.Name()),
				zap.Error(errs[i]))
			if firstErr == nil {
				firstErr = errs[i]
				firstErrBackend = backend.Name()
			}
			continue
		}
		merged = append(merged, results[i]...)
	}

	if len(merged) == 0 && firstErr != nil {
		return nil, domain.BackendError(firstErrBackend, firstErr.Error(), firstErr)
	}

	Sort(merged, time.Now())
	return merged, nil
}

// CreateTask routes a new task to the first backend matching the requested
// source, falling back to the first configured backend.
func (s *Service) CreateTask(ctx context.Context, task domain.NewTask) (*domain.Task, error) {
	for _, backend := range s.backends {
		if backend.Source() == task.Source {
			return backend.Create(ctx, task)
		}
	}
	if len(s.backends) > 0 {
		return s.backends[0].Create(ctx, task)
	}
	return nil, domain.ErrNoBackends
}

// UpdateTask routes by identifier prefix.
func (s *Service) UpdateTask(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error) {
	backend, err := s.routeByID(id)
	if err != nil {
		return nil, err
	}
	return backend.Update(ctx, id, update)
}

// CompleteTask routes by identifier prefix.
func (s *Service) CompleteTask(ctx context.Context, id string) error {
	backend, err := s.routeByID(id)
	if err != nil {
		return err
	}
	return backend.Complete(ctx, id)
}

// UncompleteTask routes by identifier prefix.
func (s *Service) UncompleteTask(ctx context.Context, id string) error {
	backend, err := s.routeByID(id)
	if err != nil {
		return err
	}
	return backend.Uncomplete(ctx, id)
}

// DeleteTask routes by identifier prefix.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	backend, err := s.routeByID(id)
	if err != nil {
		return err
	}
	return backend.Delete(ctx, id)
}

// routeByID matches the identifier prefix before the first colon against the
// backend short names; the first match wins.
func (s *Service) routeByID(id string) (repository.TaskBackend, error) {
	prefix, _, _ := strings.Cut(id, ":")
	for _, backend := range s.backends {
		if backend.Name() == prefix {
			return backend, nil
		}
	}
	return nil, domain.ParseError("no backend found for task ID: %s", id)
}
