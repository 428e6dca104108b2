// Package obsidian aggregates checkbox tasks embedded in the markdown files
// of an Obsidian-style vault.
package obsidian

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/zachfleeman/tasuki/domain"
	"github.com/zachfleeman/tasuki/internal/lineedit"
	"github.com/zachfleeman/tasuki/repository"
)

const backendName = "obsidian"

// Config holds the resolved settings for the vault backend.
type Config struct {
	// VaultPath is the absolute vault root.
	VaultPath string
	// Folders, when non-empty, restricts scanning to these vault-relative
	// folder prefixes.
	Folders []string
	// IgnoreFolders are directory names pruned from the walk.
	IgnoreFolders []string
	// InboxFile is the vault-relative file new tasks are appended to.
	InboxFile string
}

// IsObsidianVault reports whether the configured root carries the marker
// directory the Obsidian app maintains.
func (c Config) IsObsidianVault() bool {
	info, err := os.Stat(filepath.Join(c.VaultPath, ".obsidian"))
	return err == nil && info.IsDir()
}

// Backend reads and mutates checkbox lines across a vault. Task locators are
// "<vault-relative-path>:<line>".
type Backend struct {
	cfg     Config
	scanner *Scanner
	logger  *zap.Logger
}

// New builds a vault backend.
func New(cfg Config, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		cfg:     cfg,
		scanner: NewScanner(cfg.VaultPath, cfg.Folders, cfg.IgnoreFolders),
		logger:  logger,
	}
}

func (b *Backend) Name() string          { return backendName }
func (b *Backend) Source() domain.Source { return domain.SourceObsidian }

// Fetch scans every candidate file. A file that cannot be read is logged and
// skipped; it never fails the whole fetch.
func (b *Backend) Fetch(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var tasks []domain.Task
	for _, path := range b.scanner.MarkdownFiles() {
		fileTasks, err := b.parseFileTasks(path)
		if err != nil {
			b.logger.Warn("skipping unreadable vault file",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		for _, task := range fileTasks {
			if filter.Matches(task) {
				tasks = append(tasks, task)
			}
		}
	}
	return tasks, nil
}

func (b *Backend) parseFileTasks(path string) ([]domain.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(b.cfg.VaultPath, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	located := parseContent(string(data))
	tasks := make([]domain.Task, 0, len(located))
	for _, lt := range located {
		tasks = append(tasks, b.taskFromParsed(lt.Task, rel, lt.Line))
	}
	return tasks, nil
}

// Create appends a checkbox line to the inbox file, creating it if absent.
func (b *Backend) Create(_ context.Context, task domain.NewTask) (*domain.Task, error) {
	inboxPath := filepath.Join(b.cfg.VaultPath, b.cfg.InboxFile)

	line := formatLine(parsedTask{
		Title:    task.Title,
		Status:   domain.StatusPending,
		Priority: task.Priority,
		Due:      task.Due,
		Tags:     task.Tags,
	})

	content := ""
	if data, err := os.ReadFile(inboxPath); err == nil {
		content = string(data)
	} else if !os.IsNotExist(err) {
		return nil, domain.BackendError(backendName, "read inbox file", err)
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += line + "\n"
	lineNum := strings.Count(content, "\n")

	if err := os.WriteFile(inboxPath, []byte(content), 0o644); err != nil {
		return nil, domain.BackendError(backendName, "write inbox file", err)
	}

	created := b.taskFromParsed(parsedTask{
		Title:    task.Title,
		Status:   domain.StatusPending,
		Priority: task.Priority,
		Due:      task.Due,
		Tags:     task.Tags,
	}, filepath.ToSlash(b.cfg.InboxFile), lineNum)
	return &created, nil
}

// Update rewrites the addressed line in canonical order. Metadata this codec
// does not model (creation/completion glyphs, recurrence, skipped
// annotations) is dropped from the line; that loss is part of the contract.
func (b *Backend) Update(_ context.Context, id string, update domain.TaskUpdate) (*domain.Task, error) {
	rel, lineNum, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}
	absPath := b.resolvePath(rel)

	var merged parsedTask
	err = lineedit.Apply(absPath, lineNum, func(current string) (string, error) {
		p := parseCheckboxLine(current)
		if p == nil {
			return "", domain.BackendError(backendName,
				fmt.Sprintf("line %d of %s is not a checkbox", lineNum, rel), nil)
		}

		merged = *p
		if update.Title != nil {
			merged.Title = *update.Title
		}
		if update.Status != nil {
			merged.Status = *update.Status
		}
		if update.Priority != nil {
			merged.Priority = *update.Priority
		}
		if update.DueSet {
			merged.Due = update.Due
		}
		if update.Tags != nil {
			merged.Tags = *update.Tags
		}
		return formatLine(merged), nil
	})
	if err != nil {
		return nil, b.mapLineError(err, rel, lineNum)
	}

	task := b.taskFromParsed(merged, rel, lineNum)
	return &task, nil
}

// Complete flips the checkbox glyph and leaves every other byte of the line
// alone, including metadata token order.
func (b *Backend) Complete(_ context.Context, id string) error {
	rel, lineNum, err := parseTaskID(id)
	if err != nil {
		return err
	}
	err = lineedit.Apply(b.resolvePath(rel), lineNum, func(line string) (string, error) {
		return strings.Replace(line, "- [ ]", "- [x]", 1), nil
	})
	if err != nil {
		return b.mapLineError(err, rel, lineNum)
	}
	return nil
}

func (b *Backend) Uncomplete(_ context.Context, id string) error {
	rel, lineNum, err := parseTaskID(id)
	if err != nil {
		return err
	}
	err = lineedit.Apply(b.resolvePath(rel), lineNum, func(line string) (string, error) {
		line = strings.Replace(line, "- [x]", "- [ ]", 1)
		return strings.Replace(line, "- [X]", "- [ ]", 1), nil
	})
	if err != nil {
		return b.mapLineError(err, rel, lineNum)
	}
	return nil
}

// Delete removes the physical line from the vault file.
func (b *Backend) Delete(_ context.Context, id string) error {
	rel, lineNum, err := parseTaskID(id)
	if err != nil {
		return err
	}
	if err := lineedit.Delete(b.resolvePath(rel), lineNum); err != nil {
		return b.mapLineError(err, rel, lineNum)
	}
	return nil
}

func (b *Backend) taskFromParsed(p parsedTask, rel string, lineNum int) domain.Task {
	return domain.Task{
		ID:          fmt.Sprintf("%s:%s:%d", backendName, rel, lineNum),
		Title:       p.Title,
		Status:      p.Status,
		Priority:    p.Priority,
		Due:         p.Due,
		Tags:        p.Tags,
		Source:      domain.SourceObsidian,
		SourceLine:  lineNum,
		SourcePath:  b.resolvePath(rel),
		CreatedAt:   p.CreatedAt,
		CompletedAt: p.CompletedAt,
	}
}

func (b *Backend) resolvePath(rel string) string {
	return filepath.Join(b.cfg.VaultPath, filepath.FromSlash(rel))
}

func (b *Backend) mapLineError(err error, rel string, lineNum int) error {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeBackend):
		return err
	case errors.Is(err, lineedit.ErrLineOutOfRange):
		return domain.BackendError(backendName,
			fmt.Sprintf("line %d out of range in %s", lineNum, rel), err)
	default:
		return domain.BackendError(backendName,
			fmt.Sprintf("rewrite %s", rel), err)
	}
}

// parseTaskID decodes "obsidian:<vault-relative-path>:<line>". The split is
// on the last colon because the path itself may contain colons.
func parseTaskID(id string) (string, int, error) {
	rest, ok := strings.CutPrefix(id, backendName+":")
	if !ok {
		return "", 0, domain.ParseError("invalid task ID: %s", id)
	}

	lastColon := strings.LastIndex(rest, ":")
	if lastColon < 0 {
		return "", 0, domain.ParseError("invalid task ID format: %s", id)
	}

	rel := rest[:lastColon]
	lineNum, err := strconv.Atoi(rest[lastColon+1:])
	if err != nil {
		return "", 0, domain.ParseError("invalid line number in task ID: %s", id)
	}
	return rel, lineNum, nil
}

// OpenCommand builds an argv that opens a task's source file at its line in
// $EDITOR. It returns nil when the task has no file position or EDITOR is
// unset; the caller decides whether and how to execute it.
func OpenCommand(task domain.Task) []string {
	if task.SourcePath == "" {
		return nil
	}
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return nil
	}
	line := task.SourceLine
	if line < 1 {
		line = 1
	}
	return []string{editor, fmt.Sprintf("+%d", line), task.SourcePath}
}
