package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/zachfleeman/tasuki/domain"
	"github.com/zachfleeman/tasuki/internal/config"
	"github.com/zachfleeman/tasuki/pkg/logger"
	"github.com/zachfleeman/tasuki/repository"
	"github.com/zachfleeman/tasuki/repository/localfile"
	"github.com/zachfleeman/tasuki/repository/obsidian"
	"github.com/zachfleeman/tasuki/usecase/tasks"
)

type options struct {
	configPath string
	jsonOut    bool

	search string
	status string

	add      string
	priority string
	due      string
	tags     string
	backend  string

	done   string
	undone string
	remove string
	edit   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to config.toml (default: user config dir)")
	flag.BoolVar(&opts.jsonOut, "json", false, "emit JSON instead of the colored list")
	flag.StringVar(&opts.search, "search", "", "case-insensitive title substring filter")
	flag.StringVar(&opts.status, "status", "pending", "status filter: pending, done or all")
	flag.StringVar(&opts.add, "add", "", "create a task with this title")
	flag.StringVar(&opts.priority, "priority", "", "priority for -add: p1, p2 or p3")
	flag.StringVar(&opts.due, "due", "", "due date for -add (YYYY-MM-DD)")
	flag.StringVar(&opts.tags, "tags", "", "comma-separated tags for -add")
	flag.StringVar(&opts.backend, "backend", "", "target backend for -add: local or obsidian")
	flag.StringVar(&opts.done, "done", "", "mark the task with this ID done")
	flag.StringVar(&opts.undone, "undone", "", "mark the task with this ID pending")
	flag.StringVar(&opts.remove, "rm", "", "delete the task with this ID")
	flag.StringVar(&opts.edit, "edit", "", "open the source file of this task ID in $EDITOR")
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fail(opts.jsonOut, err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	var backends []repository.TaskBackend
	if cfg.Backends.Local.Enabled {
		backends = append(backends, localfile.New(localfile.Config{
			Path: cfg.Backends.Local.Path,
		}, zapLogger))
	}
	if cfg.Backends.Obsidian.Enabled {
		obsCfg := obsidian.Config{
			VaultPath:     cfg.Backends.Obsidian.VaultPath,
			Folders:       cfg.Backends.Obsidian.Folders,
			IgnoreFolders: cfg.Backends.Obsidian.IgnoreFolders,
			InboxFile:     cfg.Backends.Obsidian.InboxFile,
		}
		if !obsCfg.IsObsidianVault() {
			zapLogger.Warn("vault_path has no .obsidian directory",
				zap.String("path", obsCfg.VaultPath))
		}
		backends = append(backends, obsidian.New(obsCfg, zapLogger))
	}

	svc := tasks.New(backends, zapLogger)
	if !svc.HasBackends() {
		fail(opts.jsonOut, domain.ErrNoBackends)
	}

	ctx := context.Background()
	if err := run(ctx, svc, opts); err != nil {
		fail(opts.jsonOut, err)
	}
}

func run(ctx context.Context, svc *tasks.Service, opts options) error {
	switch {
	case opts.add != "":
		return addTask(ctx, svc, opts)
	case opts.done != "":
		return svc.CompleteTask(ctx, opts.done)
	case opts.undone != "":
		return svc.UncompleteTask(ctx, opts.undone)
	case opts.remove != "":
		return svc.DeleteTask(ctx, opts.remove)
	case opts.edit != "":
		return editTask(ctx, svc, opts.edit)
	default:
		return listTasks(ctx, svc, opts)
	}
}

func listTasks(ctx context.Context, svc *tasks.Service, opts options) error {
	filter := repository.TaskFilter{Search: opts.search}
	switch opts.status {
	case "pending":
		s := domain.StatusPending
		filter.Status = &s
	case "done":
		s := domain.StatusDone
		filter.Status = &s
	case "all", "":
	default:
		return domain.NewError(domain.ErrCodeConfig,
			fmt.Sprintf("unknown status %q (want pending, done or all)", opts.status))
	}

	list, err := svc.AllTasks(ctx, filter)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return printJSON(list)
	}
	printList(list)
	return nil
}

func addTask(ctx context.Context, svc *tasks.Service, opts options) error {
	task := domain.NewTask{
		Title:  opts.add,
		Source: domain.Source(opts.backend),
	}

	switch opts.priority {
	case "":
	case "p1":
		task.Priority = domain.PriorityHigh
	case "p2":
		task.Priority = domain.PriorityMedium
	case "p3":
		task.Priority = domain.PriorityLow
	default:
		return domain.NewError(domain.ErrCodeConfig,
			fmt.Sprintf("unknown priority %q (want p1, p2 or p3)", opts.priority))
	}

	if opts.due != "" {
		due, err := domain.ParseDate(opts.due)
		if err != nil {
			return domain.ParseError("invalid due date %q", opts.due)
		}
		task.Due = &due
	}
	if opts.tags != "" {
		for _, tag := range strings.Split(opts.tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				task.Tags = append(task.Tags, tag)
			}
		}
	}

	created, err := svc.CreateTask(ctx, task)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		return printJSON(created)
	}
	fmt.Printf("created %s\n", created.ID)
	return nil
}

// editTask re-fetches to resolve the ID to a file position, then hands the
// terminal over to $EDITOR.
func editTask(ctx context.Context, svc *tasks.Service, id string) error {
	list, err := svc.AllTasks(ctx, repository.TaskFilter{})
	if err != nil {
		return err
	}
	for _, task := range list {
		if task.ID != id {
			continue
		}
		argv := obsidian.OpenCommand(task)
		if argv == nil {
			return domain.NewError(domain.ErrCodeConfig, "no $EDITOR set or task has no source file")
		}
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		return cmd.Run()
	}
	return domain.ErrTaskNotFound
}

func printList(list []domain.Task) {
	if len(list) == 0 {
		fmt.Println("no tasks")
		return
	}

	checkDone := color.New(color.FgGreen)
	overdue := color.New(color.FgRed)
	dueToday := color.New(color.FgYellow)
	dim := color.New(color.Faint)
	prio := color.New(color.FgMagenta)

	today := time.Now()
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	for _, task := range list {
		box := "[ ]"
		if task.Status == domain.StatusDone {
			box = checkDone.Sprint("[x]")
		}
		fmt.Printf("%s %s %s", task.Source.Icon(), box, task.Title)

		switch task.Priority {
		case domain.PriorityHigh:
			fmt.Printf(" %s", prio.Sprint("!!!"))
		case domain.PriorityMedium:
			fmt.Printf(" %s", prio.Sprint("!!"))
		case domain.PriorityLow:
			fmt.Printf(" %s", prio.Sprint("!"))
		}

		if task.Due != nil {
			label := domain.FormatDate(*task.Due)
			switch {
			case task.Due.Before(todayStart):
				label = overdue.Sprint(label)
			case task.Due.Before(todayStart.AddDate(0, 0, 1)):
				label = dueToday.Sprint(label)
			}
			fmt.Printf(" due:%s", label)
		}

		for _, tag := range task.Tags {
			fmt.Printf(" %s", dim.Sprint("#"+tag))
		}
		fmt.Printf("  %s\n", dim.Sprint(task.ID))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.WrapError(domain.ErrCodeJSON, "encode output", err)
	}
	return nil
}

// fail prints the error in the selected output mode and exits non-zero.
func fail(jsonOut bool, err error) {
	if jsonOut {
		code := domain.ErrCodeBackend
		var dErr *domain.Error
		if errors.As(err, &dErr) {
			code = dErr.Code
		}
		payload := map[string]any{
			"error": map[string]string{
				"code":    string(code),
				"message": err.Error(),
			},
		}
		_ = json.NewEncoder(os.Stderr).Encode(payload)
	} else {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
	}
	os.Exit(1)
}
