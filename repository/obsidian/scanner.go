package obsidian

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Scanner discovers markdown files under a vault root. Dot-prefixed entries
// below the root are excluded, configured folder names are pruned without
// descent, and an optional allow-list restricts results to files whose
// vault-relative path starts with one of the listed folder prefixes.
//
// Symbolic links are followed. Output order is whatever the directory walk
// yields; callers that need an order sort downstream.
type Scanner struct {
	root    string
	folders []string
	ignore  []string
}

// NewScanner builds a scanner rooted at the vault path. A nil or empty
// folders slice means every non-ignored markdown file qualifies.
func NewScanner(root string, folders, ignoreFolders []string) *Scanner {
	trimmed := make([]string, 0, len(folders))
	for _, f := range folders {
		trimmed = append(trimmed, strings.TrimSuffix(f, "/"))
	}
	return &Scanner{root: root, folders: trimmed, ignore: ignoreFolders}
}

// MarkdownFiles walks the vault and returns absolute paths of candidate
// files. Unreadable directories are skipped rather than failing the walk.
func (s *Scanner) MarkdownFiles() []string {
	visited := map[string]bool{}
	if resolved, err := filepath.EvalSymlinks(s.root); err == nil {
		visited[resolved] = true
	}

	var files []string
	s.walk(s.root, visited, &files)
	return files
}

func (s *Scanner) walk(dir string, visited map[string]bool, files *[]string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		full := filepath.Join(dir, name)
		isDir := entry.IsDir()
		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(full)
			if err != nil {
				continue
			}
			isDir = info.IsDir()
		}

		if isDir {
			if s.ignored(name) {
				continue
			}
			// Loop guard for symlink cycles.
			resolved, err := filepath.EvalSymlinks(full)
			if err != nil || visited[resolved] {
				continue
			}
			visited[resolved] = true
			s.walk(full, visited, files)
			continue
		}

		if filepath.Ext(name) != ".md" {
			continue
		}
		if !s.allowed(full) {
			continue
		}
		*files = append(*files, full)
	}
}

func (s *Scanner) ignored(name string) bool {
	for _, folder := range s.ignore {
		if name == folder {
			return true
		}
	}
	return false
}

func (s *Scanner) allowed(path string) bool {
	if len(s.folders) == 0 {
		return true
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, folder := range s.folders {
		if rel == folder || strings.HasPrefix(rel, folder+"/") {
			return true
		}
	}
	return false
}
