// Package lineedit rewrites a single physical line of a text file in place.
// Both file backends use it for their locator-addressed mutations.
package lineedit

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrLineOutOfRange reports a 1-indexed line number that is not inside the
// file. Callers can match it with errors.Is.
var ErrLineOutOfRange = errors.New("line out of range")

// splitLines breaks content into physical lines and reports whether the
// original content ended with a newline, so a rewrite can preserve it.
func splitLines(content string) (lines []string, trailingNewline bool) {
	if content == "" {
		return nil, false
	}
	trailingNewline = strings.HasSuffix(content, "\n")
	trimmed := strings.TrimSuffix(content, "\n")
	if trimmed == "" {
		return []string{""}, trailingNewline
	}
	return strings.Split(trimmed, "\n"), trailingNewline
}

func joinLines(lines []string, trailingNewline bool) string {
	out := strings.Join(lines, "\n")
	if trailingNewline && out != "" {
		out += "\n"
	}
	return out
}

// Apply replaces the 1-indexed line of the file at path with the result of
// transform. The whole file is read, the single line rewritten, and the file
// written back; presence or absence of a trailing newline is preserved. A
// transform error aborts before anything is written.
func Apply(path string, line int, transform func(string) (string, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lines, trailing := splitLines(string(data))
	if line <= 0 || line > len(lines) {
		return fmt.Errorf("line %d of %s (file has %d lines): %w", line, path, len(lines), ErrLineOutOfRange)
	}

	replaced, err := transform(lines[line-1])
	if err != nil {
		return err
	}
	lines[line-1] = replaced

	return os.WriteFile(path, []byte(joinLines(lines, trailing)), 0o644)
}

// Delete removes the 1-indexed line of the file at path, with the same
// bounds discipline and trailing-newline preservation as Apply.
func Delete(path string, line int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lines, trailing := splitLines(string(data))
	if line <= 0 || line > len(lines) {
		return fmt.Errorf("line %d of %s (file has %d lines): %w", line, path, len(lines), ErrLineOutOfRange)
	}

	lines = append(lines[:line-1], lines[line:]...)

	return os.WriteFile(path, []byte(joinLines(lines, trailing)), 0o644)
}
