package localfile

import (
	"strings"
	"time"

	"github.com/zachfleeman/tasuki/domain"
)

// parsedLine is the field set one todo.txt-style line can carry.
type parsedLine struct {
	Title       string
	Status      domain.Status
	Priority    domain.Priority
	Due         *time.Time
	CreatedAt   *time.Time
	CompletedAt *time.Time
	Tags        []string
}

// parseLine decodes a single line of the todo file. It reports false for
// blank lines, comment lines and lines whose title reduces to nothing.
//
// Parsing is greedy and never backtracks: a malformed date where one is
// expected is simply left for the title.
func parseLine(raw string) (parsedLine, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return parsedLine{}, false
	}

	p := parsedLine{Status: domain.StatusPending}
	rest := line

	if strings.HasPrefix(rest, "x ") {
		p.Status = domain.StatusDone
		rest = strings.TrimLeft(rest[2:], " \t")
		if d, remaining, ok := cutDatePrefix(rest); ok {
			p.CompletedAt = &d
			rest = remaining
		}
	}

	switch {
	case strings.HasPrefix(rest, "(p1)"):
		p.Priority = domain.PriorityHigh
		rest = strings.TrimLeft(rest[4:], " \t")
	case strings.HasPrefix(rest, "(p2)"):
		p.Priority = domain.PriorityMedium
		rest = strings.TrimLeft(rest[4:], " \t")
	case strings.HasPrefix(rest, "(p3)"):
		p.Priority = domain.PriorityLow
		rest = strings.TrimLeft(rest[4:], " \t")
	}

	if d, remaining, ok := cutDatePrefix(rest); ok {
		p.CreatedAt = &d
		rest = remaining
	}

	var titleParts []string
	for _, word := range strings.Fields(rest) {
		if tag, ok := strings.CutPrefix(word, "#"); ok {
			if tag != "" {
				p.Tags = append(p.Tags, tag)
			}
			continue
		}
		if val, ok := strings.CutPrefix(word, "due:"); ok {
			if d, err := domain.ParseDate(val); err == nil {
				p.Due = &d
				continue
			}
		}
		titleParts = append(titleParts, word)
	}

	p.Title = strings.Join(titleParts, " ")
	if p.Title == "" {
		return parsedLine{}, false
	}
	return p, true
}

// cutDatePrefix consumes a leading ISO date and any whitespace after it.
func cutDatePrefix(s string) (time.Time, string, bool) {
	s = strings.TrimLeft(s, " \t")
	if len(s) < len(domain.DateLayout) {
		return time.Time{}, s, false
	}
	d, err := domain.ParseDate(s[:len(domain.DateLayout)])
	if err != nil {
		return time.Time{}, s, false
	}
	return d, strings.TrimLeft(s[len(domain.DateLayout):], " \t"), true
}

// formatLine renders fields in canonical order: status prefix with completion
// date, priority, creation date, title, tags, due. Parsing a formatted line
// yields the same fields back; adversarial inputs are canonicalized instead
// of preserved.
func formatLine(p parsedLine) string {
	var parts []string

	if p.Status == domain.StatusDone {
		parts = append(parts, "x")
		if p.CompletedAt != nil {
			parts = append(parts, domain.FormatDate(*p.CompletedAt))
		}
	}

	switch p.Priority {
	case domain.PriorityHigh:
		parts = append(parts, "(p1)")
	case domain.PriorityMedium:
		parts = append(parts, "(p2)")
	case domain.PriorityLow:
		parts = append(parts, "(p3)")
	}

	if p.CreatedAt != nil {
		parts = append(parts, domain.FormatDate(*p.CreatedAt))
	}

	parts = append(parts, p.Title)

	for _, tag := range p.Tags {
		parts = append(parts, "#"+tag)
	}

	if p.Due != nil {
		parts = append(parts, "due:"+domain.FormatDate(*p.Due))
	}

	return strings.Join(parts, " ")
}
