package obsidian

import (
	"strings"
	"time"

	"github.com/zachfleeman/tasuki/domain"
)

// Metadata glyphs recognized inside a checkbox line. The date glyphs bind to
// the immediately following token only when it is a valid ISO date; the
// skip-with-value glyphs mark annotations this codec does not model and are
// discarded together with their value token.
var (
	priorityGlyphs = map[string]domain.Priority{
		"⏫": domain.PriorityHigh,
		"🔺": domain.PriorityHigh,
		"🔼": domain.PriorityMedium,
		"🔽": domain.PriorityLow,
		"⏬": domain.PriorityLow,
	}

	dueGlyphs = map[string]bool{"📅": true, "🗓️": true, "🗓": true}

	skipWithValueGlyphs = map[string]bool{"⏳": true, "🛫": true, "🆔": true, "⛔": true, "🍅": true}

	inlinePriorities = map[string]domain.Priority{
		"(p1)": domain.PriorityHigh,
		"(p2)": domain.PriorityMedium,
		"(p3)": domain.PriorityLow,
	}
)

const (
	completedGlyph  = "✅"
	createdGlyph    = "➕"
	recurrenceGlyph = "🔁"
)

// parsedTask is the field set one checkbox line can carry.
type parsedTask struct {
	Title       string
	Status      domain.Status
	Priority    domain.Priority
	Due         *time.Time
	CompletedAt *time.Time
	CreatedAt   *time.Time
	Tags        []string
}

// parseCheckboxLine decodes one markdown checkbox line. Only "- [ ]",
// "- [x]" and "- [X]" bullets count; everything else, including asterisk
// bullets, returns nil. A line whose title scans down to nothing is nil too.
func parseCheckboxLine(line string) *parsedTask {
	trimmed := strings.TrimLeft(line, " \t")

	var status domain.Status
	switch {
	case strings.HasPrefix(trimmed, "- [ ]"):
		status = domain.StatusPending
	case strings.HasPrefix(trimmed, "- [x]"), strings.HasPrefix(trimmed, "- [X]"):
		status = domain.StatusDone
	default:
		return nil
	}

	rest := strings.TrimSpace(trimmed[len("- [ ]"):])
	if rest == "" {
		return nil
	}

	p := &parsedTask{Status: status}
	var titleParts []string

	tokens := strings.Fields(rest)
	i := 0
	for i < len(tokens) {
		tok := tokens[i]

		if prio, ok := priorityGlyphs[tok]; ok {
			p.Priority = prio
			i++
			continue
		}

		if dueGlyphs[tok] {
			if d, ok := dateAt(tokens, i+1); ok {
				p.Due = &d
				i += 2
				continue
			}
		}
		if tok == completedGlyph {
			if d, ok := dateAt(tokens, i+1); ok {
				p.CompletedAt = &d
				i += 2
				continue
			}
		}
		if tok == createdGlyph {
			if d, ok := dateAt(tokens, i+1); ok {
				p.CreatedAt = &d
				i += 2
				continue
			}
		}

		if skipWithValueGlyphs[tok] {
			i += 2
			continue
		}

		if tok == recurrenceGlyph {
			// Discard the free-text recurrence phrase up to the next
			// metadata-shaped token.
			i++
			for i < len(tokens) && !isMetadataToken(tokens[i]) {
				i++
			}
			continue
		}

		if prio, ok := inlinePriorities[tok]; ok {
			p.Priority = prio
			i++
			continue
		}

		if tag, ok := strings.CutPrefix(tok, "#"); ok {
			if tag != "" {
				p.Tags = append(p.Tags, tag)
			}
			i++
			continue
		}

		if val, ok := strings.CutPrefix(tok, "due:"); ok {
			if d, err := domain.ParseDate(val); err == nil {
				p.Due = &d
				i++
				continue
			}
		}

		titleParts = append(titleParts, tok)
		i++
	}

	p.Title = strings.Join(titleParts, " ")
	if p.Title == "" {
		return nil
	}
	return p
}

// locatedTask pairs a parsed checkbox with its 1-indexed physical line.
type locatedTask struct {
	Line int
	Task parsedTask
}

// parseContent scans a whole markdown file. Any trimmed line starting with a
// triple backtick toggles the code-fence flag; fenced lines are never
// checked against the checkbox grammar.
func parseContent(content string) []locatedTask {
	var results []locatedTask
	inCodeBlock := false

	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			continue
		}

		if p := parseCheckboxLine(line); p != nil {
			results = append(results, locatedTask{Line: i + 1, Task: *p})
		}
	}

	return results
}

func dateAt(tokens []string, idx int) (time.Time, bool) {
	if idx >= len(tokens) {
		return time.Time{}, false
	}
	d, err := domain.ParseDate(tokens[idx])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func isMetadataToken(tok string) bool {
	if _, ok := priorityGlyphs[tok]; ok {
		return true
	}
	if _, ok := inlinePriorities[tok]; ok {
		return true
	}
	if dueGlyphs[tok] || skipWithValueGlyphs[tok] {
		return true
	}
	switch tok {
	case completedGlyph, createdGlyph, recurrenceGlyph:
		return true
	}
	return strings.HasPrefix(tok, "#") || strings.HasPrefix(tok, "due:")
}

// formatLine renders a checkbox line in canonical order: checkbox, title,
// priority glyph, due glyph and date, tags. Metadata the codec does not
// model (creation and completion dates, recurrence, skipped annotations) is
// not emitted; update paths that go through this are deliberately lossy.
func formatLine(p parsedTask) string {
	checkbox := "- [ ]"
	if p.Status == domain.StatusDone {
		checkbox = "- [x]"
	}

	var sb strings.Builder
	sb.WriteString(checkbox)
	sb.WriteString(" ")
	sb.WriteString(p.Title)

	switch p.Priority {
	case domain.PriorityHigh:
		sb.WriteString(" ⏫")
	case domain.PriorityMedium:
		sb.WriteString(" 🔼")
	case domain.PriorityLow:
		sb.WriteString(" 🔽")
	}

	if p.Due != nil {
		sb.WriteString(" 📅 ")
		sb.WriteString(domain.FormatDate(*p.Due))
	}

	for _, tag := range p.Tags {
		sb.WriteString(" #")
		sb.WriteString(tag)
	}

	return sb.String()
}
