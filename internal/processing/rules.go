package processing

import (
	"regexp"
	"strings"
	"unicode"
)

// ControlCharRule strips control characters other than newlines and tabs.
// OCR and broken encodings leave these in extracted text.
type ControlCharRule struct{}

func (r *ControlCharRule) Name() string { return "control_chars" }

func (r *ControlCharRule) Apply(text string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))
	for _, ch := range text {
		if ch == '\n' || ch == '\t' || !unicode.IsControl(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String(), nil
}

var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(©|\(c\)|bản quyền|copyright)`),
	regexp.MustCompile(`(?i)^\s*(cookie|javascript|đang tải)\b`),
	regexp.MustCompile(`(?i)^\s*(xem thêm|đọc thêm|chia sẻ|in trang)\s*$`),
}

// BoilerplateRule drops lines that are site chrome rather than content,
// like copyright footers and share buttons.
type BoilerplateRule struct{}

func (r *BoilerplateRule) Name() string { return "boilerplate" }

func (r *BoilerplateRule) Apply(text string) (string, error) {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isBoilerplate(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), nil
}

func isBoilerplate(line string) bool {
	for _, pattern := range boilerplatePatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// DuplicateLineRule collapses consecutive identical non-empty lines.
// Repeated nav entries survive HTML extraction as duplicated text.
type DuplicateLineRule struct{}

func (r *DuplicateLineRule) Name() string { return "duplicate_lines" }

func (r *DuplicateLineRule) Apply(text string) (string, error) {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	prev := ""
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && trimmed == prev {
			continue
		}
		kept = append(kept, line)
		prev = trimmed
	}
	return strings.Join(kept, "\n"), nil
}

var (
	spaceRuns = regexp.MustCompile(`[ \t]+`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// WhitespaceRule collapses runs of spaces and blank lines. Runs last so it
// tidies up whatever the other rules left behind.
type WhitespaceRule struct{}

func (r *WhitespaceRule) Name() string { return "whitespace" }

func (r *WhitespaceRule) Apply(text string) (string, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(spaceRuns.ReplaceAllString(line, " "), " ")
	}
	out := strings.Join(lines, "\n")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out), nil
}
