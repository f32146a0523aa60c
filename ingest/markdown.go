package ingest

import (
	"context"
	"strings"
)

type markdownExtractor struct{}

// Extract splits the file on horizontal rules, one logical document per
// section, and records the section's leading heading in metadata. Code
// blocks and blockquotes stay part of their section's text.
func (e *markdownExtractor) Extract(ctx context.Context, name string, content []byte) ([]Document, error) {
	sections := splitOnHorizontalRules(string(content))

	out := make([]Document, 0, len(sections))
	for _, section := range sections {
		trimmed := strings.TrimSpace(section)
		if len(trimmed) == 0 {
			continue
		}

		metadata := map[string]any{}
		if heading := leadingHeading(trimmed); len(heading) > 0 {
			metadata["section"] = heading
		}

		out = append(out, Document{
			Text:     trimmed,
			Metadata: metadata,
		})
	}

	if len(out) == 0 {
		return nil, ErrExtractionFailed
	}

	return out, nil
}

func splitOnHorizontalRules(text string) []string {
	lines := strings.Split(text, "\n")

	var sections []string
	var current []string

	for _, line := range lines {
		if isHorizontalRule(line) {
			sections = append(sections, strings.Join(current, "\n"))
			current = nil
			continue
		}
		current = append(current, line)
	}

	sections = append(sections, strings.Join(current, "\n"))

	return sections
}

func isHorizontalRule(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}

	for _, marker := range []string{"-", "*", "_"} {
		if trimmed == strings.Repeat(marker, len(trimmed)) {
			return true
		}
	}

	return false
}

func leadingHeading(section string) string {
	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
		return ""
	}
	return ""
}

func NewMarkdownExtractor() Extractor {
	return &markdownExtractor{}
}
