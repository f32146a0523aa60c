package prompt

import (
	"fmt"
	"strings"
)

// MissingParameterError is a programming/config error: the template was
// asked to render without every required placeholder. Nothing partial
// is ever rendered.
type MissingParameterError struct {
	Template string
	Missing  []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("template %s is missing required parameters: %s", e.Template, strings.Join(e.Missing, ", "))
}

// Template is a named, parameterized text template. Placeholders use
// the {name} form.
type Template struct {
	Name        string
	Description string
	Required    []string
	Text        string
}

// MissingParameters returns the required placeholders absent from params.
func (t Template) MissingParameters(params map[string]any) []string {
	var missing []string
	for _, name := range t.Required {
		if v, ok := params[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

func (t Template) Validate(params map[string]any) error {
	if missing := t.MissingParameters(params); len(missing) > 0 {
		return &MissingParameterError{Template: t.Name, Missing: missing}
	}
	return nil
}

func (t Template) Render(params map[string]any) (string, error) {
	if err := t.Validate(params); err != nil {
		return "", err
	}

	rendered := t.Text
	for name, value := range params {
		rendered = strings.ReplaceAll(rendered, "{"+name+"}", fmt.Sprint(value))
	}

	return rendered, nil
}
