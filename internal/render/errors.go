package render

import (
	"errors"
	"fmt"
)

// ErrTemplate indicates a page template is missing or failed to execute.
var ErrTemplate = errors.New("template error")

// TemplateError reports a template failure for one page.
type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("template %q not found", e.Template)
	}
	return fmt.Sprintf("executing template %q: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTemplate}
	}
	return []error{ErrTemplate, e.Err}
}
