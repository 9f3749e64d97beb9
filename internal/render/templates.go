package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates lists the page templates; each is parsed on top of its own
// clone of the base layout so their "content" blocks don't collide.
var pageTemplates = []string{
	"module", "struct", "enum", "trait", "function", "type_alias", "constant", "macro",
}

type templateSet struct {
	pages map[string]*template.Template
}

func loadTemplates() (*templateSet, error) {
	base, err := template.New("base.html").ParseFS(templateFS, "templates/base.html", "templates/sidebar.html")
	if err != nil {
		return nil, &TemplateError{Template: "base", Err: err}
	}

	set := &templateSet{pages: make(map[string]*template.Template, len(pageTemplates))}
	for _, name := range pageTemplates {
		clone, err := base.Clone()
		if err != nil {
			return nil, &TemplateError{Template: name, Err: err}
		}
		t, err := clone.ParseFS(templateFS, fmt.Sprintf("templates/%s.html", name))
		if err != nil {
			return nil, &TemplateError{Template: name, Err: err}
		}
		set.pages[name] = t
	}
	return set, nil
}

// render executes the named page template with data.
func (s *templateSet) render(name string, data any) (string, error) {
	t, ok := s.pages[name]
	if !ok {
		return "", &TemplateError{Template: name}
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return "", &TemplateError{Template: name, Err: err}
	}
	return buf.String(), nil
}
