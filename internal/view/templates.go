// Package view renders the embedded document and email templates. The SPA
// owns all interactive pages; this engine only produces server-generated
// HTML such as invoice PDFs and outbound mail bodies.
package view

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rentfold/rentfold/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// NewEngine parses the embedded templates at startup.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": formatDate,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/documents/*.html", "templates/email/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template into a string.
func (e *Engine) Render(name string, data any) (string, error) {
	if e == nil {
		return "", fmt.Errorf("template engine not initialised")
	}
	var sb strings.Builder
	if err := e.templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// formatDate accepts both time.Time and *time.Time since document data mixes
// required and optional timestamps.
func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006")
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006")
	}
	return ""
}
