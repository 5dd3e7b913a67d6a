// Package view renders the HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"attendance/internal/dto"
	"attendance/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	IndexPage    = "index.html"
	RegisterPage = "register.html"
	StudentsPage = "students.html"
	LoginPage    = "login.html"
)

type IndexData struct {
	Date    string
	Entries []model.AttendanceEntry
	Auth    bool
}

type RegisterData struct {
	Name   string
	Stream string
	Error  string
	Auth   bool
}

type StudentsData struct {
	Students []dto.StudentView
	Auth     bool
}

type LoginData struct {
	Error string
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes page with the given status. Nothing is written when the
// template fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
