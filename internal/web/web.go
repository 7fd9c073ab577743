// Package web holds the server-rendered views.
package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// View names accepted by gin's c.HTML.
const (
	LoginView = "login.tmpl"
	ChatView  = "chat.tmpl"
	ErrorView = "error.tmpl"
)

// Templates parses the embedded views. It panics on a malformed template,
// which can only happen at build time.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"clock": func(t time.Time) string { return t.Local().Format("15:04") },
	}).ParseFS(templateFS, "templates/*.tmpl"))
}
