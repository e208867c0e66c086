package site

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const formulasFile = "formulas.md"

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed content/*.md
var contentFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// StaticFS returns an http.FileSystem for the embedded stylesheet.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

func parsePage(file string) (*template.Template, error) {
	return template.New(file).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+file)
}

// renderMarkdown converts an embedded content file to HTML. The content is
// part of the binary, so its HTML is trusted.
func renderMarkdown(name string) (template.HTML, error) {
	src, err := contentFS.ReadFile("content/" + name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // embedded content
}
