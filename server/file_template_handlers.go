package server

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"

	"github.com/jrsteele09/go-intern-portal/dates"
)

//go:embed templates/*
var templateFiles embed.FS

const partialsGlob = "partials/*.html"

var templateFuncs = template.FuncMap{
	"date": dates.FormatTime,
	"join": strings.Join,
}

func TemplateFilesFS() fs.FS {
	// Create the sub filesystem once
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page from the embedded filesystem together with the shared partials.
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), name, partialsGlob)
}

// ParsePartial parses only the shared partials, for fragment responses.
func ParsePartial() (*template.Template, error) {
	return template.New("partials").Funcs(templateFuncs).ParseFS(TemplateFilesFS(), partialsGlob)
}
