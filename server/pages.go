package server

import (
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-intern-portal/dates"
	"github.com/jrsteele09/go-intern-portal/portalapi"
	"github.com/jrsteele09/go-intern-portal/resume"
	"github.com/rs/zerolog/log"
)

// PageData is the template model shared by all pages and fragments.
type PageData struct {
	AppName string
	Title   string
	Error   string
	Notice  string
	Email   string // Preserve email on error
	Next    string

	Identity  *portalapi.Identity
	ExpiresOn string

	Accept string
	Busy   bool
	Upload *UploadView
}

// UploadView is one finished résumé upload as shown on the home page.
type UploadView struct {
	Filename   string
	Error      string
	UploadedOn string
	Draft      resume.ApplicationDraft
}

func newUploadView(result resume.Result) *UploadView {
	view := &UploadView{
		Filename:   result.Filename,
		UploadedOn: dates.FormatTime(result.At),
	}
	if result.Err != nil {
		view.Error = uploadErrorMessage(result.Err)
		return view
	}
	view.Draft = resume.Autofill(result.Payload)
	return view
}

func (s *Server) page(title string) PageData {
	return PageData{AppName: s.config.GetAppName(), Title: title}
}

func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}

func mustParsePartial() *template.Template {
	tmpl, err := ParsePartial()
	if err != nil {
		panic("Failed to parse partial templates: " + err.Error())
	}
	return tmpl
}

func renderPage(w http.ResponseWriter, tmpl *template.Template, status int, data PageData) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
	}
}

func renderFragment(w http.ResponseWriter, partials *template.Template, name string, data any) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusOK)
	if err := partials.ExecuteTemplate(w, name, data); err != nil {
		log.Err(err).Str("template", name).Msg("Failed to render fragment")
	}
}
