package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-intern-portal/portalapi"
	"github.com/jrsteele09/go-intern-portal/resume"
	"github.com/rs/zerolog/log"
)

const (
	resumeFormField       = "resume"
	multipartOverhead     = 1 << 20
	multipartMemory       = 1 << 20
	uploadFallbackMessage = "Upload failed"
)

type uploadResponse struct {
	Status         string                   `json:"status"`
	Filename       string                   `json:"filename,omitempty"`
	Payload        json.RawMessage          `json:"payload,omitempty"`
	Draft          *resume.ApplicationDraft `json:"draft,omitempty"`
	ArchiveKey     string                   `json:"archive_key,omitempty"`
	Error          string                   `json:"error,omitempty"`
	UpstreamStatus int                      `json:"upstream_status,omitempty"`
}

// ResumeUploadHandler feeds the uploaded file to the widget (POST /resume/upload). htmx gets
// the result fragment, other clients get JSON with a status code matching the outcome.
func (s *Server) ResumeUploadHandler() http.HandlerFunc {
	partials := mustParsePartial()

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.GetMaxUploadBytes()+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.uploadFailed(w, r, partials, "", resume.ErrFileTooLarge)
				return
			}
			s.uploadFailed(w, r, partials, "", errors.New("no file uploaded"))
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		file, header, err := r.FormFile(resumeFormField)
		if err != nil {
			s.uploadFailed(w, r, partials, "", errors.New("no file uploaded"))
			return
		}
		defer file.Close()

		result, err := s.widget.Upload(r.Context(), header.Filename, file)
		if errors.Is(err, resume.ErrBusy) {
			s.uploadFailed(w, r, partials, header.Filename, err)
			return
		}

		if isHTMXRequest(r) {
			renderFragment(w, partials, "resume_result", PageData{Upload: newUploadView(result)})
			return
		}
		if err != nil {
			writeJSON(w, uploadStatusCode(err), uploadResponse{
				Status:         result.Status(),
				Filename:       result.Filename,
				Error:          uploadErrorMessage(err),
				UpstreamStatus: portalapi.StatusCode(err),
			})
			return
		}

		draft := resume.Autofill(result.Payload)
		resp := uploadResponse{
			Status:     result.Status(),
			Filename:   result.Filename,
			Draft:      &draft,
			ArchiveKey: result.ArchiveKey,
		}
		if result.Payload != nil {
			resp.Payload = result.Payload.Raw
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// uploadFailed answers for failures that never reached the widget's state.
func (s *Server) uploadFailed(w http.ResponseWriter, r *http.Request, partials *template.Template, filename string, err error) {
	log.Info().Err(err).Str("file", filename).Msg("Resume upload refused")
	if isHTMXRequest(r) {
		renderFragment(w, partials, "resume_result", PageData{Upload: &UploadView{Filename: filename, Error: uploadErrorMessage(err)}})
		return
	}
	writeJSON(w, uploadStatusCode(err), uploadResponse{Status: "failure", Filename: filename, Error: uploadErrorMessage(err)})
}

func uploadStatusCode(err error) int {
	switch {
	case errors.Is(err, resume.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, resume.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, resume.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	var apiErr *portalapi.APIError
	var transportErr *portalapi.TransportError
	if errors.As(err, &apiErr) || errors.As(err, &transportErr) || errors.Is(err, portalapi.ErrMalformedReply) {
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, resume.ErrBusy):
		return "An upload is already in progress"
	case errors.Is(err, resume.ErrUnsupportedFile):
		return "Please choose a .pdf or .docx file"
	case errors.Is(err, resume.ErrFileTooLarge):
		return "The file is too large"
	}
	return portalapi.FirstMessage(err, uploadFallbackMessage, portalapi.ServerDetail, portalapi.TransportMessage, plainMessage)
}

// plainMessage is the error text itself, for errors raised before the API was called.
func plainMessage(err error) string {
	var apiErr *portalapi.APIError
	var transportErr *portalapi.TransportError
	if errors.As(err, &apiErr) || errors.As(err, &transportErr) {
		return ""
	}
	return err.Error()
}
