// Package resume holds the résumé upload widget: one upload in flight at a time, an explicit
// error state and a callback that hears about both outcomes.
package resume

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	perrors "github.com/jrsteele09/go-intern-portal/internal/errors"
	"github.com/jrsteele09/go-intern-portal/portalapi"
	"github.com/rs/zerolog/log"
)

var (
	ErrBusy            = perrors.ErrBusy
	ErrUnsupportedFile = perrors.ErrUnsupportedFile
	ErrFileTooLarge    = perrors.ErrFileTooLarge
)

var DefaultExtensions = []string{".pdf", ".docx"}

const DefaultMaxBytes int64 = 10 << 20

// Uploader sends the file to the parsing service.
type Uploader interface {
	UploadResume(ctx context.Context, filename string, file io.Reader) (*portalapi.ParsedResume, error)
}

// Result is what the callback receives. Exactly one of Payload and Err is set.
type Result struct {
	Filename   string
	Payload    *portalapi.ParsedResume
	Err        error
	ArchiveKey string
	At         time.Time
}

func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Status is "success" or "failure".
func (r Result) Status() string {
	if r.Succeeded() {
		return "success"
	}
	return "failure"
}

// Callback receives every finished upload, successful or not.
type Callback func(Result)

// State is a copy of the widget state for rendering.
type State struct {
	Busy bool
	Err  error
	Last *Result
}

type Widget struct {
	uploader   Uploader
	archiver   Archiver
	extensions []string
	maxBytes   int64
	callbacks  []Callback
	now        func() time.Time

	mu   sync.Mutex
	busy bool
	err  error
	last *Result
}

type Option func(*Widget)

func WithArchiver(a Archiver) Option {
	return func(w *Widget) { w.archiver = a }
}

// WithExtensions sets the accepted file extensions (".pdf" style, case insensitive).
func WithExtensions(exts ...string) Option {
	return func(w *Widget) {
		w.extensions = w.extensions[:0]
		for _, e := range exts {
			if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
				w.extensions = append(w.extensions, e)
			}
		}
	}
}

func WithMaxBytes(n int64) Option {
	return func(w *Widget) {
		if n > 0 {
			w.maxBytes = n
		}
	}
}

func WithCallback(cb Callback) Option {
	return func(w *Widget) {
		if cb != nil {
			w.callbacks = append(w.callbacks, cb)
		}
	}
}

func NewWidget(uploader Uploader, opts ...Option) *Widget {
	w := &Widget{
		uploader:   uploader,
		extensions: slices.Clone(DefaultExtensions),
		maxBytes:   DefaultMaxBytes,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Accept is the value for the file input's accept attribute.
func (w *Widget) Accept() string {
	return strings.Join(w.extensions, ",")
}

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	state := State{Busy: w.busy, Err: w.err}
	if w.last != nil {
		last := *w.last
		state.Last = &last
	}
	return state
}

// Upload sends one file. A call while another upload is in flight returns ErrBusy without
// touching the state. Every other outcome is recorded and passed to the callbacks.
func (w *Widget) Upload(ctx context.Context, filename string, file io.Reader) (Result, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return Result{}, ErrBusy
	}
	w.busy = true
	w.mu.Unlock()

	result := w.run(ctx, filename, file)
	result.At = w.now()

	w.mu.Lock()
	w.busy = false
	w.err = result.Err
	w.last = &result
	w.mu.Unlock()

	if result.Err != nil {
		log.Err(result.Err).Str("file", result.Filename).Int("status", portalapi.StatusCode(result.Err)).
			Msg("Resume upload failed")
	} else {
		log.Info().Str("file", result.Filename).Str("archive", result.ArchiveKey).Msg("Resume parsed")
	}
	for _, cb := range w.callbacks {
		cb(result)
	}
	return result, result.Err
}

func (w *Widget) run(ctx context.Context, filename string, file io.Reader) Result {
	result := Result{Filename: filepath.Base(filename)}

	if !w.allowed(filename) {
		result.Err = perrors.Wrapf(ErrUnsupportedFile, "%q (accepted: %s)", result.Filename, w.Accept())
		return result
	}

	data, err := io.ReadAll(io.LimitReader(file, w.maxBytes+1))
	if err != nil {
		result.Err = perrors.Wrapf(err, "read %q", result.Filename)
		return result
	}
	if int64(len(data)) > w.maxBytes {
		result.Err = perrors.Wrapf(ErrFileTooLarge, "%q exceeds %d bytes", result.Filename, w.maxBytes)
		return result
	}

	payload, err := w.uploader.UploadResume(ctx, result.Filename, bytes.NewReader(data))
	if err != nil {
		result.Err = err
		return result
	}
	result.Payload = payload

	if w.archiver != nil {
		key, err := w.archiver.Archive(ctx, result.Filename, data)
		if err != nil {
			log.Warn().Err(err).Str("file", result.Filename).Msg("Resume archive failed")
		}
		result.ArchiveKey = key
	}
	return result
}

func (w *Widget) allowed(filename string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(filename)))
}
