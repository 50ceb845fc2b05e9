package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-intern-portal/credentials"
	"github.com/jrsteele09/go-intern-portal/credentials/repofake"
	"github.com/jrsteele09/go-intern-portal/internal/config"
	"github.com/jrsteele09/go-intern-portal/portalapi"
	"github.com/jrsteele09/go-intern-portal/resume"
	"github.com/jrsteele09/go-intern-portal/server"
	"github.com/jrsteele09/go-intern-portal/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	creds, closeCreds, err := newCredentialRepo(ctx, c)
	if err != nil {
		return err
	}
	defer closeCreds()

	api, err := portalapi.NewClient(&http.Client{Timeout: c.GetAPITimeout()}, c.GetAPIBaseURL())
	if err != nil {
		return err
	}

	widget, err := newResumeWidget(ctx, c, api)
	if err != nil {
		return err
	}

	store := session.New(api, creds, session.WithCredentialKey(c.GetCredentialKey()))
	// Claim the bootstrap before the listener exists so no request sees an unclaimed session.
	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("session.Start: %w", err)
	}

	handler, err := server.New(c, store, widget)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if c.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func newCredentialRepo(ctx context.Context, c config.Config) (credentials.Repo, func(), error) {
	switch c.GetCredentialStore() {
	case config.CredentialStoreRedis:
		repo := credentials.NewRedisRepo(c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
		if err := repo.Ping(ctx); err != nil {
			_ = repo.Close()
			return nil, nil, fmt.Errorf("redis credential store at %s: %w", c.GetRedisAddr(), err)
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis credential store")
		return repo, func() { _ = repo.Close() }, nil
	case config.CredentialStoreMemory:
		log.Warn().Msg("Using in-memory credential store, sessions will not survive a restart")
		return repofake.NewFakeCredentialRepo(), func() {}, nil
	default:
		repo, err := credentials.NewFileRepo(c.GetDataFolder())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", repo.Path()).Msg("Using file credential store")
		return repo, func() {}, nil
	}
}

func newResumeWidget(ctx context.Context, c config.Config, api resume.Uploader) (*resume.Widget, error) {
	opts := []resume.Option{
		resume.WithExtensions(c.GetResumeExtensions()...),
		resume.WithMaxBytes(c.GetMaxUploadBytes()),
	}
	if bucket := c.GetArchiveBucket(); bucket != "" {
		archiver, err := resume.NewS3Archiver(ctx, resume.S3Options{
			Bucket:       bucket,
			Endpoint:     c.GetS3Endpoint(),
			Region:       c.GetS3Region(),
			AccessKey:    c.GetS3AccessKey(),
			SecretKey:    c.GetS3SecretKey(),
			UsePathStyle: c.GetS3UsePathStyle(),
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, resume.WithArchiver(archiver))
	}
	return resume.NewWidget(api, opts...), nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
