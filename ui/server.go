package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"utitriage/app"
	"utitriage/internal"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// Options tunes the web server
type Options struct {
	GinMode                  string
	MaxConcurrentAssessments int
	RequestTimeout           time.Duration
	Logger                   *internal.Logger
}

// Server is the web form front end
type Server struct {
	router    *gin.Engine
	predictor *app.Predictor
	templates *template.Template
	guidance  map[string]template.HTML
	logger    *internal.Logger

	// bounds concurrent assessments
	assessSem *semaphore.Weighted
	timeout   time.Duration
}

// NewServer creates the web server around a loaded predictor
func NewServer(predictor *app.Predictor, opts Options) (*Server, error) {
	if predictor == nil {
		return nil, fmt.Errorf("server needs a predictor")
	}
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	if opts.MaxConcurrentAssessments < 1 {
		opts.MaxConcurrentAssessments = 1
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = internal.NewDefaultLogger()
	}

	s := &Server{
		router:    gin.New(),
		predictor: predictor,
		logger:    opts.Logger.With("Server"),
		assessSem: semaphore.NewWeighted(int64(opts.MaxConcurrentAssessments)),
		timeout:   opts.RequestTimeout,
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	if s.guidance, err = renderGuidance(); err != nil {
		return nil, err
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		s.logger.Error("static filesystem: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/assess", s.withTimeout(s.handleAssess))
	s.router.GET("/healthz", s.handleHealth)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web form listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
