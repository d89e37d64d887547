package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/regionplot/internal/app"
	"github.com/roach88/regionplot/internal/render"
)

//go:embed templates/*.html
var templates embed.FS

// Page is the application state the server reads and drives.
// *app.Page satisfies it.
type Page interface {
	Status() app.Status
	View() app.View
	Select(ctx context.Context, source, value string) error
}

// FrameSource supplies the latest rendered chart. *render.BarChart
// satisfies it.
type FrameSource interface {
	Latest() render.Frame
}

// Config describes the server's dependencies.
type Config struct {
	Addr   string
	Title  string // Page title
	Page   Page
	Chart  FrameSource
	Logger *slog.Logger

	// SelectTimeout bounds how long a request waits for its selection to
	// be applied.
	SelectTimeout time.Duration
}

// Server serves one Page.
type Server struct {
	addr   string
	router *gin.Engine
	logger *slog.Logger
}

// New builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Page == nil {
		return nil, errors.New("server: page is required")
	}
	if cfg.Chart == nil {
		return nil, errors.New("server: chart is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SelectTimeout <= 0 {
		cfg.SelectTimeout = 5 * time.Second
	}
	if cfg.Title == "" {
		cfg.Title = render.DefaultOptions().Title
	}

	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Logger))
	router.SetHTMLTemplate(tmpl)

	h := &handlers{
		page:    cfg.Page,
		chart:   cfg.Chart,
		title:   cfg.Title,
		timeout: cfg.SelectTimeout,
		logger:  cfg.Logger,
	}

	router.GET("/", h.index)
	router.GET("/chart", h.chartFrame)
	router.POST("/select", h.selectForm)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/status", h.status)
	ready := api.Group("", h.requireReady)
	ready.GET("/options", h.options)
	ready.GET("/selection", h.selection)
	ready.POST("/selection", h.selectJSON)
	ready.GET("/records", h.records)

	return &Server{addr: cfg.Addr, router: router, logger: cfg.Logger}, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("http server listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			s.logger.Warn("http shutdown", "error", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// requestLogger logs each request at debug level.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"ip", c.ClientIP(),
			"dur", time.Since(start))
	}
}
