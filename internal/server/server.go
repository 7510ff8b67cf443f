// Package server exposes the conversion pipeline over HTTP: one upload
// endpoint plus download, preview and health routes.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/karan4533/pdf-to-xml-converter/internal/config"
	"github.com/karan4533/pdf-to-xml-converter/internal/extract"
	"github.com/karan4533/pdf-to-xml-converter/internal/xmlgen"
)

const shutdownTimeout = 10 * time.Second

// Converter turns one PDF into its XML document and extraction result.
type Converter interface {
	Convert(ctx context.Context, path string) (string, *extract.Result, error)
}

// pdfConverter composes the extraction coordinator with the XML generator.
type pdfConverter struct {
	coordinator *extract.Coordinator
}

// NewConverter builds the production Converter over a coordinator.
func NewConverter(coordinator *extract.Coordinator) Converter {
	return &pdfConverter{coordinator: coordinator}
}

func (c *pdfConverter) Convert(ctx context.Context, path string) (string, *extract.Result, error) {
	result, err := c.coordinator.Process(ctx, path)
	if err != nil {
		return "", nil, err
	}
	return xmlgen.Generate(result), result, nil
}

// Server is the HTTP front end. Each request runs an independent pipeline;
// the only shared state is the output directory.
type Server struct {
	cfg        *config.Config
	converter  Converter
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates the server with its routes registered.
func New(cfg *config.Config, converter Converter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:       cfg,
		converter: converter,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/convert-pdf-to-xml", s.handleConvert)
	r.Get("/download/{filename}", s.handleDownload)
	r.Get("/preview/{filename}", s.handlePreview)

	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("http server listening", "addr", s.cfg.Address())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// corsMiddleware mirrors the permissive CORS policy of the upload UI.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
