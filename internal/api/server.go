// Package api serves the JSON HTTP interface.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"newsLedger/internal/identity"
	"newsLedger/internal/model"
	"newsLedger/internal/storage"
	"newsLedger/internal/submission"
	"newsLedger/internal/verification"
)

// ArticleSubmitter stores submitted articles.
type ArticleSubmitter interface {
	Submit(ctx context.Context, req submission.Request) (submission.Result, error)
}

// ContentVerifier resolves verification requests.
type ContentVerifier interface {
	Verify(ctx context.Context, req verification.Request) (model.Verdict, error)
}

// Deps are the components behind the routes.
type Deps struct {
	Store       storage.ArticleStore
	Submitter   ArticleSubmitter
	Verifier    ContentVerifier
	Fetcher     submission.Fetcher
	Identity    identity.Directory
	Mode        model.ChainMode
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter wires every route and middleware.
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	h := &handlers{deps: deps, logger: deps.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(deps.CORSOrigins))

	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(testingModeHeader(deps.Mode))

		r.Get("/status", h.status)

		r.Get("/articles", h.listArticles)
		r.Post("/articles", h.submitArticle)
		r.Post("/articles/submit", h.submitArticle)
		r.Get("/articles/fetch-metadata", h.fetchMetadata)
		r.Get("/articles/{id}", h.getArticle)

		r.Post("/verify", h.verify)
		r.Get("/verify/hash/{hash}", h.verifyHash)
		r.Get("/verify/url", h.verifyURL)

		r.Post("/users/verify", h.verifyUser)
		r.Post("/users/role", h.updateRole)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found", Kind: "NotFound"})
	})
	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders: []string{testingModeHeaderName},
	}).Handler
}

// Server runs the HTTP listener.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 15 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
