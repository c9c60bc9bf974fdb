// Package server exposes quizzes, chat and progress over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/cadetcorps/cadet/internal/bootstrap"
	"github.com/cadetcorps/cadet/internal/chat"
)

const requestTimeout = 2 * time.Minute

type Server struct {
	svc        *bootstrap.Services
	quizzes    *quizzes
	assistants *assistants

	http    *http.Server
	metrics *http.Server
}

// New builds the HTTP and metrics servers from svc.Config.Server. When the
// metrics address is empty /metrics is served by the API listener.
func New(svc *bootstrap.Services) *Server {
	s := &Server{
		svc:        svc,
		quizzes:    newQuizzes(),
		assistants: &assistants{m: make(map[string]*chat.Assistant)},
	}

	c := svc.Config.Server
	s.http = &http.Server{
		Addr:              c.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	if c.MetricsAddr != "" {
		s.metrics = &http.Server{
			Addr:              c.MetricsAddr,
			Handler:           svc.Metrics.Handler(),
			ReadHeaderTimeout: 60 * time.Second,
		}
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logRequests, middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.svc.Config.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	if s.svc.Config.Server.MetricsAddr == "" {
		r.Method(http.MethodGet, "/metrics", s.svc.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/features", s.listFeatures)
		r.Get("/topics", s.listTopics)
		r.Post("/chat", s.askChat)

		r.Route("/quizzes", func(r chi.Router) {
			r.Post("/", s.createQuiz)
			r.Post("/demo", s.createDemoQuiz)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getQuiz)
				r.Delete("/", s.deleteQuiz)
				r.Post("/answer", s.answerQuiz)
				r.Post("/next", s.nextQuestion)
				r.Post("/previous", s.previousQuestion)
				r.Post("/finish", s.finishQuiz)
			})
		})

		r.Route("/progress/{user}", func(r chi.Router) {
			r.Get("/", s.getProgress)
			r.Post("/reset", s.resetProgress)
			r.Patch("/preferences", s.updatePreferences)
			r.Get("/export", s.exportProgress)
		})
	})
	return r
}

// Run serves until ctx is canceled or a listener fails. Each of extra runs
// in the same group and must return once its context is done.
func (s *Server) Run(ctx context.Context, extra ...func(ctx context.Context) error) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		slog.InfoContext(ctx, "server: HTTP listening", "addr", s.http.Addr)
		return listen(s.http)
	})
	if s.metrics != nil {
		eg.Go(func() error {
			slog.InfoContext(ctx, "server: metrics listening", "addr", s.metrics.Addr)
			return listen(s.metrics)
		})
	}
	for _, run := range extra {
		eg.Go(func() error { return run(ctx) })
	}
	eg.Go(func() error {
		<-ctx.Done()
		s.shutdown()
		return nil
	})

	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
		return err
	}
	return nil
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}
	if s.metrics != nil {
		if err := s.metrics.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "server: shutdown metrics failed", "error", err)
		}
	}
	slog.InfoContext(ctx, "server: shutdown completed", "open_quizzes", s.quizzes.len())
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.DebugContext(r.Context(), "server: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
