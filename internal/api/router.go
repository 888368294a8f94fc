package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apiMiddleware "github.com/phrazzld/smart-extract/internal/api/middleware"
)

// Handlers groups the route handlers.
type Handlers struct {
	Extract *ExtractHandler
	Batches *BatchHandler
	Queue   *QueueHandler
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(logger *slog.Logger, h Handlers) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", h.Extract.Extract)

		r.Post("/batches", h.Batches.StartBatch)
		r.Get("/batches/{id}", h.Batches.GetBatch)

		r.Get("/queue", h.Queue.GetQueue)
		r.Get("/tasks", h.Queue.ListTasks)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
