package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quiz-report-service/internal/app"
)

// NewRouter wires health, WebSocket and REST endpoints behind CORS for browser clients.
func NewRouter(quizzes *app.QuizService, reports *app.ReportService, opts Options, corsOrigins []string) http.Handler {
	ws := NewWSHandler(quizzes, reports, opts)
	rest := NewRESTHandler(quizzes, reports, opts)

	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.Recoverer)
	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)
	r.Group(func(api chi.Router) {
		api.Use(middleware.Logger, middleware.Timeout(30*time.Second))
		api.Route("/api/sessions", rest.Routes)
	})
	return r
}
