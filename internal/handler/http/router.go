package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions identify the service in request logs and configure CORS.
type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions, attendanceHandler AttendanceHandler, correctionHandler CorrectionHandler, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.List)
			r.Post("/process", attendanceHandler.Process)
		})

		r.Route("/staff/{staffID}", func(r chi.Router) {
			r.Get("/attendance", attendanceHandler.GetStaffAttendance)
			r.Get("/punches", attendanceHandler.GetCleanedPunches)
			r.Get("/summary", attendanceHandler.GetSummary)

			r.Route("/corrections", func(r chi.Router) {
				r.Get("/", correctionHandler.List)
				r.Post("/", correctionHandler.Create)
			})
		})

		r.Route("/corrections/{id}", func(r chi.Router) {
			r.Post("/approve", correctionHandler.Approve)
			r.Post("/reject", correctionHandler.Reject)
			r.Delete("/", correctionHandler.Delete)
		})
	})
	return r
}
