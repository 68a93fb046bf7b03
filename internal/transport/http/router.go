package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"growth-quiz-service/internal/app"
	"growth-quiz-service/internal/metrics"
)

// UserIDHeader carries the participant id set by the upstream auth proxy.
const UserIDHeader = "X-User-ID"

// NewRouter mounts the quiz API, the live stats websocket and the operational endpoints.
func NewRouter(service *app.QuizService, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws/stats", NewWSHandler(service, log).ServeWS)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(30 * time.Second))

		api.Route("/quizzes", func(qr chi.Router) {
			qr.Post("/", SaveQuizHandler(service, log))
			qr.Route("/validate", func(vr chi.Router) {
				vr.Post("/", ValidateQuizHandler(service))
				vr.Post("/basics", ValidateBasicsHandler(service))
				vr.Post("/dimensions", ValidateDimensionsHandler(service))
				vr.Post("/questions", ValidateQuestionsHandler(service))
			})
			qr.Route("/{quizID}", func(one chi.Router) {
				one.Post("/submissions", SubmitHandler(service, log))
				one.Get("/analytics", AnalyticsHandler(service, log))
				one.Get("/stats", StatsHandler(service, log))
			})
		})

		api.Route("/admin/quizzes/{quizID}", func(ar chi.Router) {
			ar.Post("/repair", RepairHandler(service, log))
			ar.Get("/integrity", IntegrityHandler(service, log))
		})
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
