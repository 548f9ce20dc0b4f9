package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/renderwatch/internal/domain"
	apimw "github.com/hamed0406/renderwatch/internal/httpapi/middleware"
)

// Monitor is the engine surface the API drives.
type Monitor interface {
	Start(ctx context.Context, job domain.Job) (domain.Job, error)
	Stop(ctx context.Context, url string) (domain.TargetState, error)
	Status(ctx context.Context) []domain.TargetState
	History(ctx context.Context, url string, limit int) ([]domain.CheckResult, error)
}

type Server struct {
	Logger    *zap.Logger
	Monitor   Monitor
	Live      http.Handler // websocket endpoint; nil disables /ws
	PublicURL string       // advertised base URL; empty means derive from the request
}

func NewServer(l *zap.Logger, m Monitor, live http.Handler, publicURL string) *Server {
	return &Server{Logger: l, Monitor: m, Live: live, PublicURL: publicURL}
}

// Router wires the routes. Telex-facing routes (/tick, /integration.json)
// only sit behind the public rate limit since Telex sends no API key.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.accessLog)

	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(pubRPM, pubBurst))
		r.Get("/integration.json", s.handleIntegration)
		r.Post("/tick", s.handleStart)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(pubRPM, pubBurst))
		r.Use(apimw.Require(keys, apimw.Viewer))
		r.Get("/api/monitor/status", s.handleStatus)
		r.Get("/monitor/status", s.handleStatus)
		r.Get("/api/monitor/history", s.handleHistory)
		if s.Live != nil {
			r.Get("/ws", s.Live.ServeHTTP)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(admRPM, admBurst))
		r.Use(apimw.Require(keys, apimw.Operator))
		r.Post("/api/monitor/start", s.handleStart)
		r.Post("/api/monitor/stop", s.handleStop)
		r.Post("/monitor/stop", s.handleStop)
	})

	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}
