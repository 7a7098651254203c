package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/macrolog/macrolog/internal/askdb"
	"github.com/macrolog/macrolog/internal/config"
	"github.com/macrolog/macrolog/internal/export"
	"github.com/macrolog/macrolog/internal/llm"
	"github.com/macrolog/macrolog/internal/nutrilog"
	"github.com/macrolog/macrolog/internal/observability"
)

type ReadinessCheck func(ctx context.Context) error

// QuestionAnswerer is the structured question pipeline as the HTTP layer
// sees it.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string) (askdb.Answer, error)
}

// LogRepository is the slice of the nutrition log the handlers need.
type LogRepository interface {
	InsertFoodEntry(ctx context.Context, in nutrilog.CreateFoodEntryInput) (nutrilog.FoodEntry, error)
	ListEntries(ctx context.Context, filter nutrilog.EntryFilter) ([]nutrilog.FoodEntry, error)
	GetDailySummary(ctx context.Context, date string) (nutrilog.DailySummary, error)
	ListDailySummaries(ctx context.Context, limit int) ([]nutrilog.DailySummary, error)
	InsertWeight(ctx context.Context, entry nutrilog.WeightEntry) (nutrilog.WeightEntry, error)
	ListWeights(ctx context.Context, limit int) ([]nutrilog.WeightEntry, error)
}

type ExportRunner interface {
	Run(ctx context.Context, from, to time.Time) (export.Summary, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	ExportMiddleware  func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Asker             QuestionAnswerer
	Completer         llm.Completer
	Log               LogRepository
	Exporter          ExportRunner
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/ask", func(w http.ResponseWriter, r *http.Request) {
		handleAsk(deps, w, r)
	})
	protected.HandleFunc("POST /v1/entries", func(w http.ResponseWriter, r *http.Request) {
		handleCreateEntry(deps, w, r)
	})
	protected.HandleFunc("GET /v1/entries", func(w http.ResponseWriter, r *http.Request) {
		handleListEntries(deps, w, r)
	})
	protected.HandleFunc("GET /v1/summary", func(w http.ResponseWriter, r *http.Request) {
		handleGetSummary(deps, w, r)
	})
	protected.HandleFunc("POST /v1/weight", func(w http.ResponseWriter, r *http.Request) {
		handleCreateWeight(deps, w, r)
	})
	protected.HandleFunc("GET /v1/weight", func(w http.ResponseWriter, r *http.Request) {
		handleListWeights(deps, w, r)
	})

	exportHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handleExportRun(deps, w, r)
	})
	if deps.ExportMiddleware != nil {
		protected.Handle("POST /v1/export/run", deps.ExportMiddleware(exportHandler))
	} else {
		protected.Handle("POST /v1/export/run", exportHandler)
	}

	var protectedHandler http.Handler = protected
	if cfg.Auth.Required {
		if deps.AuthMiddleware == nil {
			if deps.Logger != nil {
				deps.Logger.Error("auth required but auth middleware missing")
			}
			protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, http.StatusInternalServerError, "AUTH_MIDDLEWARE_MISSING", "auth middleware is required by configuration", false, nil)
			})
		} else {
			protectedHandler = deps.AuthMiddleware(protectedHandler)
		}
	}
	mux.Handle("POST /v1/ask", protectedHandler)
	mux.Handle("POST /v1/entries", protectedHandler)
	mux.Handle("GET /v1/entries", protectedHandler)
	mux.Handle("GET /v1/summary", protectedHandler)
	mux.Handle("POST /v1/weight", protectedHandler)
	mux.Handle("GET /v1/weight", protectedHandler)
	mux.Handle("POST /v1/export/run", protectedHandler)

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CheckDatabaseDSN(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.DB.DSN == "" {
			return errors.New("database dsn is not configured")
		}
		return nil
	}
}

func CheckAIConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.AI.BaseURL == "" {
			return errors.New("ai base url is not configured")
		}
		if cfg.AI.Model == "" {
			return errors.New("ai model is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
