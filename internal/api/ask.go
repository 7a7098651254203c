package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/macrolog/macrolog/internal/askdb"
	"github.com/macrolog/macrolog/internal/nutrilog"
	"github.com/macrolog/macrolog/internal/observability"
)

const fallbackSummaryDays = 7

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer     string `json:"answer"`
	Method     string `json:"method"`
	SQL        string `json:"sql,omitempty"`
	RowCount   int    `json:"row_count"`
	DurationMs int64  `json:"duration_ms"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Asker == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "question answering is not configured", false, nil)
		return
	}

	var request askRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	answer, err := deps.Asker.Answer(r.Context(), request.Question)
	if err != nil {
		handleAskError(deps, w, r, request.Question, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:     answer.Text,
		Method:     answer.Method,
		SQL:        answer.Query,
		RowCount:   answer.RowCount,
		DurationMs: answer.Duration.Milliseconds(),
	})
}

func handleAskError(deps Dependencies, w http.ResponseWriter, r *http.Request, question string, err error) {
	if errors.Is(err, askdb.ErrFallback) {
		handleFreeTextQuestion(deps, w, r, question)
		return
	}

	var validationErr *askdb.ValidationError
	if errors.As(err, &validationErr) {
		writeError(r.Context(), w, http.StatusUnprocessableEntity, "QUERY_REJECTED", "generated query was rejected before execution", false, map[string]any{
			"reason": validationErr.Reason,
			"sql":    validationErr.SQL,
		})
		return
	}

	var generationErr *askdb.GenerationError
	if errors.As(err, &generationErr) {
		writeError(r.Context(), w, http.StatusBadGateway, "GENERATION_FAILED", "query generation failed", true, map[string]any{"details": generationErr.Err.Error()})
		return
	}

	var executionErr *askdb.ExecutionError
	if errors.As(err, &executionErr) {
		writeError(r.Context(), w, http.StatusBadRequest, "QUERY_EXECUTION_FAILED", "query execution failed", false, map[string]any{
			"details": executionErr.Err.Error(),
			"sql":     executionErr.SQL,
		})
		return
	}

	writeError(r.Context(), w, http.StatusInternalServerError, "ASK_FAILED", "failed to answer question", true, map[string]any{"details": err.Error()})
}

// handleFreeTextQuestion answers non-aggregation questions from recent daily
// summaries instead of generated SQL. The model never sees the database here,
// only a short context block the service assembled itself.
func handleFreeTextQuestion(deps Dependencies, w http.ResponseWriter, r *http.Request, question string) {
	if deps.Completer == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "FALLBACK_NOT_CONFIGURED", "free-text answering is not configured", false, nil)
		return
	}

	var summaries []nutrilog.DailySummary
	if deps.Log != nil {
		recent, err := deps.Log.ListDailySummaries(r.Context(), fallbackSummaryDays)
		if err != nil {
			if deps.Logger != nil {
				deps.Logger.WarnContext(r.Context(), "loading summaries for fallback failed", "error", err)
			}
		} else {
			summaries = recent
		}
	}

	completion, err := deps.Completer.Complete(r.Context(), buildFallbackPrompt(question, summaries))
	if err != nil {
		writeError(r.Context(), w, http.StatusBadGateway, "FALLBACK_FAILED", "free-text answering failed", true, map[string]any{"details": err.Error()})
		return
	}
	observability.ObserveQuestion(askdb.MethodFallback)

	writeJSON(w, http.StatusOK, askResponse{
		Answer: strings.TrimSpace(completion),
		Method: askdb.MethodFallback,
	})
}

func buildFallbackPrompt(question string, summaries []nutrilog.DailySummary) string {
	var b strings.Builder
	b.WriteString("You are a nutrition assistant answering questions about a personal food log.\n")
	if len(summaries) > 0 {
		b.WriteString("Recent daily totals:\n")
		for _, summary := range summaries {
			fmt.Fprintf(&b, "- %s: %.0f cal, %.0fg protein, %.0fg carbs, %.0fg fat (%d entries)\n",
				summary.SummaryDate.Format("2006-01-02"),
				summary.TotalCalories,
				summary.TotalProtein,
				summary.TotalCarbs,
				summary.TotalFat,
				summary.EntryCount,
			)
		}
	}
	b.WriteString("Answer concisely in one or two sentences.\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
