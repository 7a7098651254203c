package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/macrolog/macrolog/internal/nutrilog"
)

const dateLayout = "2006-01-02"

type entryRequest struct {
	EntryDate string  `json:"entry_date"`
	MealType  string  `json:"meal_type"`
	FoodName  string  `json:"food_name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Fiber     float64 `json:"fiber"`
	Sugar     float64 `json:"sugar"`
	Sodium    float64 `json:"sodium"`
}

type entryResponse struct {
	ID        int64   `json:"id"`
	EntryDate string  `json:"entry_date"`
	MealType  string  `json:"meal_type"`
	FoodName  string  `json:"food_name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Fiber     float64 `json:"fiber"`
	Sugar     float64 `json:"sugar"`
	Sodium    float64 `json:"sodium"`
	CreatedAt string  `json:"created_at"`
}

func handleCreateEntry(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Log == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "LOG_NOT_CONFIGURED", "nutrition log is not configured", false, nil)
		return
	}

	var request entryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid entry request body", false, map[string]any{"details": err.Error()})
		return
	}

	if strings.TrimSpace(request.FoodName) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "FOOD_NAME_REQUIRED", "food_name is required", false, nil)
		return
	}
	entryDate := time.Now().UTC().Truncate(24 * time.Hour)
	if request.EntryDate != "" {
		parsed, err := parseDate(request.EntryDate)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DATE", err.Error(), false, nil)
			return
		}
		entryDate = parsed
	}

	entry, err := deps.Log.InsertFoodEntry(r.Context(), nutrilog.CreateFoodEntryInput{
		EntryDate: entryDate,
		MealType:  strings.ToLower(strings.TrimSpace(request.MealType)),
		FoodName:  strings.TrimSpace(request.FoodName),
		Quantity:  request.Quantity,
		Unit:      request.Unit,
		Calories:  request.Calories,
		Protein:   request.Protein,
		Carbs:     request.Carbs,
		Fat:       request.Fat,
		Fiber:     request.Fiber,
		Sugar:     request.Sugar,
		Sodium:    request.Sodium,
	})
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "ENTRY_INSERT_FAILED", "failed to record entry", true, map[string]any{"details": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func handleListEntries(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Log == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "LOG_NOT_CONFIGURED", "nutrition log is not configured", false, nil)
		return
	}

	filter := nutrilog.EntryFilter{
		MealType: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("meal_type"))),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DATE", err.Error(), false, nil)
			return
		}
		filter.From = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DATE", err.Error(), false, nil)
			return
		}
		filter.To = parsed
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer", false, nil)
			return
		}
		filter.Limit = limit
	}

	entries, err := deps.Log.ListEntries(r.Context(), filter)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "ENTRY_LIST_FAILED", "failed to list entries", true, map[string]any{"details": err.Error()})
		return
	}

	responses := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toEntryResponse(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": responses, "count": len(responses)})
}

func handleGetSummary(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Log == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "LOG_NOT_CONFIGURED", "nutrition log is not configured", false, nil)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = time.Now().UTC().Format(dateLayout)
	} else if _, err := parseDate(date); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DATE", err.Error(), false, nil)
		return
	}

	summary, err := deps.Log.GetDailySummary(r.Context(), date)
	if err != nil {
		if errors.Is(err, nutrilog.ErrNotFound) {
			writeError(r.Context(), w, http.StatusNotFound, "SUMMARY_NOT_FOUND", "no entries recorded for that day", false, map[string]any{"date": date})
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "SUMMARY_FAILED", "failed to load summary", true, map[string]any{"details": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":           summary.SummaryDate.Format(dateLayout),
		"total_calories": summary.TotalCalories,
		"total_protein":  summary.TotalProtein,
		"total_carbs":    summary.TotalCarbs,
		"total_fat":      summary.TotalFat,
		"entry_count":    summary.EntryCount,
	})
}

type weightRequest struct {
	LogDate  string  `json:"log_date"`
	WeightKg float64 `json:"weight_kg"`
}

func handleCreateWeight(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Log == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "LOG_NOT_CONFIGURED", "nutrition log is not configured", false, nil)
		return
	}

	var request weightRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid weight request body", false, map[string]any{"details": err.Error()})
		return
	}
	if request.WeightKg <= 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_WEIGHT", "weight_kg must be positive", false, nil)
		return
	}
	logDate := time.Now().UTC().Truncate(24 * time.Hour)
	if request.LogDate != "" {
		parsed, err := parseDate(request.LogDate)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DATE", err.Error(), false, nil)
			return
		}
		logDate = parsed
	}

	entry, err := deps.Log.InsertWeight(r.Context(), nutrilog.WeightEntry{LogDate: logDate, WeightKg: request.WeightKg})
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "WEIGHT_INSERT_FAILED", "failed to record weight", true, map[string]any{"details": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"log_date":  entry.LogDate.Format(dateLayout),
		"weight_kg": entry.WeightKg,
	})
}

func handleListWeights(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Log == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "LOG_NOT_CONFIGURED", "nutrition log is not configured", false, nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer", false, nil)
			return
		}
		limit = parsed
	}

	weights, err := deps.Log.ListWeights(r.Context(), limit)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "WEIGHT_LIST_FAILED", "failed to list weights", true, map[string]any{"details": err.Error()})
		return
	}

	responses := make([]map[string]any, 0, len(weights))
	for _, entry := range weights {
		responses = append(responses, map[string]any{
			"log_date":  entry.LogDate.Format(dateLayout),
			"weight_kg": entry.WeightKg,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"weights": responses, "count": len(responses)})
}

func toEntryResponse(entry nutrilog.FoodEntry) entryResponse {
	return entryResponse{
		ID:        entry.ID,
		EntryDate: entry.EntryDate.Format(dateLayout),
		MealType:  entry.MealType,
		FoodName:  entry.FoodName,
		Quantity:  entry.Quantity,
		Unit:      entry.Unit,
		Calories:  entry.Calories,
		Protein:   entry.Protein,
		Carbs:     entry.Carbs,
		Fat:       entry.Fat,
		Fiber:     entry.Fiber,
		Sugar:     entry.Sugar,
		Sodium:    entry.Sodium,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func parseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return parsed, nil
}
