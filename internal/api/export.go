package api

import (
	"encoding/json"
	"net/http"
)

type exportRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type exportResponse struct {
	ObjectKey   string `json:"object_key"`
	RecordCount int64  `json:"record_count"`
	SizeBytes   int64  `json:"size_bytes"`
}

func handleExportRun(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Exporter == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "EXPORT_NOT_CONFIGURED", "export is not configured", false, nil)
		return
	}

	var request exportRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid export request body", false, map[string]any{"details": err.Error()})
		return
	}

	from, err := parseDate(request.From)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DATE", err.Error(), false, nil)
		return
	}
	to, err := parseDate(request.To)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_DATE", err.Error(), false, nil)
		return
	}
	if !to.After(from) {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_RANGE", "to must be after from", false, nil)
		return
	}

	summary, err := deps.Exporter.Run(r.Context(), from, to)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "EXPORT_FAILED", "export run failed", true, map[string]any{"details": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, exportResponse{
		ObjectKey:   summary.ObjectKey,
		RecordCount: summary.RecordCount,
		SizeBytes:   summary.SizeBytes,
	})
}
