package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"classpulse/internal/model"
	"classpulse/internal/service"
)

type handler struct {
	facade *service.AnalysisFacade
	search *service.SearchService
	chat   *service.ChatService
	logger *zap.Logger
}

type errorBody struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	MinRequired int    `json:"minRequired,omitempty"`
	Actual      int    `json:"actual,omitempty"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) sentiment(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["id"]
	periodDays := queryInt(r, "periodDays", 30)

	result, err := h.facade.AnalyzeSentiment(r.Context(), subjectID, periodDays)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) insights(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["id"]
	periodDays := queryInt(r, "periodDays", 30)

	report, err := h.facade.GenerateComprehensiveInsights(r.Context(), subjectID, periodDays)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) risks(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["id"]
	lookbackDays := queryInt(r, "lookbackDays", 90)

	report, err := h.facade.PredictRisks(r.Context(), subjectID, lookbackDays)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *handler) alerts(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["id"]
	periodDays := queryInt(r, "periodDays", 30)

	alerts, err := h.facade.GenerateAlerts(r.Context(), subjectID, periodDays)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, alerts)
}

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	subjectID := mux.Vars(r)["id"]
	periodDays := queryInt(r, "periodDays", 30)

	summary, err := h.facade.GenerateSummary(r.Context(), subjectID, periodDays)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) compare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectIDs []string `json:"subjectIds"`
		PeriodDays int      `json:"periodDays"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &model.ValidationError{Message: "invalid request body"})
		return
	}
	if req.PeriodDays <= 0 {
		req.PeriodDays = 30
	}

	comparison, err := h.facade.CompareSubjects(r.Context(), req.SubjectIDs, req.PeriodDays)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comparison)
}

func (h *handler) searchResponses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string  `json:"query"`
		SubjectID string  `json:"subjectId"`
		Limit     int     `json:"limit"`
		Threshold float64 `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &model.ValidationError{Message: "invalid request body"})
		return
	}
	if req.Query == "" || req.SubjectID == "" {
		h.writeError(w, &model.ValidationError{Message: "query and subjectId are required"})
		return
	}
	if req.Threshold == 0 {
		req.Threshold = 0.7
	}

	hits, err := h.search.Search(r.Context(), req.Query, req.SubjectID, req.Limit, req.Threshold)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, hits)
}

func (h *handler) indexResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID  string            `json:"subjectId"`
		ResponseID string            `json:"responseId"`
		Text       string            `json:"text"`
		Metadata   map[string]string `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &model.ValidationError{Message: "invalid request body"})
		return
	}
	if req.SubjectID == "" || req.ResponseID == "" || req.Text == "" {
		h.writeError(w, &model.ValidationError{Message: "subjectId, responseId and text are required"})
		return
	}

	if err := h.search.Index(r.Context(), req.SubjectID, req.ResponseID, req.Text, req.Metadata); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "indexed"})
}

func (h *handler) chatQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string `json:"query"`
		SubjectID string `json:"subjectId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, &model.ValidationError{Message: "invalid request body"})
		return
	}
	if req.SubjectID == "" {
		h.writeError(w, &model.ValidationError{Message: "subjectId is required"})
		return
	}

	answer, err := h.chat.Ask(r.Context(), req.SubjectID, req.Query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, answer)
}

// writeError maps typed failures onto client-correctable status codes.
// Anything unrecognized becomes an opaque 500 with full detail in the log
// only.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	var insufficient *model.InsufficientDataError
	if errors.As(err, &insufficient) {
		h.writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Code:        "INSUFFICIENT_DATA",
			Message:     insufficient.Error(),
			MinRequired: insufficient.MinRequired,
			Actual:      insufficient.Actual,
		})
		return
	}

	var validation *model.ValidationError
	if errors.As(err, &validation) {
		h.writeJSON(w, http.StatusBadRequest, errorBody{
			Code:    "VALIDATION_ERROR",
			Message: validation.Message,
		})
		return
	}

	h.logger.Error("request failed", zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, errorBody{
		Code:    "INTERNAL_ERROR",
		Message: "internal error",
	})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encoding response failed", zap.Error(err))
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
