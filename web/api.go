// ABOUTME: JSON API handlers for policies, insights, import/export and SMS
// ABOUTME: Maps domain errors onto HTTP status codes
package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/harperreed/insuretrack/models"
	"github.com/harperreed/insuretrack/storage"
	"github.com/harperreed/insuretrack/store"
)

// maskedToken replaces a stored auth token in API responses.
const maskedToken = "********"

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "err", err)
	}
}

// writeError maps domain errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		validation *models.ValidationError
		importErr  *storage.ImportFormatError
		exportErr  *storage.ExportError
		storageErr *storage.StorageError
	)
	switch {
	case errors.As(err, &importErr):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: importErr.Reason})
	case errors.As(err, &validation):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Please fix the highlighted fields", Fields: validation.Fields})
	case errors.Is(err, store.ErrPolicyNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &exportErr):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: exportErr.Reason})
	case errors.As(err, &storageErr):
		s.logger.Error("storage failure", "op", storageErr.Op, "err", storageErr.Err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to save changes. Please try again."})
	default:
		s.logger.Error("request failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func queryFromRequest(r *http.Request) (store.Query, error) {
	values := r.URL.Query()
	q := store.Query{Search: values.Get("q")}

	if c := values.Get("category"); c != "" {
		category, err := models.ParseCategory(c)
		if err != nil {
			return q, err
		}
		q.Category = category
	}

	order, err := store.ParseSortOrder(values.Get("sort"))
	if err != nil {
		return q, err
	}
	q.Sort = order

	if l := values.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			return q, fmt.Errorf("invalid limit %q", l)
		}
		q.Limit = limit
	}
	return q, nil
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.Find(q))
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var input models.PolicyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.badRequest(w, "Invalid JSON body")
		return
	}

	p, err := s.store.Add(input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.IncrementMutation("create")
	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, fmt.Errorf("%w: %s", store.ErrPolicyNotFound, id))
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var patch models.PolicyPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.badRequest(w, "Invalid JSON body")
		return
	}

	p, err := s.store.Update(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.IncrementMutation("update")
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Get(id); !ok {
		s.writeError(w, fmt.Errorf("%w: %s", store.ErrPolicyNotFound, id))
		return
	}
	if err := s.store.Remove(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.IncrementMutation("delete")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearPolicies(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		s.badRequest(w, "Clearing all data needs confirm=true")
		return
	}
	if err := s.store.Clear(); err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.IncrementMutation("clear")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, store.ComputeStats(s.store.Policies(), s.now()))
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.RenewalAlerts())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := storage.ExportCSV(&buf, s.store.Policies()); err != nil {
		s.writeError(w, err)
		return
	}
	s.sendFile(w, "text/csv; charset=utf-8", storage.ExportFileName("csv", s.now()), buf.Bytes())
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := storage.ExportJSON(&buf, s.store.Policies()); err != nil {
		s.writeError(w, err)
		return
	}
	s.sendFile(w, "application/json", storage.ExportFileName("json", s.now()), buf.Bytes())
}

func (s *Server) sendFile(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("failed to write export", "err", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	policies, err := storage.ImportJSON(http.MaxBytesReader(w, r.Body, maxImportBytes), s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Replace(policies); err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.IncrementMutation("import")
	s.writeJSON(w, http.StatusOK, map[string]int{"imported": len(policies)})
}

func (s *Server) handleGetSMSConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.storage.LoadSMSConfig()
	if cfg.AuthToken != "" {
		cfg.AuthToken = maskedToken
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

// handlePutSMSConfig keeps the stored token when the client echoes the mask back or sends none.
func (s *Server) handlePutSMSConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.SMSConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		s.badRequest(w, "Invalid JSON body")
		return
	}
	if cfg.AuthToken == "" || cfg.AuthToken == maskedToken {
		cfg.AuthToken = s.storage.LoadSMSConfig().AuthToken
	}
	if err := s.storage.SaveSMSConfig(cfg); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSMSTest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.To == "" {
		s.badRequest(w, "Please enter a test phone number")
		return
	}
	if s.sms == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "SMS service is not running"})
		return
	}

	if !s.sms.SendTest(r.Context(), body.To) {
		s.writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"success": false,
			"message": "Failed to send test SMS. Please check your configuration.",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Test SMS sent successfully!",
	})
}

func (s *Server) handleSMSHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, []models.SMSLogEntry{})
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			s.badRequest(w, fmt.Sprintf("invalid limit %q", l))
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.storage.Health()
	status := http.StatusOK
	if !health.Healthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, health)
}
