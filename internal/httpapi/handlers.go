package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/renderwatch/internal/domain"
	"github.com/hamed0406/renderwatch/internal/scheduler"
)

const maxBody = 64 << 10

type startResponse struct {
	Status              string   `json:"status"`
	App                 string   `json:"app"`
	Apps                []string `json:"apps"`
	JobID               string   `json:"job_id"`
	InactivityThreshold float64  `json:"inactivity_threshold"`
	Interval            string   `json:"interval,omitempty"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var p startPayload
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(&p); err != nil {
		writeDetail(w, http.StatusBadRequest, "bad payload")
		return
	}
	job, err := p.toJob()
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err = s.Monitor.Start(r.Context(), job)
	switch {
	case errors.Is(err, domain.ErrAlreadyMonitored):
		writeDetail(w, http.StatusConflict, "App is already being monitored")
		return
	case errors.Is(err, domain.ErrInvalidJob):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, scheduler.ErrShuttingDown):
		writeDetail(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		s.Logger.Error("start_failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "could not start monitoring")
		return
	}

	writeJSON(w, http.StatusOK, startResponse{
		Status:              "started",
		App:                 job.URLs[0],
		Apps:                job.URLs,
		JobID:               job.ID,
		InactivityThreshold: job.ThresholdMinutes(),
		Interval:            job.Schedule,
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	appURL := strings.TrimSpace(r.URL.Query().Get("app_url"))
	if appURL == "" {
		writeDetail(w, http.StatusBadRequest, "app_url is required")
		return
	}
	if _, err := s.Monitor.Stop(r.Context(), appURL); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, fmt.Sprintf("App %s not found in monitoring list", appURL))
			return
		}
		s.Logger.Error("stop_failed", zap.String("app_url", appURL), zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "could not stop monitoring")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped", "app": appURL})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Monitor.Status(r.Context()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	appURL := strings.TrimSpace(q.Get("app_url"))
	if appURL == "" {
		writeDetail(w, http.StatusBadRequest, "app_url is required")
		return
	}
	limit := 20
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeDetail(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	h, err := s.Monitor.History(r.Context(), appURL, limit)
	if errors.Is(err, domain.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("App %s not found in monitoring list", appURL))
		return
	}
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "history error")
		return
	}
	writeJSON(w, http.StatusOK, h)
}
