package controllers

import (
	"net/http"
	"strconv"
	"time"

	"dia-relay/backend/app/services"

	"github.com/rs/zerolog"
)

type StatusController struct {
	Status *services.StatusService
	Log    zerolog.Logger
	now    func() time.Time
}

func NewStatusController(status *services.StatusService, log zerolog.Logger) *StatusController {
	return &StatusController{Status: status, Log: log, now: time.Now}
}

// Clients returns every agent snapshot, newest report first.
func (c *StatusController) Clients(w http.ResponseWriter, r *http.Request) {
	rows, err := c.Status.ListClients()
	if err != nil {
		c.Log.Error().Err(err).Msg("list clients")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// DiaHistory: GET /api/dia-history?days=7
func (c *StatusController) DiaHistory(w http.ResponseWriter, r *http.Request) {
	days := services.DefaultHistoryDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}
	hist, err := c.Status.DiaHistory(days, c.now())
	if err != nil {
		c.Log.Error().Err(err).Msg("dia history")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

func (c *StatusController) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Status.Liveness(c.now()))
}
