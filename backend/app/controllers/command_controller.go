package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"dia-relay/backend/app/dto"
	"dia-relay/backend/app/middleware"
	"dia-relay/backend/app/services"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type CommandController struct {
	Commands *services.CommandService
	Log      zerolog.Logger
}

func NewCommandController(cmds *services.CommandService, log zerolog.Logger) *CommandController {
	return &CommandController{Commands: cmds, Log: log}
}

// Post relays one command. POST /admin/command {name?, ip?, command}
func (c *CommandController) Post(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req dto.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	resp, err := c.Commands.Dispatch(req)
	switch {
	case errors.Is(err, services.ErrMissingCommand), errors.Is(err, services.ErrMissingTarget):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrUnknownAgent):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		c.Log.Error().Err(err).Msg("dispatch command")
		writeError(w, http.StatusInternalServerError, "dispatch failed")
		return
	}
	operator := ""
	if claims := middleware.GetClaims(r.Context()); claims != nil {
		operator = claims.Username
	}
	c.Log.Info().
		Str("operator", operator).
		Str("request_id", resp.RequestID).
		Str("agent", req.Name).
		Str("ip", resp.AgentIP).
		Str("status", resp.Status).
		Msg("command dispatched")
	writeJSON(w, http.StatusAccepted, resp)
}

// History lists relayed commands. GET /admin/command/history?name=&limit=
func (c *CommandController) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	cmds, err := c.Commands.History(r.URL.Query().Get("name"), limit)
	if err != nil {
		c.Log.Error().Err(err).Msg("list command history")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, cmds)
}
