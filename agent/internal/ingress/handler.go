package ingress

import (
	"net/http"
	"time"

	"dia-relay/agent/internal/logger"
	"dia-relay/agent/internal/protocolclient"
)

// Handler serves GET /send for the local automation and forwards each
// accepted call to the hub.
type Handler struct {
	HubHost string
	HubPort int
	Timeout time.Duration
	Forward func(host string, port int, r protocolclient.Report, timeout time.Duration) error
}

func NewHandler(hubHost string, hubPort int, timeout time.Duration) *Handler {
	return &Handler{HubHost: hubHost, HubPort: hubPort, Timeout: timeout, Forward: protocolclient.SendReport}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || r.URL.Path != "/send" {
		reply(w, http.StatusBadRequest, "Bad Request")
		return
	}
	q := r.URL.Query()
	ip := q.Get("ip")
	if ip == "" {
		reply(w, http.StatusBadRequest, "Bad Request")
		return
	}
	rep := protocolclient.Report{
		Name:       or(q.Get("name"), "unknown"),
		IP:         ip,
		Dia:        or(q.Get("dia"), "0"),
		Mode:       or(q.Get("mode"), "send"),
		Game:       or(q.Get("game"), "unknown"),
		Msg:        or(q.Get("msg"), "..."),
		GameServer: or(q.Get("game_server"), "unknown"),
	}
	logger.Infof("Report request: name=%s ip=%s dia=%s mode=%s game=%s server=%s", rep.Name, rep.IP, rep.Dia, rep.Mode, rep.Game, rep.GameServer)

	if err := h.Forward(h.HubHost, h.HubPort, rep, h.Timeout); err != nil {
		logger.Errorf("Report forward failed: %v", err)
	} else {
		logger.Infof("Report sent to %s:%d | name=%s dia=%s msg=%s", h.HubHost, h.HubPort, rep.Name, rep.Dia, shorten(rep.Msg, 40))
	}
	reply(w, http.StatusOK, "OK")
}

func reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Connection", "close")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return s
	}
	return string(r[:n-3]) + "..."
}
