package ui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dia-relay/backend/app/dto"
	"dia-relay/backend/app/models"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "admin" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(dto.TokenResponse{AccessToken: "tok"})
	})
	mux.HandleFunc("/api/clients", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]models.ClientStatus{{Name: "pc1", IP: "10.0.0.1", Dia: 42, Status: "alive"}})
	})
	mux.HandleFunc("/api/dia-history", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("days"))
		_ = json.NewEncoder(w).Encode(map[string]dto.DayStats{
			"2026-10-19": {Total: 42, Agents: map[string]dto.AgentDay{"pc1": {Today: 42, Diff: 2}}},
		})
	})
	mux.HandleFunc("/admin/command", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req dto.CommandRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(dto.CommandResponse{RequestID: "r1", AgentIP: "10.0.0.1", Status: "sent"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAgainstHub(t *testing.T) {
	srv := newHub(t)
	c := NewClient(srv.URL + "/")

	rows, err := c.Clients()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(42), rows[0].Dia)

	hist, err := c.DiaHistory(3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), hist["2026-10-19"].Agents["pc1"].Diff)

	_, err = c.SendCommand("pc1", "start")
	assert.Error(t, err, "command without login")

	err = c.Login("admin", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	assert.False(t, c.HasToken())

	require.NoError(t, c.Login("admin", "secret"))
	resp, err := c.SendCommand("pc1", "start")
	require.NoError(t, err)
	assert.Equal(t, "sent", resp.Status)
}

type fakeAPI struct {
	clients []models.ClientStatus
	hist    map[string]dto.DayStats
	sent    []string
	sendErr error
}

func (f *fakeAPI) Clients() ([]models.ClientStatus, error) { return f.clients, nil }

func (f *fakeAPI) DiaHistory(int) (map[string]dto.DayStats, error) { return f.hist, nil }

func (f *fakeAPI) SendCommand(name, command string) (dto.CommandResponse, error) {
	f.sent = append(f.sent, name+":"+command)
	return dto.CommandResponse{RequestID: "r1", Status: "sent"}, f.sendErr
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step applies msg and feeds any produced message back once, the way the
// runtime would for a synchronous command.
func step(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	m, cmd := m.Update(msg)
	if cmd != nil {
		if out := cmd(); out != nil {
			if _, isBatch := out.(tea.BatchMsg); !isBatch {
				m, _ = m.Update(out)
			}
		}
	}
	return m
}

func TestRootDashboardAndCommand(t *testing.T) {
	api := &fakeAPI{clients: []models.ClientStatus{
		{Name: "pc1", IP: "10.0.0.1", LastReport: time.Now()},
		{Name: "pc2", IP: "10.0.0.2", LastReport: time.Now()},
	}}
	var m tea.Model = NewRootModel(api, 0, 7, true)
	m = step(t, m, key("r"))
	root := m.(RootModel)
	assert.Equal(t, "pc1", root.dashboard.SelectedName())
	assert.Contains(t, root.View(), "Clients (2)")

	m = step(t, m, key("c"))
	require.Equal(t, stateCommand, m.(RootModel).state)

	for _, r := range "start" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m = step(t, m, key("enter"))
	assert.Equal(t, []string{"pc1:start"}, api.sent)
	assert.Contains(t, m.(RootModel).View(), "sent")

	m = step(t, m, key("esc"))
	assert.Equal(t, stateDashboard, m.(RootModel).state)
}

func TestRootCommandDisabledWithoutLogin(t *testing.T) {
	api := &fakeAPI{clients: []models.ClientStatus{{Name: "pc1"}}}
	var m tea.Model = NewRootModel(api, 0, 7, false)
	m = step(t, m, key("r"))
	m = step(t, m, key("c"))
	assert.Equal(t, stateDashboard, m.(RootModel).state)
}

func TestRootCommandError(t *testing.T) {
	api := &fakeAPI{clients: []models.ClientStatus{{Name: "pc1"}}, sendErr: errors.New("404 Not Found: unknown agent")}
	var m tea.Model = NewRootModel(api, 0, 7, true)
	m = step(t, m, key("r"))
	m = step(t, m, key("c"))
	m, _ = m.Update(key("x"))
	m = step(t, m, key("enter"))
	assert.Contains(t, m.(RootModel).View(), "unknown agent")
}

func TestHistoryView(t *testing.T) {
	api := &fakeAPI{hist: map[string]dto.DayStats{
		"2026-10-18": {Total: 40, Agents: map[string]dto.AgentDay{"pc1": {Today: 40}}},
		"2026-10-19": {Total: 45, Agents: map[string]dto.AgentDay{"pc1": {Today: 45, Diff: 5}}},
	}}
	var m tea.Model = NewRootModel(api, 0, 7, false)
	m = step(t, m, key("h"))
	root := m.(RootModel)
	require.Equal(t, stateHistory, root.state)
	assert.Equal(t, "2026-10-19", root.history.CurrentDate())
	assert.Contains(t, root.View(), "TOTAL")

	m = step(t, m, key("left"))
	assert.Equal(t, "2026-10-18", m.(RootModel).history.CurrentDate())

	m = step(t, m, key("h"))
	assert.Equal(t, stateDashboard, m.(RootModel).state)
}

func TestFormatDiff(t *testing.T) {
	assert.Equal(t, "0", formatDiff(0))
	assert.Contains(t, formatDiff(3), "+3")
	assert.Contains(t, formatDiff(-3), "-3")
}
