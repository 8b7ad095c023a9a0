package ui

import (
	"time"

	"dia-relay/backend/app/dto"
	"dia-relay/backend/app/models"

	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateDashboard state = iota
	stateHistory
	stateCommand
)

// API is the subset of the hub client the console needs.
type API interface {
	Clients() ([]models.ClientStatus, error)
	DiaHistory(days int) (map[string]dto.DayStats, error)
	SendCommand(name, command string) (dto.CommandResponse, error)
}

type clientsMsg struct {
	rows []models.ClientStatus
	err  error
}

type historyMsg struct {
	hist map[string]dto.DayStats
	err  error
}

type commandResultMsg struct {
	resp dto.CommandResponse
	err  error
}

type tickMsg time.Time

type RootModel struct {
	api         API
	refresh     time.Duration
	historyDays int
	state       state
	dashboard   DashboardModel
	history     HistoryModel
	form        CommandFormModel
}

func NewRootModel(api API, refresh time.Duration, historyDays int, canCommand bool) RootModel {
	return RootModel{
		api:         api,
		refresh:     refresh,
		historyDays: historyDays,
		state:       stateDashboard,
		dashboard:   NewDashboardModel(canCommand),
		history:     NewHistoryModel(),
	}
}

func (m RootModel) Init() tea.Cmd {
	return tea.Batch(m.fetchClients(), m.tick())
}

func (m RootModel) fetchClients() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		rows, err := api.Clients()
		return clientsMsg{rows: rows, err: err}
	}
}

func (m RootModel) fetchHistory() tea.Cmd {
	api, days := m.api, m.historyDays
	return func() tea.Msg {
		hist, err := api.DiaHistory(days)
		return historyMsg{hist: hist, err: err}
	}
}

func (m RootModel) sendCommand(name, command string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		resp, err := api.SendCommand(name, command)
		return commandResultMsg{resp: resp, err: err}
	}
}

func (m RootModel) tick() tea.Cmd {
	if m.refresh <= 0 {
		return nil
	}
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.dashboard.SetSize(msg.Width, msg.Height)
		m.history.SetSize(msg.Width, msg.Height)
		return m, nil
	case tickMsg:
		cmds := []tea.Cmd{m.fetchClients(), m.tick()}
		if m.state == stateHistory {
			cmds = append(cmds, m.fetchHistory())
		}
		return m, tea.Batch(cmds...)
	case clientsMsg:
		m.dashboard.SetRows(msg.rows, msg.err)
		return m, nil
	case historyMsg:
		m.history.SetHistory(msg.hist, msg.err)
		return m, nil
	case commandResultMsg:
		m.form.SetResult(msg.resp, msg.err)
		return m, nil
	}

	switch m.state {
	case stateHistory:
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "h", "esc":
				m.state = stateDashboard
				return m, nil
			case "q":
				return m, tea.Quit
			case "r":
				return m, m.fetchHistory()
			}
		}
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd

	case stateCommand:
		var action formAction
		var cmd tea.Cmd
		m.form, action, cmd = m.form.Update(msg)
		switch action {
		case formCancel:
			m.state = stateDashboard
			return m, m.fetchClients()
		case formSubmit:
			return m, m.sendCommand(m.form.Target(), m.form.Value())
		}
		return m, cmd

	default:
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case "q":
				return m, tea.Quit
			case "r":
				return m, m.fetchClients()
			case "h":
				m.state = stateHistory
				return m, m.fetchHistory()
			case "c":
				name := m.dashboard.SelectedName()
				if !m.dashboard.canCommand || name == "" {
					return m, nil
				}
				m.form = NewCommandFormModel(name)
				m.state = stateCommand
				return m, m.form.Init()
			}
		}
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd
	}
}

func (m RootModel) View() string {
	switch m.state {
	case stateHistory:
		return docStyle.Render(m.history.View())
	case stateCommand:
		return docStyle.Render(m.form.View())
	default:
		return docStyle.Render(m.dashboard.View())
	}
}
