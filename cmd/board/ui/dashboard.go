package ui

import (
	"fmt"
	"strings"

	"dia-relay/backend/app/models"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

const timeLayout = "2006-01-02 15:04:05"

type DashboardModel struct {
	table      table.Model
	rows       []models.ClientStatus
	err        error
	canCommand bool
}

func NewDashboardModel(canCommand bool) DashboardModel {
	columns := []table.Column{
		{Title: "Name", Width: 16},
		{Title: "IP", Width: 15},
		{Title: "Game", Width: 14},
		{Title: "Server", Width: 14},
		{Title: "Dia", Width: 10},
		{Title: "Last report", Width: 19},
		{Title: "Status", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())
	return DashboardModel{table: t, canCommand: canCommand}
}

func (m *DashboardModel) SetSize(width, height int) {
	if height > 8 {
		m.table.SetHeight(height - 8)
	}
}

// SetRows replaces the table content. On error the previous rows stay so a
// transient hub outage does not blank the screen.
func (m *DashboardModel) SetRows(rows []models.ClientStatus, err error) {
	m.err = err
	if err != nil {
		return
	}
	m.rows = rows
	out := make([]table.Row, 0, len(rows))
	for _, c := range rows {
		out = append(out, table.Row{
			c.Name,
			c.IP,
			c.Game,
			c.Server,
			fmt.Sprint(c.Dia),
			c.LastReport.Local().Format(timeLayout),
			c.Status,
		})
	}
	m.table.SetRows(out)
}

func (m DashboardModel) SelectedName() string {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Clients (%d)", len(m.rows))))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(errorMessageStyle("refresh failed: " + m.err.Error()))
		b.WriteString("\n")
	}
	help := "↑/↓ select • r refresh • h history"
	if m.canCommand {
		help += " • c command"
	}
	b.WriteString(blurredStyle.Render(help + " • q quit"))
	return b.String()
}
