package ui

import (
	"fmt"
	"sort"
	"strings"

	"dia-relay/backend/app/dto"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// HistoryModel shows one day of dia history at a time; left/right page
// through the days, newest first.
type HistoryModel struct {
	table table.Model
	dates []string
	hist  map[string]dto.DayStats
	idx   int
	err   error
}

func NewHistoryModel() HistoryModel {
	columns := []table.Column{
		{Title: "Name", Width: 16},
		{Title: "Today", Width: 12},
		{Title: "Diff", Width: 10},
		{Title: "Game", Width: 14},
		{Title: "Server", Width: 14},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())
	return HistoryModel{table: t}
}

func (m *HistoryModel) SetSize(width, height int) {
	if height > 8 {
		m.table.SetHeight(height - 8)
	}
}

func (m *HistoryModel) SetHistory(hist map[string]dto.DayStats, err error) {
	m.err = err
	if err != nil {
		return
	}
	current := m.CurrentDate()
	m.hist = hist
	dates := make([]string, 0, len(hist))
	for d := range hist {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	m.dates = dates
	m.idx = 0
	for i, d := range m.dates {
		if d == current {
			m.idx = i
		}
	}
	m.render()
}

func (m HistoryModel) CurrentDate() string {
	if m.idx < len(m.dates) {
		return m.dates[m.idx]
	}
	return ""
}

func (m *HistoryModel) render() {
	date := m.CurrentDate()
	if date == "" {
		m.table.SetRows(nil)
		return
	}
	day := m.hist[date]
	names := make([]string, 0, len(day.Agents))
	for n := range day.Agents {
		names = append(names, n)
	}
	sort.Strings(names)
	rows := make([]table.Row, 0, len(names)+1)
	for _, n := range names {
		a := day.Agents[n]
		rows = append(rows, table.Row{n, fmt.Sprint(a.Today), formatDiff(a.Diff), a.Game, a.Server})
	}
	rows = append(rows, table.Row{"TOTAL", fmt.Sprint(day.Total), "", "", ""})
	m.table.SetRows(rows)
}

func formatDiff(d int64) string {
	switch {
	case d > 0:
		return upStyle.Render(fmt.Sprintf("+%d", d))
	case d < 0:
		return downStyle.Render(fmt.Sprint(d))
	default:
		return "0"
	}
}

func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "left":
			if m.idx < len(m.dates)-1 {
				m.idx++
				m.render()
			}
			return m, nil
		case "right":
			if m.idx > 0 {
				m.idx--
				m.render()
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m HistoryModel) View() string {
	var b strings.Builder
	title := "Dia history"
	if d := m.CurrentDate(); d != "" {
		title += " · " + d
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(errorMessageStyle("history failed: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(blurredStyle.Render("←/→ day • r refresh • h/esc back • q quit"))
	return b.String()
}
