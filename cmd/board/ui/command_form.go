package ui

import (
	"fmt"
	"strings"

	"dia-relay/backend/app/dto"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

type CommandFormModel struct {
	target  string
	input   textinput.Model
	sending bool
	result  string
	err     error
}

func NewCommandFormModel(target string) CommandFormModel {
	ti := textinput.New()
	ti.Placeholder = "command"
	ti.CharLimit = 1024
	ti.Width = 50
	ti.Focus()
	return CommandFormModel{target: target, input: ti}
}

func (m CommandFormModel) Init() tea.Cmd { return textinput.Blink }

func (m CommandFormModel) Target() string { return m.target }

func (m CommandFormModel) Value() string { return strings.TrimSpace(m.input.Value()) }

func (m *CommandFormModel) SetResult(resp dto.CommandResponse, err error) {
	m.sending = false
	m.err = err
	if err != nil {
		m.result = ""
		return
	}
	m.result = fmt.Sprintf("%s → %s (%s)", resp.RequestID, resp.AgentIP, resp.Status)
	if resp.Error != "" {
		m.result += ": " + resp.Error
	}
	m.input.SetValue("")
}

func (m CommandFormModel) Update(msg tea.Msg) (CommandFormModel, formAction, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			return m, formCancel, nil
		case "enter":
			if m.sending || m.Value() == "" {
				return m, formNone, nil
			}
			m.sending = true
			m.result = ""
			m.err = nil
			return m, formSubmit, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, formNone, cmd
}

func (m CommandFormModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Command → " + m.target))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	switch {
	case m.sending:
		b.WriteString(blurredStyle.Render("sending..."))
	case m.err != nil:
		b.WriteString(errorMessageStyle(m.err.Error()))
	case m.result != "":
		b.WriteString(statusMessageStyle(m.result))
	}
	b.WriteString("\n\n")
	b.WriteString(blurredStyle.Render("enter send • esc back"))
	return b.String()
}
