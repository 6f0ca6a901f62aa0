package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/merkleized-metadata/metadata"
)

type interactiveModel struct {
	err    error
	md     *metadata.RuntimeMetadata
	input  textinput.Model
	rewrap int
	state  modelState
}

type modelState int

const (
	stateInput modelState = iota
	stateShowResult
)

type decodedMsg struct {
	err error
	md  *metadata.RuntimeMetadata
}

func newInteractiveModel() *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "0x6d657461..."
	ti.Prompt = "metadata: "
	ti.Width = 60
	ti.CharLimit = 0
	ti.Focus()
	return &interactiveModel{input: ti, state: stateInput, rewrap: -1}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) decode() tea.Msg {
	md, err := metadata.FromHex(m.input.Value())
	return decodedMsg{md: md, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "enter":
			switch m.state {
			case stateInput:
				if strings.TrimSpace(m.input.Value()) == "" {
					return m, nil
				}
				return m, m.decode
			case stateShowResult:
				m.reset()
				return m, textinput.Blink
			}

		case "tab":
			// Cycle the re-wrap preview through every shape, then off.
			if m.state == stateShowResult && m.md != nil {
				m.rewrap++
				if m.rewrap >= len(metadata.Shapes) {
					m.rewrap = -1
				}
				return m, nil
			}

		case "esc":
			switch m.state {
			case stateInput:
				return m, tea.Quit
			case stateShowResult:
				m.reset()
				return m, textinput.Blink
			}
		}

	case decodedMsg:
		m.md = msg.md
		m.err = msg.err
		m.state = stateShowResult
		m.input.Blur()
		return m, nil
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateInput
	m.md = nil
	m.err = nil
	m.rewrap = -1
	m.input.SetValue("")
	m.input.Focus()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Metadata Inspector"))
	b.WriteString("\n\n")

	switch m.state {
	case stateInput:
		b.WriteString("Paste hex-encoded metadata:\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter decode • esc quit"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
			b.WriteString(helpStyle.Render("enter try again • ctrl+c quit"))
			break
		}

		b.WriteString(renderReport(describe(m.md), true))
		if m.rewrap >= 0 {
			shape := metadata.Shapes[m.rewrap]
			b.WriteString("\n")
			b.WriteString(labelStyle.Render("as " + shape.String() + ":"))
			b.WriteString("\n")
			b.WriteString(resultStyle.Render(truncate(rewrapHex(m.md, shape), 512)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab re-wrap • enter decode another • ctrl+c quit"))
	}

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + fmt.Sprintf("... (%d more chars)", len(s)-n)
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
