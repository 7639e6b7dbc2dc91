// Package tui is the interactive workbench: three tabs driving the
// generation, audit, and vault workflows. The controllers are the single
// source of truth; the model re-reads their snapshots on every message and
// keeps only presentation state of its own.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/groundcheck/groundcheck/internal/app"
	"github.com/groundcheck/groundcheck/internal/vault"
	"github.com/groundcheck/groundcheck/internal/workflow"
)

type tabID int

const (
	tabAsk tabID = iota
	tabAudit
	tabVault
	tabCount
)

type generationDoneMsg struct{ err error }

type auditDoneMsg struct{ err error }

type vaultSaveDoneMsg struct{ err error }

type statusTickMsg time.Time

// tickInterval keeps the spinner and TTL-reverted statuses repainting.
const tickInterval = 250 * time.Millisecond

// Model is the bubbletea model for the workbench.
type Model struct {
	app   *app.App
	theme theme

	activeTab tabID
	notice    string
	noticeErr bool

	question textinput.Model
	draft    textarea.Model
	editor   textarea.Model
	results  viewport.Model
	report   viewport.Model
	spin     spinner.Model

	width  int
	height int
	ready  bool
}

// New builds the workbench model around a wired application.
func New(a *app.App) Model {
	th := newTheme()

	question := textinput.New()
	question.Prompt = "❯ "
	question.Placeholder = "Ask a question grounded in the vault..."
	question.CharLimit = 2000
	question.Focus()

	draft := textarea.New()
	draft.Placeholder = "Paste the draft response to audit..."
	draft.CharLimit = 0
	draft.ShowLineNumbers = false

	editor := textarea.New()
	editor.Placeholder = "Knowledge vault document. ctrl+l loads the sample policy."
	editor.CharLimit = 0
	editor.ShowLineNumbers = false
	editor.SetValue(a.Vault.Content())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = th.notice

	return Model{
		app:      a,
		theme:    th,
		question: question,
		draft:    draft,
		editor:   editor,
		results:  viewport.New(0, 0),
		report:   viewport.New(0, 0),
		spin:     sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	case statusTickMsg:
		m.refreshPanes()
		cmds = append(cmds, tick())

	case generationDoneMsg:
		m.noticeFor(msg.err, "Enter a question first.")
		m.refreshPanes()

	case auditDoneMsg:
		m.noticeFor(msg.err, "Enter a draft to audit.")
		m.refreshPanes()

	case vaultSaveDoneMsg:
		m.noticeFor(msg.err, "")
		m.refreshPanes()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m.switchTab((m.activeTab + 1) % tabCount)
		case "shift+tab":
			return m.switchTab((m.activeTab + tabCount - 1) % tabCount)
		}

		switch m.activeTab {
		case tabAsk:
			switch msg.String() {
			case "enter":
				m.clearNotice()
				return m, m.submitGenerationCmd()
			case "ctrl+y":
				if m.app.Generation.CopyAnswer() {
					m.clearNotice()
				} else {
					m.notice, m.noticeErr = "Nothing to copy yet.", true
				}
				m.refreshPanes()
				return m, nil
			}
		case tabAudit:
			if msg.String() == "ctrl+s" {
				m.clearNotice()
				return m, m.submitAuditCmd()
			}
		case tabVault:
			switch msg.String() {
			case "ctrl+s":
				m.clearNotice()
				// The manager saves the snapshot taken here; further
				// editing is free to continue.
				m.app.Vault.SetContent(m.editor.Value())
				return m, m.saveVaultCmd()
			case "ctrl+l":
				if err := m.app.Vault.LoadSample(); err != nil {
					m.notice, m.noticeErr = "A save is running; try again shortly.", true
				} else {
					m.editor.SetValue(m.app.Vault.Content())
					m.notice, m.noticeErr = "Sample policy loaded. Save to index it.", false
				}
				m.refreshPanes()
				return m, nil
			}
		}

		// Everything else belongs to the focused editor; pgup/pgdn scroll
		// the result panes.
		switch msg.String() {
		case "pgup", "pgdown":
			var cmd tea.Cmd
			switch m.activeTab {
			case tabAsk:
				m.results, cmd = m.results.Update(msg)
			case tabAudit:
				m.report, cmd = m.report.Update(msg)
			}
			cmds = append(cmds, cmd)
		default:
			var cmd tea.Cmd
			switch m.activeTab {
			case tabAsk:
				m.question, cmd = m.question.Update(msg)
			case tabAudit:
				m.draft, cmd = m.draft.Update(msg)
			case tabVault:
				m.editor, cmd = m.editor.Update(msg)
			}
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) switchTab(tab tabID) (Model, tea.Cmd) {
	m.activeTab = tab
	m.clearNotice()
	m.question.Blur()
	m.draft.Blur()
	m.editor.Blur()

	var cmd tea.Cmd
	switch tab {
	case tabAsk:
		cmd = m.question.Focus()
	case tabAudit:
		cmd = m.draft.Focus()
	case tabVault:
		cmd = m.editor.Focus()
	}
	m.refreshPanes()
	return m, cmd
}

func (m Model) submitGenerationCmd() tea.Cmd {
	gen := m.app.Generation
	question := m.question.Value()
	return func() tea.Msg {
		return generationDoneMsg{err: gen.Submit(context.Background(), question)}
	}
}

func (m Model) submitAuditCmd() tea.Cmd {
	aud := m.app.Audit
	draft := m.draft.Value()
	return func() tea.Msg {
		return auditDoneMsg{err: aud.Submit(context.Background(), draft)}
	}
}

func (m Model) saveVaultCmd() tea.Cmd {
	v := m.app.Vault
	return func() tea.Msg {
		return vaultSaveDoneMsg{err: v.Save(context.Background())}
	}
}

func (m *Model) clearNotice() {
	m.notice, m.noticeErr = "", false
}

// noticeFor translates a submission error into a footer notice. Workflow
// outcomes never show up here; they render from the controller snapshots.
func (m *Model) noticeFor(err error, emptyText string) {
	switch {
	case err == nil:
	case errors.Is(err, workflow.ErrEmptyInput):
		m.notice, m.noticeErr = emptyText, true
	case errors.Is(err, workflow.ErrBusy):
		m.notice, m.noticeErr = "A request is already running.", true
	case errors.Is(err, vault.ErrSaveInFlight):
		m.notice, m.noticeErr = "A save is already running.", true
	case errors.Is(err, vault.ErrEmptyContent):
		// The rejected save status carries its own message.
	default:
		m.notice, m.noticeErr = err.Error(), true
	}
}

func (m *Model) resize() {
	contentWidth := max(40, m.width-4)
	inner := max(20, contentWidth-4)

	m.question.Width = inner - 2
	m.draft.SetWidth(inner)
	m.draft.SetHeight(8)
	m.editor.SetWidth(inner)
	m.editor.SetHeight(max(6, m.height-14))

	m.results.Width = inner
	m.results.Height = max(5, m.height-14)
	m.report.Width = inner
	m.report.Height = max(5, m.height-22)

	m.refreshPanes()
}

// Run starts the workbench and blocks until the user quits.
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
