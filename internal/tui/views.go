package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/groundcheck/groundcheck/internal/agent"
	"github.com/groundcheck/groundcheck/internal/lifecycle"
	"github.com/groundcheck/groundcheck/internal/taxonomy"
	"github.com/groundcheck/groundcheck/internal/vault"
)

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}
	return m.theme.root.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderContent(),
		m.renderFooter(),
	))
}

func (m Model) renderHeader() string {
	tabs := []struct {
		id    tabID
		label string
	}{
		{tabAsk, "Ask"},
		{tabAudit, "Audit"},
		{tabVault, "Vault"},
	}
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		style := m.theme.tabInactive
		if t.id == m.activeTab {
			style = m.theme.tabActive
		}
		parts = append(parts, style.Render(t.label))
	}
	strip := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	name := m.theme.appName.Render("groundcheck")

	gap := m.width - lipgloss.Width(strip) - lipgloss.Width(name) - 4
	if gap < 1 {
		gap = 1
	}
	return m.theme.header.Render(strip + strings.Repeat(" ", gap) + name)
}

func (m Model) renderContent() string {
	switch m.activeTab {
	case tabAudit:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderPanel("Draft", m.draft.View()),
			m.renderPanel("Compliance report", m.report.View()),
		)
	case tabVault:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderPanel("Vault document", m.editor.View()),
			m.renderPanel("Status", m.renderVaultStatus()),
		)
	default:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderPanel("Question", m.question.View()),
			m.renderPanel("Answer", m.results.View()),
		)
	}
}

func (m Model) renderPanel(title, body string) string {
	head := m.theme.panelTitle.Render(title)
	return m.theme.panel.Width(max(20, m.width-4)).Render(head + "\n" + body)
}

func (m Model) renderFooter() string {
	line := m.theme.help.Render(m.keyHints())
	if m.notice != "" {
		style := m.theme.notice
		if m.noticeErr {
			style = m.theme.errNotice
		}
		line = style.Render(m.notice) + "\n" + line
	}
	return m.theme.footer.Render(line)
}

func (m Model) keyHints() string {
	switch m.activeTab {
	case tabAudit:
		return "ctrl+s audit · pgup/pgdn scroll · tab switch · esc quit"
	case tabVault:
		return "ctrl+s save · ctrl+l load sample · tab switch · esc quit"
	default:
		return "enter ask · ctrl+y copy answer · pgup/pgdn scroll · tab switch · esc quit"
	}
}

// refreshPanes re-reads the controller snapshots into the result viewports.
// Wrapping happens here so pane content reflows on resize.
func (m *Model) refreshPanes() {
	wrap := lipgloss.NewStyle().Width(m.results.Width)
	m.results.SetContent(wrap.Render(m.renderGenerationReport()))
	wrap = wrap.Width(m.report.Width)
	m.report.SetContent(wrap.Render(m.renderAuditReport()))
}

func (m *Model) renderGenerationReport() string {
	snap := m.app.Generation.State()
	switch snap.State {
	case lifecycle.StateIdle:
		return m.theme.muted.Render("Ask a question to check it against the vault.")
	case lifecycle.StateInFlight:
		return m.spin.View() + " Consulting the vault..."
	case lifecycle.StateFailed:
		// Generation resolves every run as completed, but render the
		// reason anyway rather than a blank pane.
		return m.theme.errNotice.Render(snap.Reason)
	}

	res := snap.Value
	var b strings.Builder
	if res.Status == agent.StatusSuccess {
		b.WriteString(m.theme.answer.Render(res.Answer))
		if m.app.Generation.Copied() {
			b.WriteString("\n\n" + m.theme.safe.Render("✓ Copied to clipboard"))
		}
		if len(res.Citations) > 0 {
			b.WriteString("\n\n" + m.theme.panelTitle.Render(fmt.Sprintf("Citations (%d)", len(res.Citations))))
			for i, c := range res.Citations {
				source := strings.TrimSpace(c.SourceText)
				if source == "" {
					source = "(no source text)"
				}
				b.WriteString(fmt.Sprintf("\n%2d. %s", i+1, m.theme.citation.Render(source)))
				if rel := strings.TrimSpace(c.Relevance); rel != "" {
					b.WriteString("\n    " + m.theme.muted.Render(rel))
				}
			}
		}
	} else {
		b.WriteString(m.theme.warning.Render("⚠ " + res.Warning))
		if res.Answer != "" {
			b.WriteString("\n\n" + m.theme.answer.Render(res.Answer))
		}
	}
	return b.String()
}

func (m *Model) renderAuditReport() string {
	snap := m.app.Audit.State()
	switch snap.State {
	case lifecycle.StateIdle:
		return m.theme.muted.Render("Paste a draft and press ctrl+s to audit it.")
	case lifecycle.StateInFlight:
		return m.spin.View() + " Auditing draft..."
	case lifecycle.StateFailed:
		return m.theme.errNotice.Render("Audit failed: " + snap.Reason)
	}

	res := snap.Value
	band := taxonomy.BandForScore(res.ComplianceScore)

	var b strings.Builder
	b.WriteString(m.theme.bandStyle(band).Render(fmt.Sprintf("%s · %.1f/100", taxonomy.BandLabel(band), res.ComplianceScore)))
	b.WriteString(m.theme.muted.Render(fmt.Sprintf("  %d sentences reviewed", res.TotalSentences)))
	if sum := strings.TrimSpace(res.Summary); sum != "" {
		b.WriteString("\n\n" + m.theme.answer.Render(sum))
	}
	for _, s := range res.Analysis {
		b.WriteString("\n\n")
		if icon, ok := taxonomy.IconForStatus(s.Status); ok {
			b.WriteString(icon.Glyph + " ")
		} else {
			b.WriteString("· ")
		}
		b.WriteString(m.theme.riskStyle(taxonomy.CategorizeRisk(s.RiskLevel)).Render(s.Sentence))
		if why := strings.TrimSpace(s.Explanation); why != "" {
			b.WriteString("\n  " + m.theme.muted.Render(why))
		}
		if ref := strings.TrimSpace(s.VaultReference); ref != "" {
			b.WriteString("\n  " + m.theme.citation.Render("vault: "+ref))
		}
	}
	return b.String()
}

func (m *Model) renderVaultStatus() string {
	st := m.app.Vault.Status()
	switch st.State {
	case vault.SaveSaving:
		return m.spin.View() + " Saving vault content..."
	case vault.SaveSaved:
		return m.theme.safe.Render("✓ " + st.Message)
	case vault.SaveRejected:
		return m.theme.danger.Render("✗ " + st.Message)
	default:
		return m.theme.help.Render("Edit above, then ctrl+s to save for re-indexing.")
	}
}
