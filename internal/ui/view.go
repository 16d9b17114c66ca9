package ui

import (
	"fmt"
	"strings"
	"time"

	"polship/internal/model"
	"polship/internal/util/format"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")
	b.WriteString(m.viewPhases())
	if logs := m.viewLogs(); logs != "" {
		b.WriteString("\n")
		b.WriteString(logs)
	}
	if summary := m.viewSummary(); summary != "" {
		b.WriteString("\n")
		b.WriteString(summary)
	}
	return b.String()
}

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("polship — deployment " + m.runID)
	elapsed := time.Since(m.started)
	if elapsed > m.budget {
		elapsed = m.budget
	}
	percent := 0.0
	if m.budget > 0 {
		percent = float64(elapsed) / float64(m.budget)
	}
	sub := m.styles.Subtitle.Render(fmt.Sprintf("entity %s • %s of %s budget • q: quit",
		m.opts.EntityID, format.HumanDuration(elapsed), format.HumanDuration(m.budget)))
	return title + "\n" + sub + "\n" + m.bar.ViewAs(percent)
}

func (m Model) viewPhases() string {
	if len(m.phases) == 0 {
		return m.styles.Box.Render(m.styles.Spinner.Render(m.spinner.View()) + " " + m.styles.Faint.Render("waiting for first phase"))
	}
	var b strings.Builder
	for i, p := range m.phases {
		b.WriteString(m.viewPhase(i+1, p))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewPhase(seq int, p phaseView) string {
	name := m.styles.Phase.Render(p.name)
	switch {
	case p.done && p.known:
		return m.styles.Box.Render(fmt.Sprintf("%s %d. %s (%s)",
			m.styles.Success.Render("✓"), seq, name, format.HumanDuration(p.elapsed)))
	case p.done:
		return m.styles.Box.Render(fmt.Sprintf("%s %d. %s",
			m.styles.Success.Render("✓"), seq, name))
	default:
		running := ""
		if !p.startedAt.IsZero() {
			running = " " + m.styles.Faint.Render(format.HumanDuration(time.Since(p.startedAt)))
		}
		return m.styles.Box.Render(fmt.Sprintf("%s %d. %s%s",
			m.styles.Spinner.Render(m.spinner.View()), seq, name, running))
	}
}

func (m Model) viewLogs() string {
	if len(m.logsRing) == 0 {
		return ""
	}
	tail := m.logsRing
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	var b strings.Builder
	for _, line := range tail {
		b.WriteString(m.styles.Faint.Render("  " + truncate(line, 100)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewSummary() string {
	if m.pollErr != nil {
		return m.styles.Error.Render("✗ " + m.pollErr.Error())
	}
	if m.outcome == nil {
		return ""
	}
	res := m.outcome.Result
	switch res.Status {
	case model.StatusSuccess:
		line := "✓ Deployment succeeded"
		if res.DurationMs != nil {
			line += fmt.Sprintf(" in %s", format.HumanDuration(time.Duration(*res.DurationMs)*time.Millisecond))
		}
		if res.BundleVersion != "" {
			line += fmt.Sprintf(" (bundle %s)", res.BundleVersion)
		}
		out := m.styles.Success.Render(line)
		if res.DeploymentURL != "" {
			out += "\n" + m.styles.Faint.Render("  "+res.DeploymentURL)
		}
		return out
	case model.StatusFailed:
		msg := res.ErrorMessage
		if msg == "" {
			msg = "unknown error"
		}
		return m.styles.Error.Render("✗ Deployment failed: " + msg)
	case model.StatusTimeout:
		return m.styles.Warning.Render(fmt.Sprintf("⏱ Timed out after %s (%d phase(s) observed)",
			format.HumanDuration(m.outcome.Elapsed), len(res.Phases)))
	}
	return ""
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
