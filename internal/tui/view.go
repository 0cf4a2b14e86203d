package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/session"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.screen {
	case ScreenLoading:
		content = subtleStyle.Render("Loading your plan...")
	case ScreenWelcome:
		content = m.viewWelcome()
	case ScreenInterview:
		content = m.viewInterview()
	case ScreenSaving:
		content = subtleStyle.Render("Building your plan...")
	case ScreenPlan:
		if m.sessionActive() {
			content = m.viewSession()
		} else {
			content = m.viewPlan()
		}
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("solace"),
		content,
		m.viewToasts(),
		m.help.View(m),
	))
}

func (m Model) viewWelcome() string {
	var b strings.Builder
	b.WriteString("Welcome. A few questions about the last two weeks will help shape\n")
	b.WriteString("a daily plan of short exercises for you.\n\n")
	b.WriteString(fmt.Sprintf("%d questions, one answer each. You can go back at any time.\n\n", m.engine.Total()))
	b.WriteString(subtleStyle.Render("Press enter to begin."))
	return b.String()
}

func (m Model) viewInterview() string {
	if m.form == nil {
		return ""
	}
	if m.waiting {
		return m.form.View() + "\n" + subtleStyle.Render("Answer recorded.")
	}
	return m.form.View()
}

func questionCounter(idx, total int) string {
	return fmt.Sprintf("Question %d of %d", idx+1, total)
}

func (m Model) viewPlan() string {
	var b strings.Builder

	if m.assessment != nil {
		b.WriteString(m.viewResult(*m.assessment))
		b.WriteString("\n\n")
	}

	plan := m.snapshot.Plan
	b.WriteString(fmt.Sprintf("Day %d of %s  ·  %d sessions today\n\n",
		min(plan.DaysCompleted+1, constants.PlanDurationDays), plan.DurationLabel, m.snapshot.SessionsToday))

	if m.snapshot.Phase == session.PhaseAllDone {
		b.WriteString(successToastStyle.Render("Every activity for today is done. See you tomorrow."))
		b.WriteString("\n")
		return b.String()
	}
	if len(m.snapshot.Available) == 0 {
		b.WriteString(subtleStyle.Render("Nothing to do right now."))
		return b.String()
	}

	b.WriteString("Today's activities\n")
	for i, id := range m.snapshot.Available {
		line := m.activityLine(id)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if len(m.snapshot.CompletedToday) > 0 {
		done := make([]string, 0, len(m.snapshot.CompletedToday))
		for _, id := range m.snapshot.CompletedToday {
			done = append(done, m.activityTitle(id))
		}
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render("Done today: " + strings.Join(done, ", ")))
	}
	return b.String()
}

func (m Model) activityLine(id string) string {
	a, ok := m.catalog.Activity(id)
	if !ok {
		return id
	}
	return fmt.Sprintf("%s (%d min)", a.Title, a.DurationMinutes)
}

func (m Model) viewResult(a models.Assessment) string {
	severity := string(a.Severity)
	if a.Severity == models.SeveritySevere {
		severity = severeStyle.Render(severity)
	}
	lines := []string{fmt.Sprintf("Assessment: %s (score %d)", severity, a.Score)}
	for _, r := range a.Recommendations {
		lines = append(lines, subtleStyle.Render("• "+r))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewSession() string {
	id := m.snapshot.ActiveActivityID
	activity, ok := m.catalog.Activity(id)
	if !ok {
		activity = models.Activity{ID: id, Title: id}
	}

	var b strings.Builder
	b.WriteString(activityStyle.Render(activity.Title))
	b.WriteString("\n")
	if activity.Description != "" {
		b.WriteString(activity.Description)
		b.WriteString("\n")
	}
	for i, step := range activity.Instructions {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("%d. %s", i+1, step)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(float64(m.snapshot.Progress) / 100))
	if m.snapshot.Phase == session.PhaseCompleting {
		b.WriteString("\n")
		b.WriteString(successToastStyle.Render("Completed"))
	}
	return b.String()
}

func (m Model) viewToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		lines = append(lines, toastStyle(t.notice.Level).Render(t.notice.Text))
	}
	return strings.Join(lines, "\n")
}

func toastStyle(level session.NoticeLevel) lipgloss.Style {
	switch level {
	case session.NoticeSuccess:
		return successToastStyle
	case session.NoticeWarning:
		return warningToastStyle
	default:
		return infoToastStyle
	}
}
