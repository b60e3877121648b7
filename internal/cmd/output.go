package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/learnsphere/client/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderSession formats a session snapshot for the terminal
func renderSession(state models.SessionState) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Session"))
	b.WriteString("\n")

	if !state.IsAuthenticated || state.CurrentUser == nil {
		b.WriteString(warnStyle.Render("logged out"))
		b.WriteString("\n")
		return b.String()
	}

	user := state.CurrentUser
	b.WriteString(okStyle.Render("logged in"))
	b.WriteString("\n")
	writeField(&b, "Name", user.DisplayName)
	writeField(&b, "Email", user.Email)
	writeField(&b, "Role", string(user.Role))
	writeField(&b, "Avatar", user.AvatarURL)
	return b.String()
}

// renderOutcome formats the outcome of a login or logout
func renderOutcome(outcome models.AuthOutcome) string {
	var status string
	switch outcome.Result {
	case models.AuthResultAuthenticated, models.AuthResultLoggedOut:
		status = okStyle.Render(string(outcome.Result))
	default:
		status = warnStyle.Render(string(outcome.Result))
	}
	return fmt.Sprintf("%s %s\n", status, mutedStyle.Render("-> "+outcome.Redirect))
}

// renderAutoplay formats the autoplay preference
func renderAutoplay(enabled bool) string {
	if enabled {
		return "autoplay " + okStyle.Render("on") + "\n"
	}
	return "autoplay " + warnStyle.Render("off") + "\n"
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %s %s\n", mutedStyle.Render(name+":"), value)
}
