package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/core"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	humanStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// renderMessage renders m as "role: content".
func renderMessage(m core.Message) string {
	style := systemStyle
	switch m.Role {
	case core.RoleHuman:
		style = humanStyle
	case core.RoleAssistant:
		style = assistantStyle
	}
	return style.Render(string(m.Role)+":") + " " + strings.TrimSpace(m.Content)
}

// printHistory writes the conversation, oldest first.
func printHistory(w io.Writer, sessionID string, msgs []core.Message) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Conversation History (%s)", sessionID)))
	if len(msgs) == 0 {
		fmt.Fprintln(w, systemStyle.Render("No messages yet."))
		return
	}
	for _, m := range msgs {
		fmt.Fprintln(w, renderMessage(m))
	}
}
