package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "235", Dark: "252"}).
			Padding(0, 1)

	sessionTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "244", Dark: "244"})

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "27", Dark: "39"})

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "27", Dark: "39"})

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "29", Dark: "42"})

	attachmentStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "244", Dark: "244"})

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("124")).
			Padding(0, 1)

	streamingStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "244", Dark: "244"})

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "248", Dark: "241"})
)

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderBanner())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	active := m.store.Active()
	tabs := make([]string, 0, len(m.store.Sessions()))
	for _, sess := range m.store.Sessions() {
		style := sessionTabStyle
		if active != nil && sess.ID == active.ID {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(sess.Title))
	}
	return headerStyle.Render("codechat") + "  " + strings.Join(tabs, " | ")
}

func (m Model) renderBanner() string {
	if banner := m.store.Banner(); banner != "" {
		return bannerStyle.Render(banner) + helpStyle.Render("  esc to dismiss")
	}
	if m.store.IsStreaming() {
		return streamingStyle.Render("streaming...")
	}
	if img := m.store.DraftImage(); img != nil {
		return attachmentStyle.Render(fmt.Sprintf("attached: %s (%s)", img.Name, img.MimeType))
	}
	return ""
}

func (m Model) renderHelp() string {
	return helpStyle.Render("enter send · tab switch session · /new /clear /image <path> · pgup/pgdn scroll · ctrl+c quit")
}

// renderTranscript renders the active session's messages. Assistant content
// goes through the markdown renderer; user content is shown verbatim.
func (m Model) renderTranscript() string {
	active := m.store.Active()
	if active == nil || len(active.Messages) == 0 {
		return streamingStyle.Render("\n  Start the conversation below.\n")
	}

	var b strings.Builder
	for _, msg := range active.Messages {
		switch {
		case msg.Role == "user":
			b.WriteString(userLabelStyle.Render("You"))
			b.WriteString("\n")
			if msg.Content != "" {
				b.WriteString(msg.Content)
				b.WriteString("\n")
			}
			if msg.Image != nil {
				b.WriteString(attachmentStyle.Render("[image: " + msg.Image.Name + "]"))
				b.WriteString("\n")
			}
		default:
			b.WriteString(assistantLabelStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Content))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMarkdown(content string) string {
	if content == "" {
		return streamingStyle.Render("...") + "\n"
	}
	if m.renderer == nil {
		return content + "\n"
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		// Mid-stream content can be transiently unrenderable; show it raw.
		return content + "\n"
	}
	return out
}
