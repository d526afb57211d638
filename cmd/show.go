package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ragchat/internal"
)

var (
	showLimit int
	showSince string
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("108")).
			Padding(0, 2)

	timestampStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show messages for a specific session",
	Long:  `Replay a saved chat session, including the sources cited by each answer.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		prefs, err := loadPrefs()
		if err != nil {
			return err
		}

		store, err := openStore(prefs)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		session, err := store.GetSession(sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if session == nil {
			return fmt.Errorf("session not found: %s (use 'ragchat list' to see available sessions)", sessionID)
		}

		messages, err := store.ListMessages(sessionID)
		if err != nil {
			return fmt.Errorf("failed to load messages: %w", err)
		}

		// Filter by timestamp if --since is provided
		if showSince != "" {
			sinceTime, err := time.Parse(time.RFC3339, showSince)
			if err != nil {
				return fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
			}
			filtered := make([]*internal.ChatMessage, 0, len(messages))
			for _, msg := range messages {
				if !internal.MillisToTime(msg.CreatedAt).Before(sinceTime) {
					filtered = append(filtered, msg)
				}
			}
			messages = filtered
		}

		displaySessionHeader(session, len(messages))

		totalFiltered := len(messages)
		if showLimit > 0 && showLimit < len(messages) {
			messages = messages[:showLimit]
		}

		for i, msg := range messages {
			displayMessage(i+1, msg, totalFiltered)
		}

		if showLimit > 0 && showLimit < totalFiltered {
			remaining := totalFiltered - showLimit
			fmt.Println()
			fmt.Println(lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true).
				Render(fmt.Sprintf("... (%d more message(s))", remaining)))
		}

		return nil
	},
}

func displaySessionHeader(session *internal.ChatSession, messageCount int) {
	header := sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", session.Title))
	fmt.Println(header)

	metaParts := []string{
		fmt.Sprintf("Created: %s", internal.FormatMillis(session.CreatedAt)),
		fmt.Sprintf("Messages: %d", messageCount),
	}
	fmt.Println(sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
	fmt.Println()
}

func displayMessage(index int, msg *internal.ChatMessage, total int) {
	var actorStyle lipgloss.Style
	var actorLabel string

	switch msg.Role {
	case internal.RoleUser:
		actorStyle = userMessageStyle
		actorLabel = "👤 User"
	case internal.RoleAssistant:
		actorStyle = assistantMessageStyle
		actorLabel = "🤖 Assistant"
	default:
		actorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		actorLabel = fmt.Sprintf("🔧 %s", msg.Role)
	}

	header := actorStyle.Render(actorLabel) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	header += " " + timestampStyle.Render(internal.MillisToTime(msg.CreatedAt).Format("15:04:05"))
	fmt.Println(header)

	content := strings.TrimSpace(msg.Content)
	if content != "" {
		content = wrapText(content, 80)
		fmt.Println(messageContentStyle.Render(content))
	} else {
		fmt.Println(messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	}

	if len(msg.Sources) > 0 {
		var refs []string
		for _, src := range msg.Sources {
			if src.DocumentRef != "" {
				refs = append(refs, fmt.Sprintf("%s (%s)", src.Filename, src.DocumentRef))
			} else {
				refs = append(refs, src.Filename)
			}
		}
		fmt.Println(sourceStyle.Render("📚 Sources: " + strings.Join(refs, ", ")))
	}

	fmt.Println()
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		// Wrap long lines
		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 0, "Limit number of messages to show")
	showCmd.Flags().StringVar(&showSince, "since", "", "Show messages since timestamp (ISO8601)")
}
