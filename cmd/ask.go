package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ragchat/internal"
)

var (
	askSession string
	askNew     bool
)

var answerSourceStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("108")).
	Italic(true)

// streamPrinter writes each visible update as a delta so tokens appear as
// they arrive. Progress stages and the final answer each start a fresh line
// because they do not extend the previous content.
type streamPrinter struct {
	last string
}

func (p *streamPrinter) render(_, content string) {
	switch {
	case p.last != "" && strings.HasPrefix(content, p.last):
		fmt.Print(strings.TrimPrefix(content, p.last))
	case p.last != "":
		fmt.Println()
		fmt.Print(content)
	default:
		fmt.Print(content)
	}
	p.last = content
}

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask a question about your document library",
	Long: `Send a prompt to the retrieval backend and stream the answer.

Without --session the most recent session is continued (or a new one is
created). Pass --new to always start a fresh session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")

		prefs, err := loadPrefs()
		if err != nil {
			return err
		}

		store, err := openStore(prefs)
		if err != nil {
			return err
		}
		defer func() {
			store.Wait()
			_ = store.Close()
		}()

		sessionID := askSession
		if askNew {
			session, err := store.CreateSession(internal.DefaultSessionTitle)
			if err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}
			sessionID = session.ID
		}

		controller := internal.NewSessionController(store, internal.NewClient(prefs))

		printer := &streamPrinter{}
		result, err := controller.Send(cmd.Context(), sessionID, prompt, printer.render)
		if printer.last != "" {
			fmt.Println()
		}
		if err != nil {
			return err
		}

		if len(result.Sources) > 0 {
			var refs []string
			for _, src := range result.Sources {
				refs = append(refs, src.Filename)
			}
			fmt.Println(answerSourceStyle.Render("📚 Sources: " + strings.Join(refs, ", ")))
		}
		if result.Session != nil {
			fmt.Println(idStyle.Render("Session: " + result.Session.ID))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "Continue a specific session by ID")
	askCmd.Flags().BoolVar(&askNew, "new", false, "Start a new session")
}
