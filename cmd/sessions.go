package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ragchat/internal"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved chat sessions",
	Long:  `Create, rename, and delete saved chat sessions.`,
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a new session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := internal.DefaultSessionTitle
		if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
			title = args[0]
		}

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

		session, err := store.CreateSession(title)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		fmt.Printf("Created session %s (%q)\n", session.ID, session.Title)
		return nil
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <session-id> <title>",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if err := store.RenameSession(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to rename session: %w", err)
		}

		fmt.Printf("Renamed session %s to %q\n", args[0], args[1])
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if err := store.DeleteSession(args[0]); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		fmt.Printf("Deleted session %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
