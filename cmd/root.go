package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragchat/internal"
)

var (
	verbose    bool
	configPath string
	dbPath     string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with your document library through a retrieval backend",
	Long: `A CLI client for a retrieval-augmented chat backend.

Prompts are answered from your indexed document library, streamed token by
token, and every conversation is persisted locally so you can revisit,
rename, export, or continue it later.

Features:
  • Ask questions and watch the answer stream in, with cited sources
  • Browse and search saved chat sessions
  • Export sessions in multiple formats (JSONL, Markdown, YAML, JSON)
  • Scan PDFs for highlight-rule matches
  • Inspect and edit the backend's system prompts

Quick Start:
  ragchat ask "What does the methods section say?"   # Start chatting
  ragchat list                                       # List saved sessions
  ragchat show <session-id>                          # Replay a conversation
  ragchat export --format md                         # Export as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadPrefs resolves the preferences file, honoring --config.
func loadPrefs() (*internal.FilePrefs, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = internal.DefaultPrefsPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}
	return &internal.FilePrefs{Path: path}, nil
}

// openStore opens the chat store at --db (or the default location) with the
// disk mirror attached.
func openStore(prefs internal.Prefs) (*internal.ChatStore, error) {
	path := dbPath
	if path == "" {
		var err error
		path, err = internal.DefaultStorePath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
	}
	return internal.NewChatStore(path, internal.NewMirror(prefs)), nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the preferences file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the chat database file")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
