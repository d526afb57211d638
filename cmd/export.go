package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ragchat/internal"
	"ragchat/internal/export"
)

var (
	exportFormat    string
	exportOutDir    string
	exportSessionID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to file",
	Long: `Export chat sessions to various formats (jsonl, md, yaml, json).

You can export all sessions or a specific session by ID.
Use 'ragchat list' to see available session IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := loadPrefs()
		if err != nil {
			return err
		}

		store, err := openStore(prefs)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		var sessions []*internal.ChatSession
		if exportSessionID != "" {
			session, err := store.GetSession(exportSessionID)
			if err != nil {
				return fmt.Errorf("failed to load session: %w", err)
			}
			if session == nil {
				return fmt.Errorf("session not found: %s (use 'ragchat list' to see available sessions)", exportSessionID)
			}
			sessions = []*internal.ChatSession{session}
		} else {
			sessions, err = store.ListSessions()
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(exportOutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		for _, session := range sessions {
			messages, err := store.ListMessages(session.ID)
			if err != nil {
				internal.Log.Error("Failed to load messages", "session", session.ID, "error", err)
				continue
			}

			filename := fmt.Sprintf("session_%s.%s", session.ID, exporter.Extension())
			outPath := filepath.Join(exportOutDir, filename)

			file, err := os.Create(outPath)
			if err != nil {
				internal.Log.Error("Failed to create file", "path", outPath, "error", err)
				continue
			}

			doc := &export.Document{Session: session, Messages: messages}
			if err := exporter.Export(doc, file); err != nil {
				_ = file.Close()
				internal.Log.Error("Failed to export session", "session", session.ID, "error", err)
				continue
			}

			if err := file.Close(); err != nil {
				internal.Log.Warn("Failed to close file", "path", outPath, "error", err)
				continue
			}
			exported++
		}

		fmt.Printf("Export complete: %d session(s) exported to %s\n", exported, exportOutDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&exportOutDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&exportSessionID, "session-id", "", "Export a specific session by ID")
}
