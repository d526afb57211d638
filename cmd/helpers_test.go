package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"ragchat/internal"
)

// testEnv holds the paths a command run is pointed at via --config and --db.
type testEnv struct {
	configPath string
	dbPath     string
	mirrorDir  string
}

// newTestEnv writes a preference file wired to baseURL and returns paths for
// an isolated command run.
func newTestEnv(t *testing.T, baseURL string) testEnv {
	t.Helper()

	dir := t.TempDir()
	env := testEnv{
		configPath: filepath.Join(dir, "config.yaml"),
		dbPath:     filepath.Join(dir, "chat.db"),
		mirrorDir:  filepath.Join(dir, "mirror"),
	}

	cfg := fmt.Sprintf("apiBaseUrl: %q\nmirrorDir: %q\n", baseURL, env.mirrorDir)
	if err := os.WriteFile(env.configPath, []byte(cfg), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return env
}

// runCommand executes the root command with args scoped to env. Flag
// variables are globals, so they are reset to defaults first.
func runCommand(t *testing.T, env testEnv, args ...string) error {
	t.Helper()

	askSession, askNew = "", false
	showLimit, showSince = 0, ""
	exportFormat, exportOutDir, exportSessionID = "jsonl", "./exports", ""
	promptSetFile = ""
	analyzeRulesFile = ""

	full := append([]string{"--config", env.configPath, "--db", env.dbPath}, args...)
	rootCmd.SetArgs(full)
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	return rootCmd.Execute()
}

// openTestStore opens the store a command run wrote to.
func openTestStore(t *testing.T, env testEnv) *internal.ChatStore {
	t.Helper()

	store := internal.NewChatStore(env.dbPath, nil)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
