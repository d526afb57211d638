package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preference keys understood by the client.
const (
	PrefAPIBaseURL = "apiBaseUrl"
	PrefMirrorDir  = "mirrorDir"
)

// DefaultAPIBaseURL is used when no backend address preference is set.
const DefaultAPIBaseURL = "http://localhost:8080"

// Prefs resolves host preferences by key at call time. Implementations
// return "" for unset keys. The backend address is looked up on every
// request so a changed preference takes effect without a restart.
type Prefs interface {
	Get(key string) string
}

// StaticPrefs is a fixed in-memory preference set, mainly for tests.
type StaticPrefs map[string]string

// Get returns the preference value for key, or "" when unset.
func (p StaticPrefs) Get(key string) string {
	return p[key]
}

// BaseURL resolves the backend base address from prefs, trim-normalized,
// falling back to DefaultAPIBaseURL.
func BaseURL(p Prefs) string {
	raw := strings.TrimSpace(p.Get(PrefAPIBaseURL))
	if raw == "" {
		return DefaultAPIBaseURL
	}
	return raw
}

// FilePrefs reads preferences from a YAML file. The file is re-read on
// every lookup; a missing or unreadable file behaves as all-unset.
type FilePrefs struct {
	Path string
}

// prefsFile is the on-disk shape of the preference file.
type prefsFile struct {
	APIBaseURL     string          `yaml:"apiBaseUrl"`
	MirrorDir      string          `yaml:"mirrorDir"`
	HighlightRules []HighlightRule `yaml:"highlightRules"`
}

func (p *FilePrefs) load() (*prefsFile, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, err
	}
	var cfg prefsFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse preference file %s: %w", p.Path, err)
	}
	return &cfg, nil
}

// Get returns the preference value for key, or "" when unset.
func (p *FilePrefs) Get(key string) string {
	cfg, err := p.load()
	if err != nil {
		if !os.IsNotExist(err) {
			Log.Debug("preference file unreadable", "path", p.Path, "err", err)
		}
		return ""
	}
	switch key {
	case PrefAPIBaseURL:
		return cfg.APIBaseURL
	case PrefMirrorDir:
		return cfg.MirrorDir
	}
	return ""
}

// HighlightRules returns the configured highlight rules, or a single
// enabled default rule when none are configured.
func (p *FilePrefs) HighlightRules() []HighlightRule {
	cfg, err := p.load()
	if err != nil || len(cfg.HighlightRules) == 0 {
		return []HighlightRule{{
			ID:       "rule_" + NewID(),
			Enabled:  true,
			ColorHex: "#ffeb3b",
			TermsRaw: "",
		}}
	}
	return cfg.HighlightRules
}

// DefaultPrefsPath returns the preference file location. The RAGCHAT_CONFIG
// environment variable overrides the default of
// ~/.config/ragchat/config.yaml.
func DefaultPrefsPath() (string, error) {
	if env := os.Getenv("RAGCHAT_CONFIG"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

// DefaultStorePath returns the chat database location, ~/.ragchat/chat.db.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ragchat", "chat.db"), nil
}
