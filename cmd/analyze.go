package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ragchat/internal"
)

var analyzeRulesFile string

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <pdf-file>",
	Short: "Scan a PDF for highlight-rule matches",
	Long: `Upload a PDF to the retrieval backend and report where the configured
highlight rules match. Rules live in the preferences file, or pass --rules
to read them from a separate YAML file; disabled rules are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := loadPrefs()
		if err != nil {
			return err
		}

		pdf, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read PDF: %w", err)
		}

		rules := prefs.HighlightRules()
		if analyzeRulesFile != "" {
			data, err := os.ReadFile(analyzeRulesFile)
			if err != nil {
				return fmt.Errorf("failed to read rules file: %w", err)
			}
			rules = nil
			if err := yaml.Unmarshal(data, &rules); err != nil {
				return fmt.Errorf("failed to parse rules file: %w", err)
			}
		}
		cfg := internal.BuildRagConfig(rules)
		if len(cfg.Rules) == 0 {
			internal.Log.Warn("No enabled highlight rules, nothing to match")
		}

		client := internal.NewClient(prefs)
		matches, err := client.AnalyzeDocument(cmd.Context(), pdf, cfg)
		if err != nil {
			return fmt.Errorf("failed to analyze document: %w", err)
		}

		if len(matches) == 0 {
			fmt.Println("No matches found")
			return nil
		}

		fmt.Printf("Found %d match(es):\n", len(matches))
		for _, match := range matches {
			// Pages are zero-indexed on the wire
			fmt.Printf("  page %d: rule %s (%d region(s))\n", match.PageIndex+1, match.ID, len(match.Rects))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeRulesFile, "rules", "", "Read highlight rules from a YAML file")
}
