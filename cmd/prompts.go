package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ragchat/internal"
)

var promptSetFile string

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and edit the backend's system prompts",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the backend's editable prompt templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := loadPrefs()
		if err != nil {
			return err
		}

		client := internal.NewClient(prefs)
		prompts, err := client.ListSystemPrompts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list system prompts: %w", err)
		}

		if len(prompts) == 0 {
			fmt.Println("No system prompts available")
			return nil
		}

		for _, prompt := range prompts {
			title := prompt.Title
			if title == "" {
				title = prompt.Key
			}
			fmt.Printf("%s • %s\n", prompt.Key, title)
			if prompt.Description != "" {
				fmt.Printf("  %s\n", prompt.Description)
			}
			if len(prompt.Placeholders) > 0 {
				var names []string
				for _, ph := range prompt.Placeholders {
					names = append(names, ph.Name)
				}
				fmt.Printf("  placeholders: %s\n", strings.Join(names, ", "))
			}
		}
		return nil
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the content of one prompt template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := loadPrefs()
		if err != nil {
			return err
		}

		client := internal.NewClient(prefs)
		prompts, err := client.ListSystemPrompts(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list system prompts: %w", err)
		}

		for _, prompt := range prompts {
			if prompt.Key == args[0] {
				fmt.Println(prompt.Content)
				return nil
			}
		}
		return fmt.Errorf("prompt not found: %s (use 'ragchat prompts list' to see available keys)", args[0])
	},
}

var promptsSetCmd = &cobra.Command{
	Use:   "set <key> [content]",
	Short: "Replace the content of one prompt template",
	Long: `Replace the content of a prompt template. Content is taken from the
argument, or from --file when given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var content string
		switch {
		case promptSetFile != "":
			data, err := os.ReadFile(promptSetFile)
			if err != nil {
				return fmt.Errorf("failed to read content file: %w", err)
			}
			content = string(data)
		case len(args) == 2:
			content = args[1]
		default:
			return fmt.Errorf("provide the new content as an argument or via --file")
		}

		prefs, err := loadPrefs()
		if err != nil {
			return err
		}

		client := internal.NewClient(prefs)
		if err := client.UpdateSystemPrompt(cmd.Context(), args[0], content); err != nil {
			return fmt.Errorf("failed to update system prompt: %w", err)
		}

		fmt.Printf("Updated prompt %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsSetCmd)
	promptsSetCmd.Flags().StringVar(&promptSetFile, "file", "", "Read the new content from a file")
}
