// ABOUTME: install-skill command that drops the embedded lift skill into
// ABOUTME: ~/.claude/skills/lift so assistants know how to drive the MCP tools.

package main

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var skillSkipConfirm bool

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install Claude Code skill",
	Long: `Write the bundled lift skill to ~/.claude/skills/lift/SKILL.md.

The skill tells the assistant when to reach for the lift MCP tools and which
tool covers each step of a workout. Pair it with "lift mcp".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		_, err = installSkill(home, os.Stdin, skillSkipConfirm)
		return err
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(installSkillCmd)
}

// installSkill writes the embedded skill under home and reports whether it
// was installed. Without skipConfirm it asks on in first.
func installSkill(home string, in io.Reader, skipConfirm bool) (bool, error) {
	skillDir := filepath.Join(home, ".claude", "skills", "lift")
	skillPath := filepath.Join(skillDir, "SKILL.md")

	fmt.Printf("lift skill -> %s\n", skillPath)
	if _, err := os.Stat(skillPath); err == nil {
		color.Yellow("An existing SKILL.md will be replaced.")
	}

	if !skipConfirm {
		ok, err := confirm(in, "Continue? [y/N] ")
		if err != nil {
			return false, err
		}
		if !ok {
			fmt.Println("Skipped.")
			return false, nil
		}
	}

	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return false, fmt.Errorf("failed to read embedded skill: %w", err)
	}
	if err := os.MkdirAll(skillDir, 0750); err != nil {
		return false, fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, content, 0600); err != nil {
		return false, fmt.Errorf("failed to write skill file: %w", err)
	}

	color.Green("✓ Installed lift skill")
	return true, nil
}

// confirm prints prompt and reads a yes/no answer from in. EOF counts as no.
func confirm(in io.Reader, prompt string) (bool, error) {
	fmt.Print(prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
