// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates confirmation handling, file placement, and embedded content.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSkillFSReadEmbeddedContent(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill/SKILL.md: %v", err)
	}

	contentStr := string(content)
	if !strings.HasPrefix(contentStr, "---") {
		t.Error("Expected SKILL.md to start with YAML frontmatter (---)")
	}
	for _, marker := range []string{"name: lift", "description:", "## When to use lift"} {
		if !strings.Contains(contentStr, marker) {
			t.Errorf("Expected SKILL.md to contain %q", marker)
		}
	}
}

// TestSkillReferencesRegisteredTools keeps the skill in step with the MCP server.
func TestSkillReferencesRegisteredTools(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill: %v", err)
	}

	tools := []string{
		"search_exercises", "find_exercises", "get_exercise",
		"get_ongoing_workout", "start_workout", "start_workout_from_template",
		"add_exercises", "add_set", "finish_workout", "list_templates", "get_muscles",
	}
	for _, tool := range tools {
		if !strings.Contains(string(content), "mcp__lift__"+tool) {
			t.Errorf("Expected embedded SKILL.md to reference %q", tool)
		}
	}
}

func TestInstallSkillWithYes(t *testing.T) {
	home := t.TempDir()

	installed, err := installSkill(home, strings.NewReader(""), true)
	if err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}
	if !installed {
		t.Fatal("Expected skill to be installed")
	}

	skillPath := filepath.Join(home, ".claude", "skills", "lift", "SKILL.md")
	info, err := os.Stat(skillPath)
	if err != nil {
		t.Fatalf("Skill file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected file mode 0600, got %v", info.Mode().Perm())
	}
}

func TestInstallSkillConfirmation(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"yes", "yes\n", true},
		{"y uppercase", "Y\n", true},
		{"no", "n\n", false},
		{"empty", "\n", false},
		{"eof", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			installed, err := installSkill(home, strings.NewReader(tt.answer), false)
			if err != nil {
				t.Fatalf("installSkill failed: %v", err)
			}
			if installed != tt.want {
				t.Errorf("installSkill(%q) = %v, want %v", tt.answer, installed, tt.want)
			}

			_, statErr := os.Stat(filepath.Join(home, ".claude", "skills", "lift", "SKILL.md"))
			if tt.want && statErr != nil {
				t.Errorf("Expected skill file, got %v", statErr)
			}
			if !tt.want && statErr == nil {
				t.Error("Expected no skill file when declined")
			}
		})
	}
}

func TestInstallSkillOverwritesExistingFile(t *testing.T) {
	home := t.TempDir()
	skillDir := filepath.Join(home, ".claude", "skills", "lift")
	if err := os.MkdirAll(skillDir, 0755); err != nil {
		t.Fatalf("Failed to create skill directory: %v", err)
	}
	skillPath := filepath.Join(skillDir, "SKILL.md")
	if err := os.WriteFile(skillPath, []byte("stale content"), 0644); err != nil {
		t.Fatalf("Failed to write old skill file: %v", err)
	}

	if _, err := installSkill(home, nil, true); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	data, err := os.ReadFile(skillPath)
	if err != nil {
		t.Fatalf("Failed to read skill file: %v", err)
	}
	if strings.Contains(string(data), "stale content") {
		t.Error("Old content should have been replaced")
	}
}

func TestSkillSkipConfirmFlag(t *testing.T) {
	flag := installSkillCmd.Flags().Lookup("yes")
	if flag == nil {
		t.Fatal("Expected --yes flag to be defined")
	}
	if flag.Shorthand != "y" {
		t.Errorf("Expected shorthand 'y', got %q", flag.Shorthand)
	}
	if flag.DefValue != "false" {
		t.Errorf("Expected default value 'false', got %q", flag.DefValue)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"no\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := confirm(strings.NewReader(tt.input), "? ")
		if err != nil {
			t.Fatalf("confirm(%q) returned error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
