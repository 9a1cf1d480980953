// ABOUTME: Output and parsing helpers shared by lift commands.
// ABOUTME: Short IDs, padding, set labels, rep ranges, and date parsing.
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
)

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func parseDate(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// parseRepType accepts "8" for a fixed count or "6-8" for a range.
func parseRepType(s string) (models.RepType, error) {
	lo, hi, isRange := strings.Cut(s, "-")
	lower, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || lower < 0 {
		return models.RepType{}, fmt.Errorf("invalid reps: %s (use 8 or 6-8)", s)
	}
	if !isRange {
		return models.FixedReps(lower), nil
	}
	upper, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil || upper < lower {
		return models.RepType{}, fmt.Errorf("invalid rep range: %s (use 6-8)", s)
	}
	return models.RepRange(lower, upper), nil
}

// setLabel is the position column of a set: W, D, and F for warmup, drop,
// and failure sets, and the one-based working ordinal otherwise.
func setLabel(t models.SetType, workingOrdinal int) string {
	switch t {
	case models.SetWarmup:
		return "W"
	case models.SetDrop:
		return "D"
	case models.SetFailure:
		return "F"
	default:
		return strconv.Itoa(workingOrdinal + 1)
	}
}

func formatLoad(weight float64, reps int) string {
	return fmt.Sprintf("%.1f kg x %d", weight, reps)
}

func printSetsWithPrevious(sets []models.SetWithPrevious) {
	faint := color.New(color.Faint)
	for _, s := range sets {
		done := " "
		if s.Current.IsDone {
			done = color.GreenString("✓")
		}
		prev := "-"
		if s.Previous != nil {
			prev = formatLoad(s.Previous.Weight, s.Previous.Reps)
		}
		fmt.Printf("    %s %s %s %s  %s\n",
			faint.Sprint(shortID(s.Current.ID)),
			padRight(setLabel(s.Current.Type, s.WorkingOrdinal), 2),
			padRight(formatLoad(s.Current.Weight, s.Current.Reps), 16),
			done,
			faint.Sprint("prev "+prev))
	}
}

// nameCache resolves catalog names once per command.
type nameCache struct {
	names map[string]string
}

func newNameCache() *nameCache {
	return &nameCache{names: map[string]string{}}
}

func (c *nameCache) get(ctx context.Context, id string) string {
	if name, ok := c.names[id]; ok {
		return name
	}
	name, err := store.ExerciseName(ctx, id)
	if err != nil {
		name = id
	}
	c.names[id] = name
	return name
}

func joinMuscles(groups []models.MuscleGroup) string {
	if len(groups) == 0 {
		return "-"
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = string(g)
	}
	return strings.Join(parts, ", ")
}
