// ABOUTME: Parser for workout history exported from Hevy as CSV.
// ABOUTME: Groups rows into sessions and exercises, converts units, and builds name mappings.
package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	// DateLayout is the timestamp format Hevy writes, e.g. "27 Aug 2025, 19:28".
	DateLayout = "2 Jan 2006, 15:04"

	lbsToKg     = 0.453592
	milesToKm   = 1.60934
	columnCount = 14
)

// Header is the exact column list of a Hevy export.
var Header = []string{
	"title", "start_time", "end_time", "description",
	"exercise_title", "superset_id", "exercise_notes",
	"set_index", "set_type", "weight_lbs", "reps",
	"distance_miles", "duration_seconds", "rpe",
}

const (
	colTitle = iota
	colStart
	colEnd
	colDescription
	colExerciseTitle
	colSupersetID
	colExerciseNotes
	colSetIndex
	colSetType
	colWeightLbs
	colReps
	colDistanceMiles
	colDurationSeconds
	colRPE
)

var (
	// ErrEmptyFile is returned when the content has no header row.
	ErrEmptyFile = errors.New("csv file is empty")
	// ErrInvalidHeader is returned when the header is not a Hevy header.
	ErrInvalidHeader = errors.New("csv header is not a Hevy export header")
)

// Set is one parsed set with metric units.
type Set struct {
	Index           int      `json:"set_index"`
	Type            string   `json:"set_type"`
	WeightKg        *float64 `json:"weight_kg,omitempty"`
	Reps            *int     `json:"reps,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	DurationSeconds *int     `json:"duration_seconds,omitempty"`
	RPE             *float64 `json:"rpe,omitempty"`
}

// Exercise is one exercise of a session with its sets in set_index order.
type Exercise struct {
	Title      string `json:"exercise_title"`
	SupersetID string `json:"superset_id,omitempty"`
	Notes      string `json:"exercise_notes,omitempty"`
	Sets       []Set  `json:"sets"`
}

// Session is one imported workout.
type Session struct {
	Title       string     `json:"title"`
	Start       time.Time  `json:"start_time"`
	End         time.Time  `json:"end_time"`
	Description string     `json:"description,omitempty"`
	Exercises   []Exercise `json:"exercises"`
}

// NameMapping pairs a derived exercise key with the name found in the file.
// Suggestions holds catalog names once SuggestMappings has run.
type NameMapping struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Result is the parsed content of a Hevy export.
type Result struct {
	Sessions []Session     `json:"sessions"`
	Mappings []NameMapping `json:"mappings"`
}

// ReadFile parses the Hevy export at path.
func ReadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read csv file: %w", err)
	}
	return Parse(string(data))
}

// Parse reads Hevy CSV content. Rows with the wrong column count or with an
// unparseable start or end date are skipped.
func Parse(content string) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}

	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !slices.Equal(header, Header) {
		return nil, ErrInvalidHeader
	}

	type sessionKey struct{ title, start, end string }
	type exerciseKey struct{ title, superset string }
	type sessionRows struct {
		session   Session
		order     []exerciseKey
		exercises map[exerciseKey]*Exercise
	}

	sessions := map[sessionKey]*sessionRows{}
	var sessionOrder []sessionKey
	mappings := map[string]string{}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if len(row) != columnCount {
			continue
		}

		sk := sessionKey{row[colTitle], row[colStart], row[colEnd]}
		s, ok := sessions[sk]
		if !ok {
			start, err := time.ParseInLocation(DateLayout, row[colStart], time.UTC)
			if err != nil {
				continue
			}
			end, err := time.ParseInLocation(DateLayout, row[colEnd], time.UTC)
			if err != nil {
				continue
			}
			s = &sessionRows{
				session: Session{
					Title:       row[colTitle],
					Start:       start,
					End:         end,
					Description: row[colDescription],
				},
				exercises: map[exerciseKey]*Exercise{},
			}
			sessions[sk] = s
			sessionOrder = append(sessionOrder, sk)
		}

		ek := exerciseKey{row[colExerciseTitle], row[colSupersetID]}
		ex, ok := s.exercises[ek]
		if !ok {
			ex = &Exercise{
				Title:      row[colExerciseTitle],
				SupersetID: row[colSupersetID],
				Notes:      row[colExerciseNotes],
			}
			s.exercises[ek] = ex
			s.order = append(s.order, ek)

			key := ExerciseKey(ex.Title)
			if _, seen := mappings[key]; !seen {
				mappings[key] = ex.Title
			}
		}
		ex.Sets = append(ex.Sets, parseSet(row))
	}

	result := &Result{
		Sessions: make([]Session, 0, len(sessionOrder)),
		Mappings: make([]NameMapping, 0, len(mappings)),
	}
	for _, sk := range sessionOrder {
		s := sessions[sk]
		for _, ek := range s.order {
			ex := s.exercises[ek]
			sort.SliceStable(ex.Sets, func(i, j int) bool { return ex.Sets[i].Index < ex.Sets[j].Index })
			s.session.Exercises = append(s.session.Exercises, *ex)
		}
		result.Sessions = append(result.Sessions, s.session)
	}
	sort.SliceStable(result.Sessions, func(i, j int) bool {
		a, b := result.Sessions[i], result.Sessions[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Title < b.Title
	})

	for key, name := range mappings {
		result.Mappings = append(result.Mappings, NameMapping{Key: key, Name: name})
	}
	sort.Slice(result.Mappings, func(i, j int) bool { return result.Mappings[i].Key < result.Mappings[j].Key })

	return result, nil
}

func parseSet(row []string) Set {
	s := Set{Type: row[colSetType]}
	if n, err := strconv.Atoi(strings.TrimSpace(row[colSetIndex])); err == nil {
		s.Index = n
	}
	if lbs := parseFloat(row[colWeightLbs]); lbs != nil {
		kg := *lbs * lbsToKg
		s.WeightKg = &kg
	}
	if miles := parseFloat(row[colDistanceMiles]); miles != nil {
		km := *miles * milesToKm
		s.DistanceKm = &km
	}
	s.Reps = parseInt(row[colReps])
	s.DurationSeconds = parseInt(row[colDurationSeconds])
	s.RPE = parseFloat(row[colRPE])
	return s
}

func parseFloat(field string) *float64 {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(field string) *int {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	v, err := strconv.Atoi(field)
	if err != nil {
		return nil
	}
	return &v
}

// ExerciseKey derives a catalog-style ID from an exercise name: letters are
// lowercased and every other character becomes "-".
func ExerciseKey(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) {
			sb.WriteString(strings.ToLower(string(r)))
			continue
		}
		sb.WriteByte('-')
	}
	return sb.String()
}

// NameFinder looks up catalog names close to a free-text name.
type NameFinder interface {
	ClosestExerciseNames(ctx context.Context, text string) ([]string, error)
}

// SuggestMappings returns a copy of mappings with up to three closest catalog
// names attached to each.
func SuggestMappings(ctx context.Context, finder NameFinder, mappings []NameMapping) ([]NameMapping, error) {
	out := make([]NameMapping, 0, len(mappings))
	for _, m := range mappings {
		names, err := finder.ClosestExerciseNames(ctx, m.Name)
		if err != nil {
			return nil, fmt.Errorf("suggest names for %q: %w", m.Name, err)
		}
		m.Suggestions = names
		out = append(out, m)
	}
	return out, nil
}
