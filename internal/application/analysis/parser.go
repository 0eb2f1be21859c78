package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	domain "github.com/alchemorsel/reelchef/internal/domain/analysis"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
)

// ParseResult is the outcome of parsing raw model text. It is one of
// ParsedJSON, ParsedStructured or ParseFailure.
type ParseResult interface {
	isParseResult()
}

// ParsedJSON means the text contained a valid JSON object
type ParsedJSON struct {
	Analysis domain.RecipeAnalysis
}

// ParsedStructured means the JSON tier failed and the labeled-text fallback
// produced the record. JSONErr keeps the reason the first tier was skipped.
type ParsedStructured struct {
	Analysis domain.RecipeAnalysis
	JSONErr  error
}

// ParseFailure means neither tier produced a record
type ParseFailure struct {
	Err error
}

func (ParsedJSON) isParseResult()       {}
func (ParsedStructured) isParseResult() {}
func (ParseFailure) isParseResult()     {}

var (
	errNoJSONObject = errors.New("no JSON object found in response")
	errEmptyText    = errors.New("response text is empty")
)

// Parse turns raw model output into a recipe analysis. The JSON tier slices
// from the first '{' to the last '}'; on failure the labeled-text tier runs.
func Parse(raw string) ParseResult {
	if strings.TrimSpace(raw) == "" {
		return ParseFailure{Err: errEmptyText}
	}

	a, jsonErr := parseJSON(raw)
	if jsonErr == nil {
		return ParsedJSON{Analysis: a}
	}

	return ParsedStructured{Analysis: parseStructured(raw), JSONErr: jsonErr}
}

// Resolve unpacks a ParseResult into an analysis or an error
func Resolve(result ParseResult) (domain.RecipeAnalysis, error) {
	switch r := result.(type) {
	case ParsedJSON:
		return r.Analysis, nil
	case ParsedStructured:
		return r.Analysis, nil
	case ParseFailure:
		return domain.RecipeAnalysis{}, apperrors.NewParseFailedError(r.Err)
	default:
		return domain.RecipeAnalysis{}, apperrors.NewParseFailedError(fmt.Errorf("unknown parse result %T", result))
	}
}

// ParseAnalysis is Parse followed by Resolve
func ParseAnalysis(raw string) (domain.RecipeAnalysis, error) {
	return Resolve(Parse(raw))
}

func parseJSON(raw string) (domain.RecipeAnalysis, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return domain.RecipeAnalysis{}, errNoJSONObject
	}

	// Fields absent from the JSON keep their defaults
	a := domain.NewEmpty()
	if err := json.Unmarshal([]byte(raw[start:end+1]), &a); err != nil {
		return domain.RecipeAnalysis{}, fmt.Errorf("failed to unmarshal analysis JSON: %w", err)
	}

	if d := domain.ParseDifficulty(string(a.Difficulty)); d != "" {
		a.Difficulty = d
	}
	a.Normalize()

	return a, nil
}

const titleSection = "title and brief description"

var (
	sectionSplit  = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)
	headerNoise   = regexp.MustCompile(`^[#*\s\d.)-]+|[*:\s]+$`)
	leadingNumber = regexp.MustCompile(`\d+`)
)

// parseStructured never fails; fields it cannot find keep their defaults
func parseStructured(raw string) domain.RecipeAnalysis {
	a := domain.NewEmpty()

	// A header alone in its section labels the section that follows it
	headerOnly := false

	for _, section := range sectionSplit.Split(raw, -1) {
		lines := nonEmptyLines(section)
		if len(lines) == 0 {
			continue
		}

		fields := lines
		if !headerOnly {
			at := titleHeaderIndex(lines)
			if at == -1 {
				continue
			}
			fields = lines[at+1:]
		}
		headerOnly = len(fields) == 0

		for _, line := range fields {
			key, value, ok := splitLabel(line)
			if !ok {
				continue
			}
			applyTitleField(&a, key, value)
		}
	}

	return a
}

// titleHeaderIndex returns the line holding the title header, or -1. Models
// sometimes put a lead-in sentence above it in the same paragraph.
func titleHeaderIndex(lines []string) int {
	for i, line := range lines {
		header := strings.ToLower(headerNoise.ReplaceAllString(line, ""))
		if strings.Contains(header, titleSection) {
			return i
		}
	}
	return -1
}

func applyTitleField(a *domain.RecipeAnalysis, key, value string) {
	switch key {
	case "recipe name":
		a.Title = value
	case "brief description":
		a.Description = value
	case "type of cuisine":
		a.Cuisine = value
	case "difficulty level":
		if d := domain.ParseDifficulty(value); d != "" {
			a.Difficulty = d
		} else {
			a.Difficulty = domain.Difficulty(value)
		}
	case "total cooking time":
		if n := leadingNumber.FindString(value); n != "" {
			if minutes, err := strconv.Atoi(n); err == nil {
				a.CookingTime = minutes
			}
		}
	}
}

// splitLabel splits "- **Recipe name:** Pasta" into ("recipe name", "Pasta")
func splitLabel(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx == -1 {
		return "", "", false
	}

	key := strings.Trim(line[:idx], " \t-*•")
	value := strings.Trim(line[idx+1:], " \t*")

	return strings.ToLower(key), value, true
}

func nonEmptyLines(section string) []string {
	raw := strings.Split(section, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
