package reducer

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"example.com/recommendation/internal/observability"
)

// Keys of the inner document. They must match the shape requested by package prompt.
const (
	KeyAnalysis       = "analysis"
	KeyOverall        = "overall"
	KeyPace           = "pace"
	KeyHeartRate      = "heartRate"
	KeyCaloriesBurned = "caloriesBurned"
	KeyImprovements   = "improvements"
	KeyArea           = "area"
	KeyRecommendation = "recommendation"
	KeySuggestions    = "suggestions"
	KeyWorkout        = "workout"
	KeyDescription    = "description"
	KeySafety         = "safety"
)

var (
	ErrNoCandidate = errors.New("envelope has no candidate")
	ErrNoContent   = errors.New("candidate has no content")
	ErrNoPart      = errors.New("content has no parts")
	ErrNoText      = errors.New("part has no text")
	ErrNotObject   = errors.New("inner document is not a JSON object")
)

// StageError tags a failure with the pipeline stage that produced it.
type StageError struct {
	Stage observability.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded on err, or "" when err carries none.
func StageOf(err error) observability.Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

type wireEnvelope struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Unwrap extracts candidates[0].content.parts[0].text from the transport envelope.
func Unwrap(raw string) (string, error) {
	var env wireEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", &StageError{Stage: observability.StageEnvelope, Err: err}
	}
	if len(env.Candidates) == 0 {
		return "", &StageError{Stage: observability.StageEnvelope, Err: ErrNoCandidate}
	}
	first := env.Candidates[0]
	if first.Content == nil {
		return "", &StageError{Stage: observability.StageEnvelope, Err: ErrNoContent}
	}
	if len(first.Content.Parts) == 0 {
		return "", &StageError{Stage: observability.StageEnvelope, Err: ErrNoPart}
	}
	text := first.Content.Parts[0].Text
	if text == nil {
		return "", &StageError{Stage: observability.StageEnvelope, Err: ErrNoText}
	}
	return *text, nil
}

var blankLineRun = regexp.MustCompile(`\n\s*\n`)

// StripFences removes markdown code fences, collapses blank-line runs, and trims.
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = blankLineRun.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// ParseInner decodes the first JSON value of text, which must be an object.
// Numbers are kept as json.Number so they render exactly as the model wrote them.
func ParseInner(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &StageError{Stage: observability.StageParse, Err: err}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &StageError{Stage: observability.StageParse, Err: ErrNotObject}
	}
	return obj, nil
}

// Extraction holds the fields read from the inner document. Empty lists are
// left empty; placeholders are applied by domain.NewRecommendation.
type Extraction struct {
	Analysis     string
	Improvements []string
	Suggestions  []string
	Safety       []string
}

var analysisSections = []struct {
	key   string
	label string
}{
	{KeyOverall, "Overall"},
	{KeyPace, "Pace"},
	{KeyHeartRate, "HeartRate"},
	{KeyCaloriesBurned, "CaloriesBurned"},
}

// Extract reads every known field from doc. Missing or mistyped fields are skipped.
func Extract(doc map[string]any) Extraction {
	return Extraction{
		Analysis:     extractAnalysis(doc[KeyAnalysis]),
		Improvements: extractPairs(doc[KeyImprovements], KeyArea, KeyRecommendation),
		Suggestions:  extractPairs(doc[KeySuggestions], KeyWorkout, KeyDescription),
		Safety:       extractStrings(doc[KeySafety]),
	}
}

func extractAnalysis(node any) string {
	obj, ok := node.(map[string]any)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, section := range analysisSections {
		value, present := obj[section.key]
		if !present || value == nil {
			continue
		}
		b.WriteString(section.label)
		b.WriteString(": ")
		b.WriteString(textOf(value))
		b.WriteString("\n\n")
	}
	return b.String()
}

func extractPairs(node any, first, second string) []string {
	items, ok := node.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		out = append(out, textOf(obj[first])+": "+textOf(obj[second]))
	}
	return out
}

func extractStrings(node any) []string {
	items, ok := node.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, textOf(item))
	}
	return out
}

// textOf renders a scalar as text. Null, objects, and arrays render as "".
func textOf(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
