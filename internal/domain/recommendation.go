package domain

import (
	"slices"
	"time"
)

// Placeholders substituted when the model supplied no entries for a list.
const (
	PlaceholderImprovement = "No specific improvement provided"
	PlaceholderSuggestion  = "No specific suggestion provided"
	PlaceholderSafety      = "Follow general safety guidelines"
)

// DefaultAnalysis is the analysis text of the canned recommendation.
const DefaultAnalysis = "Unable to generate detailed analysis"

var (
	defaultImprovements = []string{"Continue With current routine"}
	defaultSuggestions  = []string{"Consider consulting a fitness consultant"}
	defaultSafety       = []string{"Always warm up before exercise", "Stay Hydrated", "Listen to your body"}
)

// Recommendation is the advisory output produced for a single activity.
// Values are built with NewRecommendation or DefaultRecommendation and never mutated afterwards.
type Recommendation struct {
	ID           string
	ActivityID   string
	UserID       string
	ActivityType string
	Text         string
	improvements []string
	suggestions  []string
	safety       []string
	CreatedAt    time.Time
}

// RecommendationContent carries the model-derived fields of a recommendation.
type RecommendationContent struct {
	Text         string
	Improvements []string
	Suggestions  []string
	Safety       []string
}

// NewRecommendation builds a recommendation for activity. Empty lists are
// replaced by their single placeholder entry.
func NewRecommendation(activity Activity, content RecommendationContent, createdAt time.Time) Recommendation {
	return Recommendation{
		ActivityID:   activity.ID,
		UserID:       activity.UserID,
		ActivityType: string(activity.Type),
		Text:         content.Text,
		improvements: orPlaceholder(content.Improvements, PlaceholderImprovement),
		suggestions:  orPlaceholder(content.Suggestions, PlaceholderSuggestion),
		safety:       orPlaceholder(content.Safety, PlaceholderSafety),
		CreatedAt:    createdAt,
	}
}

// DefaultRecommendation returns the canned recommendation used whenever generation cannot complete.
func DefaultRecommendation(activity Activity, createdAt time.Time) Recommendation {
	return NewRecommendation(activity, RecommendationContent{
		Text:         DefaultAnalysis,
		Improvements: defaultImprovements,
		Suggestions:  defaultSuggestions,
		Safety:       defaultSafety,
	}, createdAt)
}

// Restore rebuilds a stored recommendation. It applies the same placeholder rules as NewRecommendation.
func Restore(id, activityID, userID, activityType, text string, improvements, suggestions, safety []string, createdAt time.Time) Recommendation {
	rec := NewRecommendation(Activity{ID: activityID, UserID: userID, Type: ActivityType(activityType)}, RecommendationContent{
		Text:         text,
		Improvements: improvements,
		Suggestions:  suggestions,
		Safety:       safety,
	}, createdAt)
	rec.ID = id
	return rec
}

// WithID returns a copy of r carrying the store-assigned identifier.
func (r Recommendation) WithID(id string) Recommendation {
	r.ID = id
	return r
}

// Improvements returns a copy of the improvement entries.
func (r Recommendation) Improvements() []string { return slices.Clone(r.improvements) }

// Suggestions returns a copy of the suggestion entries.
func (r Recommendation) Suggestions() []string { return slices.Clone(r.suggestions) }

// Safety returns a copy of the safety entries.
func (r Recommendation) Safety() []string { return slices.Clone(r.safety) }

// IsDefault reports whether r carries the canned fallback content.
func (r Recommendation) IsDefault() bool {
	return r.Text == DefaultAnalysis &&
		slices.Equal(r.improvements, defaultImprovements) &&
		slices.Equal(r.suggestions, defaultSuggestions) &&
		slices.Equal(r.safety, defaultSafety)
}

func orPlaceholder(values []string, placeholder string) []string {
	if len(values) == 0 {
		return []string{placeholder}
	}
	return slices.Clone(values)
}
