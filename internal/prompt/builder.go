// Package prompt renders activities into instructions for the analysis model.
package prompt

import (
	"encoding/json"
	"fmt"

	"example.com/recommendation/internal/domain"
)

// responseShape is the document the reducer expects back. Field names must
// match the keys read in package reducer.
const responseShape = `{
  "analysis": {
    "overall": "Overall analysis here",
    "pace": "Pace analysis here",
    "heartRate": "Heart rate analysis here",
    "caloriesBurned": "Calories analysis here"
  },
  "improvements": [
    {
      "area": "Area name",
      "recommendation": "Detailed recommendation"
    }
  ],
  "suggestions": [
    {
      "workout": "Workout name",
      "description": "Detailed workout description"
    }
  ],
  "safety": [
    "Safety point 1",
    "Safety point 2"
  ]
}`

const template = `Analyze this fitness activity and provide detailed recommendations in the following EXACT JSON format:
%s

Analyze this activity:
Activity Type: %s
Duration: %d minutes
Calories Burned: %d
Additional Metrics: %s

Provide detailed analysis focusing on performance, improvements, next workout suggestions, and safety guidelines.
Ensure the response follows the EXACT JSON format shown above.
`

// Build returns the prompt for activity. It never fails.
func Build(activity domain.Activity) string {
	return fmt.Sprintf(template,
		responseShape,
		activity.Type,
		activity.DurationMin,
		activity.CaloriesBurned,
		renderMetrics(activity.AdditionalMetrics),
	)
}

// renderMetrics renders metrics as JSON with sorted keys. Empty maps render as "{}".
func renderMetrics(metrics map[string]any) string {
	if len(metrics) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Sprintf("%v", metrics)
	}
	return string(raw)
}
