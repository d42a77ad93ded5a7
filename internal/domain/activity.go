package domain

import "time"

// ActivityType enumerates the kinds of sessions the tracker records.
type ActivityType string

const (
	ActivityRunning        ActivityType = "RUNNING"
	ActivityWalking        ActivityType = "WALKING"
	ActivityCycling        ActivityType = "CYCLING"
	ActivitySwimming       ActivityType = "SWIMMING"
	ActivityWeightTraining ActivityType = "WEIGHT_TRAINING"
	ActivityYoga           ActivityType = "YOGA"
	ActivityHIIT           ActivityType = "HIIT"
	ActivityCardio         ActivityType = "CARDIO"
	ActivityStretching     ActivityType = "STRETCHING"
	ActivityOther          ActivityType = "OTHER"
)

// Activity is one recorded exercise session as delivered by the activity service.
// Unknown activity types are carried through untouched.
type Activity struct {
	ID                string         `json:"id"`
	UserID            string         `json:"userId"`
	Type              ActivityType   `json:"type"`
	DurationMin       int            `json:"duration"`
	CaloriesBurned    int            `json:"caloriesBurned"`
	StartTime         time.Time      `json:"startTime"`
	AdditionalMetrics map[string]any `json:"additionalMetrics,omitempty"`
}
