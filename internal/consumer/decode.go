package consumer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"example.com/recommendation/internal/domain"
)

// ErrDecode marks inbound payloads that could not be turned into an activity.
var ErrDecode = errors.New("decode activity")

// Confluent schema-registry framing: magic byte followed by a 4-byte schema id.
const wireFrameLen = 5

// localTimeLayouts cover timestamps serialised without a zone offset.
var localTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type activityPayload struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Type              string          `json:"type"`
	Duration          *int            `json:"duration"`
	CaloriesBurned    *int            `json:"caloriesBurned"`
	StartTime         json.RawMessage `json:"startTime"`
	AdditionalMetrics map[string]any  `json:"additionalMetrics"`
}

// DecodeActivity parses an activity event. Missing fields decode to their
// zero values; only payloads that are not a JSON object are rejected.
func DecodeActivity(payload []byte) (domain.Activity, error) {
	if len(payload) >= wireFrameLen && payload[0] == 0x00 {
		payload = payload[wireFrameLen:]
	}

	var wire activityPayload
	if err := json.Unmarshal(payload, &wire); err != nil {
		return domain.Activity{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	activity := domain.Activity{
		ID:                wire.ID,
		UserID:            wire.UserID,
		Type:              domain.ActivityType(wire.Type),
		StartTime:         parseStartTime(wire.StartTime),
		AdditionalMetrics: wire.AdditionalMetrics,
	}
	if wire.Duration != nil {
		activity.DurationMin = *wire.Duration
	}
	if wire.CaloriesBurned != nil {
		activity.CaloriesBurned = *wire.CaloriesBurned
	}
	return activity, nil
}

// parseStartTime accepts RFC 3339 strings, zone-less local timestamps, and
// [year, month, day, hour, minute, second, nanos] arrays. Anything else is zero.
func parseStartTime(raw json.RawMessage) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return ts.UTC()
		}
		for _, layout := range localTimeLayouts {
			if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return ts
			}
		}
		return time.Time{}
	}

	var parts []int
	if err := json.Unmarshal(raw, &parts); err == nil && len(parts) >= 3 {
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.UTC)
	}
	return time.Time{}
}
