package consumer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/recommendation/internal/domain"
)

func TestDecodeActivity(t *testing.T) {
	payload := []byte(`{
		"id": "act-1",
		"userId": "user-1",
		"type": "RUNNING",
		"duration": 30,
		"caloriesBurned": 320,
		"startTime": "2025-11-02T07:15:00",
		"additionalMetrics": {"distanceKm": 8.2}
	}`)

	activity, err := DecodeActivity(payload)
	require.NoError(t, err)
	require.Equal(t, "act-1", activity.ID)
	require.Equal(t, "user-1", activity.UserID)
	require.Equal(t, domain.ActivityRunning, activity.Type)
	require.Equal(t, 30, activity.DurationMin)
	require.Equal(t, 320, activity.CaloriesBurned)
	require.Equal(t, time.Date(2025, 11, 2, 7, 15, 0, 0, time.UTC), activity.StartTime)
	require.Equal(t, 8.2, activity.AdditionalMetrics["distanceKm"])
}

func TestDecodeActivityStripsWireFrame(t *testing.T) {
	payload := append([]byte{0x00, 0x00, 0x00, 0x00, 0x07}, []byte(`{"id":"framed","type":"YOGA"}`)...)

	activity, err := DecodeActivity(payload)
	require.NoError(t, err)
	require.Equal(t, "framed", activity.ID)
	require.Equal(t, domain.ActivityYoga, activity.Type)
}

func TestDecodeActivityToleratesMissingFields(t *testing.T) {
	activity, err := DecodeActivity([]byte(`{"id":"sparse","startTime":"whenever"}`))
	require.NoError(t, err)
	require.Equal(t, "sparse", activity.ID)
	require.Zero(t, activity.DurationMin)
	require.True(t, activity.StartTime.IsZero())
	require.Nil(t, activity.AdditionalMetrics)
}

func TestDecodeActivityRejectsGarbage(t *testing.T) {
	for _, payload := range []string{"", "not json", "[1,2]", `{"duration":"long"}`} {
		_, err := DecodeActivity([]byte(payload))
		require.ErrorIs(t, err, ErrDecode, payload)
	}
}

func TestParseStartTimeFormats(t *testing.T) {
	want := time.Date(2025, 11, 2, 7, 15, 30, 0, time.UTC)

	require.Equal(t, want, parseStartTime([]byte(`"2025-11-02T07:15:30Z"`)))
	require.Equal(t, want, parseStartTime([]byte(`"2025-11-02T09:15:30+02:00"`)))
	require.Equal(t, want, parseStartTime([]byte(`"2025-11-02 07:15:30"`)))
	require.Equal(t, want, parseStartTime([]byte(`[2025,11,2,7,15,30]`)))
	require.Equal(t, time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), parseStartTime([]byte(`[2025,11,2]`)))
	require.True(t, parseStartTime([]byte(`null`)).IsZero())
	require.True(t, parseStartTime(nil).IsZero())
}
