package observability

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	logger.Warn().Str("stage", "model").Msg("kept")

	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), `"stage":"model"`)
	require.Contains(t, buf.String(), `"time":`)

	_, err = NewLogger("loud", "json", &buf)
	require.Error(t, err)
	_, err = NewLogger("info", "xml", &buf)
	require.ErrorContains(t, err, "unknown log format")
}

func TestLogObserverLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(zerolog.New(&buf).Level(zerolog.WarnLevel))

	obs.Observe(Event{Stage: StageExtract, Outcome: OutcomeOK, Detail: "quiet"})
	require.Empty(t, buf.String())

	obs.Observe(Event{
		Stage:      StageParse,
		Outcome:    OutcomeFallback,
		ActivityID: "act-1",
		UserID:     "user-1",
		Detail:     "falling back",
		Err:        errors.New("unexpected token"),
	})
	out := buf.String()
	require.Contains(t, out, `"level":"warn"`)
	require.Contains(t, out, `"stage":"parse"`)
	require.Contains(t, out, `"outcome":"fallback"`)
	require.Contains(t, out, `"activity_id":"act-1"`)
	require.Contains(t, out, `"error":"unexpected token"`)

	buf.Reset()
	obs.Observe(Event{Stage: StagePersist, Outcome: OutcomeFailed, Detail: "dropping"})
	require.Contains(t, buf.String(), `"level":"error"`)
}

func TestLogObserverRecordsStageMetrics(t *testing.T) {
	before := testutil.ToFloat64(stageCounter.WithLabelValues(string(StageParse), string(OutcomeFallback)))
	obs := NewLogObserver(zerolog.Nop())

	obs.Observe(Event{Stage: StageParse, Outcome: OutcomeFallback})
	obs.Observe(Event{Stage: StageParse, Outcome: OutcomeFallback})

	after := testutil.ToFloat64(stageCounter.WithLabelValues(string(StageParse), string(OutcomeFallback)))
	require.Equal(t, before+2, after)

	obs.Observe(Event{Stage: StageModel, Outcome: OutcomeOK, Duration: 120 * time.Millisecond})
	require.Equal(t, 1, testutil.CollectAndCount(modelLatency))
}

func TestRecordGenerated(t *testing.T) {
	beforeModel := testutil.ToFloat64(generatedCounter.WithLabelValues("model"))
	beforeDefault := testutil.ToFloat64(generatedCounter.WithLabelValues("default"))

	RecordGenerated(false)
	RecordGenerated(true)
	RecordGenerated(true)

	require.Equal(t, beforeModel+1, testutil.ToFloat64(generatedCounter.WithLabelValues("model")))
	require.Equal(t, beforeDefault+2, testutil.ToFloat64(generatedCounter.WithLabelValues("default")))
}

func TestRecordRecommendationPersisted(t *testing.T) {
	ts := time.Unix(1_700_000_000, 0)
	RecordRecommendationPersisted(ts)
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(persistGauge))

	RecordRecommendationPersisted(time.Time{})
	require.Equal(t, float64(ts.Unix()), testutil.ToFloat64(persistGauge))
}
