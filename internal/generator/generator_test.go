package generator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/observability"
	"example.com/recommendation/internal/prompt"
)

var fixedNow = time.Date(2025, time.November, 3, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func sampleActivity() domain.Activity {
	return domain.Activity{
		ID:             "act-1",
		UserID:         "user-1",
		Type:           domain.ActivityCycling,
		DurationMin:    45,
		CaloriesBurned: 510,
		StartTime:      time.Date(2025, time.November, 2, 7, 0, 0, 0, time.UTC),
		AdditionalMetrics: map[string]any{
			"avgPowerWatts": 210,
		},
	}
}

func wrap(t *testing.T, inner string) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": inner}}},
		}},
	})
	require.NoError(t, err)
	return string(raw)
}

func TestGenerateUsesModelOutput(t *testing.T) {
	inner := "```json\n" + `{
  "analysis": {"overall": "Solid ride", "heartRate": "Zone 2"},
  "improvements": [{"area": "Cadence", "recommendation": "Spin at 90 rpm"}],
  "suggestions": [{"workout": "Hill repeats", "description": "5x3 min"}],
  "safety": ["Check tyre pressure"]
}` + "\n```"
	client := &stubClient{raw: wrap(t, inner)}
	obs := &recordingObserver{}

	rec := New(client, WithClock(clock), WithObserver(obs)).Generate(context.Background(), sampleActivity())

	require.Equal(t, prompt.Build(sampleActivity()), client.prompt)
	require.Equal(t, "Overall: Solid ride\n\nHeartRate: Zone 2\n\n", rec.Text)
	require.Equal(t, []string{"Cadence: Spin at 90 rpm"}, rec.Improvements())
	require.Equal(t, []string{"Hill repeats: 5x3 min"}, rec.Suggestions())
	require.Equal(t, []string{"Check tyre pressure"}, rec.Safety())
	require.Equal(t, "act-1", rec.ActivityID)
	require.Equal(t, "user-1", rec.UserID)
	require.Equal(t, "CYCLING", rec.ActivityType)
	require.Equal(t, fixedNow, rec.CreatedAt)

	events := obs.all()
	require.Len(t, events, 2)
	require.Equal(t, observability.StageModel, events[0].Stage)
	require.Equal(t, observability.OutcomeOK, events[0].Outcome)
	require.Equal(t, observability.StageExtract, events[1].Stage)
	require.Equal(t, observability.OutcomeOK, events[1].Outcome)
}

func TestGenerateFallsBackOnTransportError(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	obs := &recordingObserver{}

	rec := New(client, WithClock(clock), WithObserver(obs)).Generate(context.Background(), sampleActivity())

	require.True(t, rec.IsDefault())
	require.Equal(t, domain.DefaultAnalysis, rec.Text)
	require.Equal(t, fixedNow, rec.CreatedAt)

	events := obs.all()
	require.NotEmpty(t, events)
	require.Equal(t, observability.StageModel, events[0].Stage)
	require.Equal(t, observability.OutcomeFallback, events[0].Outcome)
	require.ErrorContains(t, events[0].Err, "connection refused")
}

func TestGenerateTransportErrorMatchesNullResponse(t *testing.T) {
	activity := sampleActivity()
	failing := New(&stubClient{err: context.DeadlineExceeded}, WithClock(clock)).Generate(context.Background(), activity)
	empty := New(&stubClient{raw: `{"candidates": []}`}, WithClock(clock)).Generate(context.Background(), activity)

	require.Equal(t, failing.Text, empty.Text)
	require.Equal(t, failing.Improvements(), empty.Improvements())
	require.Equal(t, failing.Suggestions(), empty.Suggestions())
	require.Equal(t, failing.Safety(), empty.Safety())
}

func TestGenerateIgnoresRawReturnedWithError(t *testing.T) {
	client := &stubClient{raw: wrap(t, `{"safety":["ignored"]}`), err: errors.New("partial read")}

	rec := New(client, WithClock(clock)).Generate(context.Background(), sampleActivity())

	require.True(t, rec.IsDefault())
}

func TestGeneratePassesContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "trace")
	client := &stubClient{raw: wrap(t, "{}")}

	New(client).Generate(ctx, sampleActivity())

	require.Equal(t, "trace", client.ctx.Value(ctxKey{}))
}

type stubClient struct {
	raw    string
	err    error
	prompt string
	ctx    context.Context
}

func (s *stubClient) Invoke(ctx context.Context, prompt string) (string, error) {
	s.ctx = ctx
	s.prompt = prompt
	return s.raw, s.err
}

type recordingObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (o *recordingObserver) Observe(evt observability.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, evt)
}

func (o *recordingObserver) all() []observability.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]observability.Event(nil), o.events...)
}

func TestGenerateRecoversClientPanic(t *testing.T) {
	obs := &recordingObserver{}
	gen := New(panicClient{}, WithClock(clock), WithObserver(obs))

	var rec domain.Recommendation
	require.NotPanics(t, func() {
		rec = gen.Generate(context.Background(), sampleActivity())
	})

	require.Equal(t, domain.DefaultRecommendation(sampleActivity(), fixedNow), rec)
	events := obs.all()
	require.Len(t, events, 1)
	require.Equal(t, observability.StageModel, events[0].Stage)
	require.Equal(t, observability.OutcomeFallback, events[0].Outcome)
	require.ErrorContains(t, events[0].Err, "sdk nil deref")
}

func TestGenerateRecoversObserverPanic(t *testing.T) {
	client := &stubClient{raw: wrap(t, `{"safety":["Hydrate"]}`)}
	gen := New(client, WithClock(clock), WithObserver(explodingObserver{}))

	var rec domain.Recommendation
	require.NotPanics(t, func() {
		rec = gen.Generate(context.Background(), sampleActivity())
	})
	require.True(t, rec.IsDefault())
	require.Equal(t, "act-1", rec.ActivityID)
}

type panicClient struct{}

func (panicClient) Invoke(context.Context, string) (string, error) {
	panic("sdk nil deref")
}

type explodingObserver struct{}

func (explodingObserver) Observe(observability.Event) {
	panic("observer exploded")
}
