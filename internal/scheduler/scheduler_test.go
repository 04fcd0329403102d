package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	ranges []schema.TimeRange
}

func (r *recorder) run(_ context.Context, tr schema.TimeRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranges = append(r.ranges, tr)
	return nil
}

func (r *recorder) calls() []schema.TimeRange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]schema.TimeRange(nil), r.ranges...)
}

func TestNew_Validation(t *testing.T) {
	rec := &recorder{}

	_, err := New("not a cron", nil, rec.run)
	assert.Error(t, err)

	_, err = New("0 9 * * 1", []schema.TimeRange{"yearly"}, rec.run)
	assert.Error(t, err)

	_, err = New("0 9 * * 1", nil, nil)
	assert.Error(t, err)

	s, err := New("0 9 * * 1", nil, rec.run)
	require.NoError(t, err)
	assert.Equal(t, []schema.TimeRange{schema.Weekly}, s.Ranges())
}

func TestNext(t *testing.T) {
	s, err := New("0 9 * * 1", nil, (&recorder{}).run)
	require.NoError(t, err)

	// Friday 2024-06-14 12:00 local; next Monday 09:00
	from := time.Date(2024, 6, 14, 12, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 6, 17, 9, 0, 0, 0, time.Local), s.Next(from))
}

func TestTrigger_RunsEveryRangeInOrder(t *testing.T) {
	rec := &recorder{}
	s, err := New("@daily", []schema.TimeRange{schema.Daily, schema.Monthly}, rec.run)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Trigger(context.Background()))
	assert.Equal(t, []schema.TimeRange{schema.Daily, schema.Monthly}, rec.calls())
}

func TestTrigger_FailureDoesNotStopOthers(t *testing.T) {
	var got []schema.TimeRange
	run := func(_ context.Context, tr schema.TimeRange) error {
		got = append(got, tr)
		if tr == schema.Daily {
			return errors.New("harvest down")
		}
		return nil
	}
	s, err := New("@daily", []schema.TimeRange{schema.Daily, schema.Weekly}, run)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Trigger(context.Background()))
	assert.Equal(t, []schema.TimeRange{schema.Daily, schema.Weekly}, got)
}

func TestTrigger_CanceledContext(t *testing.T) {
	rec := &recorder{}
	s, err := New("@daily", []schema.TimeRange{schema.Daily, schema.Weekly}, rec.run)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Trigger(ctx)
	assert.Empty(t, rec.calls())
}

func TestRun_FiresOnSchedule(t *testing.T) {
	rec := &recorder{}
	s, err := New("@every 1s", []schema.TimeRange{schema.Daily}, rec.run)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return len(rec.calls()) > 0 }, 5*time.Second, 50*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, schema.Daily, rec.calls()[0])
}
