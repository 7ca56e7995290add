package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyFor(t *testing.T) {
	tests := []struct {
		kind string
		want Policy
	}{
		{KindProcessVideo, Policy{MaxAttempts: 3, BackoffBase: 2 * time.Second, Concurrency: 2}},
		{KindAfterVideoReady, Policy{MaxAttempts: 2, BackoffBase: 1 * time.Second, Concurrency: 5}},
		{"unknown", Policy{MaxAttempts: 1, BackoffBase: time.Second, Concurrency: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.want, PolicyFor(tt.kind))
		})
	}
}

func TestDisabledDispatcherRejectsEnqueue(t *testing.T) {
	d := &Dispatcher{disabled: true}
	require.False(t, d.Enabled())
	require.False(t, d.Enqueue(context.Background(), KindProcessVideo, ProcessVideoPayload{VideoID: "v"}))
}

func TestFallbackRunsAllJobs(t *testing.T) {
	f := NewFallback(2)

	var ran atomic.Int32
	for range 10 {
		f.Go("test", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	f.Wait()

	assert.Equal(t, int32(10), ran.Load())
}

func TestFallbackBoundsConcurrency(t *testing.T) {
	const limit = 2
	f := NewFallback(limit)

	var inFlight, peak atomic.Int32
	for range 8 {
		f.Go("test", func(ctx context.Context) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		})
	}
	f.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

func TestFallbackSurvivesErrors(t *testing.T) {
	f := NewFallback(1)

	var ran atomic.Int32
	f.Go("boom", func(ctx context.Context) error {
		return errors.New("boom")
	})
	f.Go("after", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	f.Wait()

	assert.Equal(t, int32(1), ran.Load())
}
