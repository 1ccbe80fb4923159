package attendance

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQueue(budget time.Duration) *ProcessingQueue {
	clk := clock.NewFake(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))
	policy := retry.Policy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
	return NewProcessingQueue(clk, policy, budget, 30*time.Second)
}

func acceptedResponse() attendance.CheckInOutResponse {
	return attendance.CheckInOutResponse{
		Admission: period.AdmissionResult{Outcome: period.OutcomeAccepted},
	}
}

func TestProcessingQueue_RunsUnit(t *testing.T) {
	t.Parallel()
	q := testQueue(time.Second)

	resp, err := q.Do(context.Background(), "emp-1", "sig-1", func(ctx context.Context) (attendance.CheckInOutResponse, error) {
		return acceptedResponse(), nil
	})

	require.NoError(t, err)
	assert.False(t, resp.Processing)
	assert.Equal(t, period.OutcomeAccepted, resp.Admission.Outcome)
}

func TestProcessingQueue_DedupeExecutesOnce(t *testing.T) {
	t.Parallel()
	q := testQueue(time.Second)

	var executions atomic.Int32
	unit := func(ctx context.Context) (attendance.CheckInOutResponse, error) {
		executions.Add(1)
		return acceptedResponse(), nil
	}

	first, err := q.Do(context.Background(), "emp-1", "sig-dup", unit)
	require.NoError(t, err)

	second, err := q.Do(context.Background(), "emp-1", "sig-dup", unit)
	require.NoError(t, err)

	assert.Equal(t, int32(1), executions.Load(), "identical signature inside the dedupe window runs once")
	assert.Equal(t, first, second)
}

func TestProcessingQueue_ConcurrentDuplicatesCollapse(t *testing.T) {
	t.Parallel()
	q := testQueue(time.Second)

	var executions atomic.Int32
	unit := func(ctx context.Context) (attendance.CheckInOutResponse, error) {
		executions.Add(1)
		time.Sleep(20 * time.Millisecond)
		return acceptedResponse(), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.Do(context.Background(), "emp-1", "sig-race", unit)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), executions.Load())
}

func TestProcessingQueue_SerializesPerEmployee(t *testing.T) {
	t.Parallel()
	q := testQueue(time.Second)

	var inFlight, maxInFlight atomic.Int32
	unit := func(ctx context.Context) (attendance.CheckInOutResponse, error) {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return acceptedResponse(), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		sig := string(rune('a' + i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.Do(context.Background(), "emp-1", sig, unit)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load(), "units for one employee never overlap")
}

func TestProcessingQueue_BudgetExceededReturnsProcessing(t *testing.T) {
	t.Parallel()
	q := testQueue(30 * time.Millisecond)

	done := make(chan struct{})
	resp, err := q.Do(context.Background(), "emp-1", "sig-slow", func(ctx context.Context) (attendance.CheckInOutResponse, error) {
		defer close(done)
		time.Sleep(150 * time.Millisecond)
		return acceptedResponse(), nil
	})

	require.NoError(t, err)
	assert.True(t, resp.Processing)
	assert.Equal(t, period.OutcomeAccepted, resp.Admission.Outcome)

	// The unit keeps running to completion after the caller got its
	// provisional answer.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unit did not run to completion after budget timeout")
	}

	// A duplicate after completion gets the real result.
	resp, err = q.Do(context.Background(), "emp-1", "sig-slow", func(ctx context.Context) (attendance.CheckInOutResponse, error) {
		t.Fatal("duplicate must not re-execute")
		return attendance.CheckInOutResponse{}, nil
	})
	require.NoError(t, err)
	assert.False(t, resp.Processing)
}

func TestProcessingQueue_CallerCancellationDoesNotAbortUnit(t *testing.T) {
	t.Parallel()
	q := testQueue(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	interrupted := make(chan bool, 1)
	_, err := q.Do(ctx, "emp-1", "sig-cancelled", func(ctx context.Context) (attendance.CheckInOutResponse, error) {
		time.Sleep(50 * time.Millisecond)
		interrupted <- ctx.Err() != nil
		return acceptedResponse(), nil
	})
	require.NoError(t, err)

	select {
	case wasInterrupted := <-interrupted:
		assert.False(t, wasInterrupted, "unit context must survive caller cancellation")
	case <-time.After(time.Second):
		t.Fatal("unit did not finish")
	}
}
