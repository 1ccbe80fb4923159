package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/retry"
)

// ProcessingQueue serializes check-in/out units per employee. A unit is the
// re-read of authoritative state plus admission plus the persistence write;
// two concurrent requests for one employee can never both observe a stale
// current state. Identical request signatures within the dedupe window get
// the prior result. A unit that outlives the wall-clock budget keeps
// running to completion; the caller gets an accepted/processing response
// and polls later. No mid-unit cancellation.
type ProcessingQueue struct {
	clock        clock.Clock
	policy       retry.Policy
	budget       time.Duration
	dedupeWindow time.Duration

	mu     sync.Mutex
	locks  map[string]*employeeLock
	recent map[string]*inflight
}

type employeeLock struct {
	mu   sync.Mutex
	refs int
}

type inflight struct {
	done      chan struct{}
	resp      attendance.CheckInOutResponse
	err       error
	expiresAt time.Time
}

func NewProcessingQueue(clk clock.Clock, policy retry.Policy, budget, dedupeWindow time.Duration) *ProcessingQueue {
	return &ProcessingQueue{
		clock:        clk,
		policy:       policy,
		budget:       budget,
		dedupeWindow: dedupeWindow,
		locks:        make(map[string]*employeeLock),
		recent:       make(map[string]*inflight),
	}
}

// Do runs unit for the employee, serialized and deduplicated.
func (q *ProcessingQueue) Do(ctx context.Context, employeeID, signature string, unit func(ctx context.Context) (attendance.CheckInOutResponse, error)) (attendance.CheckInOutResponse, error) {
	q.mu.Lock()
	q.pruneLocked()

	if entry, ok := q.recent[signature]; ok {
		q.mu.Unlock()
		return q.await(entry)
	}

	entry := &inflight{done: make(chan struct{})}
	q.recent[signature] = entry

	el, ok := q.locks[employeeID]
	if !ok {
		el = &employeeLock{}
		q.locks[employeeID] = el
	}
	el.refs++
	q.mu.Unlock()

	// The unit must survive the caller: never cancelled mid-flight.
	unitCtx := context.WithoutCancel(ctx)

	go func() {
		el.mu.Lock()
		defer el.mu.Unlock()

		var resp attendance.CheckInOutResponse
		err := q.policy.Do(unitCtx, func(c context.Context) error {
			r, e := unit(c)
			if e == nil {
				resp = r
			}
			return e
		})

		entry.resp = resp
		entry.err = err
		entry.expiresAt = q.clock.Now().Add(q.dedupeWindow)
		close(entry.done)

		q.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(q.locks, employeeID)
		}
		q.mu.Unlock()
	}()

	return q.await(entry)
}

// await waits for the unit result up to the wall-clock budget.
func (q *ProcessingQueue) await(entry *inflight) (attendance.CheckInOutResponse, error) {
	select {
	case <-entry.done:
		return entry.resp, entry.err
	case <-time.After(q.budget):
		return attendance.CheckInOutResponse{
			Processing: true,
			Admission: period.AdmissionResult{
				Outcome: period.OutcomeAccepted,
				Reason:  "request accepted, processing continues",
			},
		}, nil
	}
}

// pruneLocked drops completed dedupe entries past their window.
func (q *ProcessingQueue) pruneLocked() {
	now := q.clock.Now()
	for sig, entry := range q.recent {
		select {
		case <-entry.done:
			if now.After(entry.expiresAt) {
				delete(q.recent, sig)
			}
		default:
		}
	}
}
