package tmigo

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Queue is a rate-limited FIFO worker over a 256-item buffered channel; Add
// blocks while that buffer is full. A single goroutine drains
// enqueued items one at a time, waiting at least defaultDelay (or an
// item-specific override) between successive sends. Unlike the Python
// reference implementation this worker's lifecycle is explicit: Start/Stop
// are tied to the connection's connect/disconnect rather than lazily
// starting on the first Add (see SPEC_FULL.md §4.E, §9).
type Queue struct {
	defaultDelay time.Duration
	limiter      *rate.Limiter

	mu      sync.Mutex
	items   chan queueItem
	done    chan struct{}
	wg      sync.WaitGroup
	running bool
}

type queueItem struct {
	fn    func()
	delay time.Duration
}

// NewQueue creates a queue with the given default inter-item delay.
func NewQueue(defaultDelay time.Duration) *Queue {
	if defaultDelay <= 0 {
		defaultDelay = 3 * time.Second
	}
	return &Queue{
		defaultDelay: defaultDelay,
		limiter:      rate.NewLimiter(rate.Every(defaultDelay), 1),
		items:        make(chan queueItem, 256),
	}
}

// Start launches the worker goroutine. Calling Start on an already-running
// queue is a no-op.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true
	q.done = make(chan struct{})
	q.wg.Add(1)
	go q.run(q.done)
}

// Stop cancels the worker and drops any items still queued. Safe to call
// when the queue is already stopped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.done)
	q.mu.Unlock()

	q.wg.Wait()

	// Drain so a subsequent Start doesn't replay stale sends.
	for {
		select {
		case <-q.items:
		default:
			return
		}
	}
}

// Add enqueues fn, optionally overriding the default inter-item delay for
// the send that follows it. If the queue is not running, the item is
// dropped (mirrors sends being cancelled across a disconnect, SPEC_FULL.md §3).
func (q *Queue) Add(fn func(), delay ...time.Duration) {
	q.mu.Lock()
	running := q.running
	q.mu.Unlock()
	if !running {
		return
	}

	item := queueItem{fn: fn}
	if len(delay) > 0 {
		item.delay = delay[0]
	}

	select {
	case q.items <- item:
	case <-q.done:
	}
}

func (q *Queue) run(done chan struct{}) {
	defer q.wg.Done()

	for {
		select {
		case <-done:
			return
		case item := <-q.items:
			item.fn()

			wait := item.delay
			if wait <= 0 {
				// Steady-state pacing goes through the shared limiter. Allow
				// first charges this send to the limiter (it takes a token
				// only if one is free), so the reservation below waits a
				// full interval even when the bucket refilled while idle.
				q.limiter.Allow()
				wait = q.limiter.Reserve().Delay()
			}

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-done:
				timer.Stop()
				return
			}
		}
	}
}
