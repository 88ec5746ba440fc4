package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned by Take once the sentinel has been taken.
var ErrStopped = errors.New("queue stopped")

// Queue is an unbounded FIFO hand-off between goroutines.
// Close enqueues a sentinel behind the pending items; consumers see ErrStopped when they reach it.
type Queue[T any] struct {
	mu      sync.Mutex
	items   []entry[T]
	ready   chan struct{}
	stopped bool

	epochCtx    context.Context
	epochCancel context.CancelFunc
}

type entry[T any] struct {
	value    T
	sentinel bool
}

// Item is a value handed out by Take.
type Item[T any] struct {
	Value T

	ctx context.Context
}

// Context is canceled by the first Flush after the item was enqueued.
func (i Item[T]) Context() context.Context {
	if i.ctx == nil {
		return context.Background()
	}

	return i.ctx
}

func New[T any]() *Queue[T] {
	ctx, cancel := context.WithCancel(context.Background())

	return &Queue[T]{
		ready:       make(chan struct{}, 1),
		epochCtx:    ctx,
		epochCancel: cancel,
	}
}

func (q *Queue[T]) Put(value T) {
	q.push(entry[T]{value: value})
}

// Close enqueues the sentinel.
func (q *Queue[T]) Close() {
	q.push(entry[T]{sentinel: true})
}

func (q *Queue[T]) push(e entry[T]) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()

	q.signal()
}

func (q *Queue[T]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Take blocks until an item is available or ctx is done.
func (q *Queue[T]) Take(ctx context.Context) (Item[T], error) {
	for {
		item, ok, err := q.TryTake()
		if err != nil || ok {
			return item, err
		}

		select {
		case <-ctx.Done():
			return Item[T]{}, ctx.Err()
		case <-q.ready:
		}
	}
}

// TryTake returns the head of the queue without blocking.
// ok is false when the queue is empty.
func (q *Queue[T]) TryTake() (item Item[T], ok bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return Item[T]{}, false, ErrStopped
	}

	if len(q.items) == 0 {
		return Item[T]{}, false, nil
	}

	head := q.items[0]
	var zero entry[T]
	q.items[0] = zero
	q.items = q.items[1:]

	if len(q.items) > 0 {
		q.signal()
	}

	if head.sentinel {
		q.stopped = true
		return Item[T]{}, false, ErrStopped
	}

	return Item[T]{Value: head.value, ctx: q.epochCtx}, true, nil
}

// Ready is signaled whenever items may be available.
// A receive does not guarantee a successful TryTake.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}

// Drain removes and returns every queued value without blocking.
// A queued sentinel stays in place.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.drainLocked()
}

// Flush discards every queued value and cancels the contexts of all items
// handed out since the previous Flush. It returns the number of discarded values.
func (q *Queue[T]) Flush() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := len(q.drainLocked())

	q.epochCancel()
	q.epochCtx, q.epochCancel = context.WithCancel(context.Background())

	return dropped
}

func (q *Queue[T]) drainLocked() []T {
	var (
		values []T
		kept   []entry[T]
	)

	for _, e := range q.items {
		if e.sentinel {
			kept = append(kept, e)
			continue
		}
		values = append(values, e.value)
	}

	q.items = kept

	return values
}

// Len counts queued entries, the sentinel included.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
