package miner

import "sync"

type task int

const (
	taskStartMining task = iota
)

func (t task) String() string {
	switch t {
	case taskStartMining:
		return "start-mining"
	default:
		return "unknown"
	}
}

// taskQueue is an unbounded FIFO. Push never blocks, so the worker goroutine can
// queue work for itself.
type taskQueue struct {
	mu    sync.Mutex
	tasks []task
	ready chan struct{}
}

func newTaskQueue() *taskQueue {
	return &taskQueue{ready: make(chan struct{}, 1)}
}

func (q *taskQueue) push(t task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// pop removes the oldest task. The ready signal is re-armed while tasks remain,
// so a consumer takes one task per wakeup.
func (q *taskQueue) pop() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return 0, false
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]

	if len(q.tasks) > 0 {
		select {
		case q.ready <- struct{}{}:
		default:
		}
	}
	return t, true
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// wait is signalled while the queue is non-empty.
func (q *taskQueue) wait() <-chan struct{} {
	return q.ready
}
