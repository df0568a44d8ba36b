package control

import "sync"

// DefaultQueueSize is the default maximum number of pending commands.
const DefaultQueueSize = 64

// Queue is a bounded, thread-safe FIFO of commands. When full, the oldest
// command is discarded.
type Queue struct {
	commands []Command
	maxSize  int
	dropped  int
	mu       sync.Mutex
}

// NewQueue creates a queue with the default maximum size.
func NewQueue() *Queue {
	return NewQueueWithSize(DefaultQueueSize)
}

// NewQueueWithSize creates a queue with a custom maximum size.
func NewQueueWithSize(maxSize int) *Queue {
	if maxSize <= 0 {
		maxSize = DefaultQueueSize
	}
	return &Queue{
		commands: make([]Command, 0, maxSize),
		maxSize:  maxSize,
	}
}

// Push appends cmd, discarding the oldest command when the queue is full.
func (q *Queue) Push(cmd Command) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) >= q.maxSize {
		q.commands = q.commands[1:]
		q.dropped++
	}
	q.commands = append(q.commands, cmd)
}

// Pop removes and returns the oldest command.
func (q *Queue) Pop() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return nil, false
	}
	cmd := q.commands[0]
	q.commands = q.commands[1:]
	return cmd, true
}

// Drain removes and returns every pending command in order.
func (q *Queue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.commands) == 0 {
		return nil
	}
	out := make([]Command, len(q.commands))
	copy(out, q.commands)
	q.commands = q.commands[:0]
	return out
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// Dropped returns how many commands were discarded because the queue was full.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Clear removes all pending commands.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.commands = q.commands[:0]
}
