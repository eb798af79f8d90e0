// Package control carries playback commands from the keyboard goroutine to the
// audio render callback.
package control

import (
	"context"
	"sync"

	"github.com/gammazero/deque"

	"github.com/llehouerou/modplay/internal/keymap"
)

// Channel is an unbounded FIFO of commands with one producer and one consumer.
// Send never blocks, so a burst of keys cannot stall the keyboard goroutine
// while the render callback is slow to drain.
type Channel struct {
	mu    sync.Mutex
	queue *deque.Deque[keymap.Command]

	wake      chan struct{} // holds a token while the queue may be non-empty
	closed    chan struct{}
	closeOnce sync.Once
}

// NewChannel creates an empty, open channel.
func NewChannel() *Channel {
	return &Channel{
		queue:  deque.New[keymap.Command](),
		wake:   make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Send appends cmd. It returns false if the channel has been closed.
func (c *Channel) Send(cmd keymap.Command) bool {
	c.mu.Lock()
	select {
	case <-c.closed:
		c.mu.Unlock()
		return false
	default:
	}
	c.queue.PushBack(cmd)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return true
}

// TryReceive pops the oldest command without waiting.
func (c *Channel) TryReceive() (keymap.Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queue.Len() == 0 {
		return 0, false
	}
	return c.queue.PopFront(), true
}

// Receive waits for the next command. Commands sent before Close are still
// delivered; after that, and on ctx cancellation, ok is false.
func (c *Channel) Receive(ctx context.Context) (keymap.Command, bool) {
	for {
		if cmd, ok := c.TryReceive(); ok {
			return cmd, true
		}
		select {
		case <-c.wake:
		case <-c.closed:
			return c.TryReceive()
		case <-ctx.Done():
			return 0, false
		}
	}
}

// Close marks the end of the command stream. It is safe to call more than once.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		close(c.closed)
		c.mu.Unlock()
	})
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Len returns the number of commands waiting to be received.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}
