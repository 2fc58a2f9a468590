// Package progress carries snapshots from a generation run to whoever is
// displaying it.
package progress

import (
	"sync"

	"github.com/Bahjat/llms-txt-generator/internal/model"
)

// Channel is a one-way snapshot queue with one producer (the pipeline) and one
// consumer (the stream writer). The producer closes it after the terminal
// snapshot; the consumer abandons it when it can no longer deliver.
type Channel struct {
	events    chan model.ProgressSnapshot
	gone      chan struct{}
	closeOnce sync.Once
	goneOnce  sync.Once
}

// NewChannel returns a Channel that buffers up to size snapshots before
// Publish waits for the consumer.
func NewChannel(size int) *Channel {
	return &Channel{
		events: make(chan model.ProgressSnapshot, max(size, 0)),
		gone:   make(chan struct{}),
	}
}

// Publish hands s to the consumer. It reports false, without blocking, once
// the consumer has abandoned the channel.
func (c *Channel) Publish(s model.ProgressSnapshot) bool {
	select {
	case <-c.gone:
		return false
	default:
	}

	select {
	case c.events <- s:
		return true
	case <-c.gone:
		return false
	}
}

// Close marks the end of the stream. Only the producer calls it.
func (c *Channel) Close() {
	c.closeOnce.Do(func() { close(c.events) })
}

// Events is the consumer side; it is closed after the last snapshot.
func (c *Channel) Events() <-chan model.ProgressSnapshot {
	return c.events
}

// Abandon tells the producer nobody is listening any more. Later Publish calls
// are no-ops.
func (c *Channel) Abandon() {
	c.goneOnce.Do(func() { close(c.gone) })
}

// Abandoned reports whether the consumer has gone away.
func (c *Channel) Abandoned() bool {
	select {
	case <-c.gone:
		return true
	default:
		return false
	}
}
