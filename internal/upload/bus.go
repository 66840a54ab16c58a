package upload

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrConsumerTimeout is returned by Consume when no event arrived in time.
var ErrConsumerTimeout = errors.New("progress consumer timed out")

// Bus is a bounded FIFO of progress events between the upload sequence
// and a single consumer. Emit blocks while the buffer is full.
//
// If the consumer gives up, the bus is marked abandoned: later Emit calls
// return at once and the upload keeps running with no observer. Nothing
// cancels the producer.
type Bus struct {
	events          chan Event
	abandoned       chan struct{}
	abandonOnce     sync.Once
	closeOnce       sync.Once
	displayInterval time.Duration
}

func NewBus(capacity int, displayInterval time.Duration) *Bus {
	if capacity <= 0 {
		capacity = 1
	}
	return &Bus{
		events:          make(chan Event, capacity),
		abandoned:       make(chan struct{}),
		displayInterval: displayInterval,
	}
}

func (b *Bus) Emit(ctx context.Context, ev Event) {
	select {
	case b.events <- ev:
	case <-b.abandoned:
	case <-ctx.Done():
	}
}

// Close is called by the producer once it will emit nothing more.
func (b *Bus) Close() {
	b.closeOnce.Do(func() { close(b.events) })
}

func (b *Bus) Abandoned() bool {
	select {
	case <-b.abandoned:
		return true
	default:
		return false
	}
}

// Consume delivers displayable events to handle until the bus is closed.
// It stops with ErrConsumerTimeout when timeout passes without any event.
func (b *Bus) Consume(timeout time.Duration, handle func(Event)) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-b.events:
			if !ok {
				return nil
			}
			if ShouldDisplay(ev, b.displayInterval) {
				handle(ev)
			}
			timer.Reset(timeout)
		case <-timer.C:
			b.abandon()
			slog.Warn("No progress received, no longer listening; upload continues in the background", "timeout", timeout)
			return ErrConsumerTimeout
		}
	}
}

func (b *Bus) abandon() {
	b.abandonOnce.Do(func() { close(b.abandoned) })
}

// ShouldDisplay filters waiting events: only elapsed 0 and multiples of
// interval pass. Every other event passes.
func ShouldDisplay(ev Event, interval time.Duration) bool {
	waiting, ok := ev.(WaitingForAsset)
	if !ok {
		return true
	}
	if waiting.ElapsedSeconds == 0 {
		return true
	}
	step := int64(interval / time.Second)
	if step <= 0 {
		return true
	}
	return waiting.ElapsedSeconds%step == 0
}
