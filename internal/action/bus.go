package action

import (
	"github.com/rs/zerolog/log"
)

// Bus is the ordered, best-effort queue of Type values running between
// the tray thread (producer) and the Engine (consumer). Delivery is
// ordered but best-effort: when the buffer is full the action being sent
// is dropped rather than blocking the tray indefinitely, and every drop is logged
// so it stays user-observable per the spec's delivery contract.
type Bus struct {
	ch chan Type
}

// NewBus creates a Bus with the given buffer size. A size of zero or
// less uses a reasonable default — tray actions are rare and bursty, not
// a high-throughput stream.
func NewBus(bufSize int) *Bus {
	if bufSize <= 0 {
		bufSize = 16
	}
	return &Bus{ch: make(chan Type, bufSize)}
}

// Send enqueues an action. It never blocks: if the buffer is full the
// action is dropped and logged, since a UI thread must never stall on a
// slow or wedged Engine.
func (b *Bus) Send(t Type) {
	select {
	case b.ch <- t:
	default:
		log.Warn().Stringer("action", t).Msg("action bus: buffer full, dropping action")
	}
}

// Receive returns the channel the Engine should range over to consume
// actions in order.
func (b *Bus) Receive() <-chan Type {
	return b.ch
}

// Close shuts down the bus. Callers must ensure no further Send calls
// occur after Close.
func (b *Bus) Close() {
	close(b.ch)
}
