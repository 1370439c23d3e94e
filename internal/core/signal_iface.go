package core

import "errors"

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// Frame is a raw text payload as it travels on the wire.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks: it either queues the frame or returns an error.
// Close lets already queued frames drain before the transport goes away.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
