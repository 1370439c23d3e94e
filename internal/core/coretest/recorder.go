// Package coretest provides an in-memory SignalConnection for tests.
package coretest

import (
	"encoding/json"
	"sync"

	"github.com/dkeye/Cast/internal/core"
)

// Recorder keeps every frame it is asked to send.
type Recorder struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (r *Recorder) TrySend(f core.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return core.ErrConnectionClosed
	}
	r.frames = append(r.frames, append(core.Frame(nil), f...))
	return nil
}

func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Recorder) Frames() []core.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Frame(nil), r.frames...)
}

// Notices decodes every recorded frame as a relay notice.
func (r *Recorder) Notices() []core.Notice {
	var out []core.Notice
	for _, f := range r.Frames() {
		var n core.Notice
		if err := json.Unmarshal(f, &n); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Count returns how many frames of the given type were recorded.
func (r *Recorder) Count(kind core.Kind) int {
	n := 0
	for _, m := range r.Notices() {
		if m.Type == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

// NewPeer returns a peer wired to a fresh recorder.
func NewPeer(remote string) (*core.Peer, *Recorder) {
	rec := &Recorder{}
	return core.NewPeer(remote, rec), rec
}
