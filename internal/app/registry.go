package app

import (
	"context"
	"sync"

	"github.com/dkeye/Cast/internal/core"
	"github.com/dkeye/Cast/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Peer   *core.Peer
	Cancel context.CancelFunc
}

// Registry tracks every live connection, whatever its role.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[core.ConnID]*connEntry),
	}
}

func (r *Registry) Bind(p *core.Peer, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[p.ID()] = &connEntry{Peer: p, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(p.ID())).Int("connections", len(r.conns)).Msg("bound connection")
}

func (r *Registry) Unbind(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Int("connections", len(r.conns)).Msg("unbind connection")
}

func (r *Registry) Get(id core.ConnID) (*core.Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Peer, true
	}
	return nil, false
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

type ConnSnap struct {
	ID       core.ConnID     `json:"id"`
	Remote   string          `json:"remote"`
	Role     string          `json:"role"`
	Identity domain.Identity `json:"identity,omitempty"`
}

func (r *Registry) Snapshot() []ConnSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ConnSnap, 0, len(r.conns))
	for id, e := range r.conns {
		role := e.Peer.Role()
		out = append(out, ConnSnap{
			ID:       id,
			Remote:   e.Peer.RemoteAddr(),
			Role:     role.Kind.String(),
			Identity: role.Identity,
		})
	}
	return out
}

func (r *Registry) Cancel(id core.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}

// CancelAll is used on shutdown.
func (r *Registry) CancelAll() int {
	r.mu.RLock()
	entries := make([]*connEntry, 0, len(r.conns))
	for _, e := range r.conns {
		entries = append(entries, e)
	}
	r.mu.RUnlock()
	for _, e := range entries {
		if e.Cancel != nil {
			e.Cancel()
		}
	}
	return len(entries)
}
