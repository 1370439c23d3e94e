package app

import (
	"sort"
	"sync"

	"github.com/dkeye/Cast/internal/core"
	"github.com/dkeye/Cast/internal/domain"
	"github.com/rs/zerolog/log"
)

// Session holds the current host slot and the viewer table.
// A single mutex serializes every read and write, including the
// composite check-and-act sequences run by Relay and Router.
type Session struct {
	mu      sync.Mutex
	host    *core.Peer
	viewers map[domain.Identity]*core.Peer
}

func NewSession() *Session {
	return &Session{
		viewers: make(map[domain.Identity]*core.Peer),
	}
}

// AssignHost overwrites the host slot. A previous host is not closed.
func (s *Session) AssignHost(p *core.Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignHostLocked(p)
}

func (s *Session) RegisterViewer(id domain.Identity, p *core.Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerViewerLocked(id, p)
}

func (s *Session) CurrentHost() *core.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host
}

func (s *Session) LookupViewer(id domain.Identity) *core.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewers[id]
}

func (s *Session) RemoveViewer(id domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.viewers, id)
	log.Info().Str("module", "app.session").Str("id", string(id)).Int("viewers", len(s.viewers)).Msg("viewer removed")
}

// ClearHostAndAllViewers empties the session and returns the removed
// viewers ordered by identity.
func (s *Session) ClearHostAndAllViewers() []*core.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

type SessionStats struct {
	Host    bool `json:"host"`
	Viewers int  `json:"viewers"`
}

func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStats{Host: s.host != nil, Viewers: len(s.viewers)}
}

func (s *Session) assignHostLocked(p *core.Peer) {
	if s.host != nil && s.host != p {
		log.Warn().Str("module", "app.session").Str("old", string(s.host.ID())).Str("new", string(p.ID())).Msg("host superseded")
	}
	p.SetRole(domain.HostRole())
	s.host = p
	log.Info().Str("module", "app.session").Str("conn", string(p.ID())).Msg("host assigned")
}

func (s *Session) registerViewerLocked(id domain.Identity, p *core.Peer) {
	// A viewer switching identity must not leave its old key behind.
	if prev := p.Role(); prev.IsViewer() && prev.Identity != id && s.viewers[prev.Identity] == p {
		delete(s.viewers, prev.Identity)
	}
	p.SetRole(domain.ViewerRole(id))
	s.viewers[id] = p
	log.Info().Str("module", "app.session").Str("conn", string(p.ID())).Str("id", string(id)).Int("viewers", len(s.viewers)).Msg("viewer registered")
}

// removeViewerIfLocked only drops the entry when it still points at p,
// so a stale duplicate closing late cannot evict the newest connection.
func (s *Session) removeViewerIfLocked(id domain.Identity, p *core.Peer) bool {
	if s.viewers[id] != p {
		return false
	}
	delete(s.viewers, id)
	return true
}

func (s *Session) clearLocked() []*core.Peer {
	ids := s.sortedViewersLocked()
	out := make([]*core.Peer, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.viewers[id])
	}
	s.host = nil
	s.viewers = make(map[domain.Identity]*core.Peer)
	log.Info().Str("module", "app.session").Int("viewers", len(out)).Msg("host and viewers cleared")
	return out
}

// sortedViewersLocked is used for deterministic fan-out.
func (s *Session) sortedViewersLocked() []domain.Identity {
	ids := make([]domain.Identity, 0, len(s.viewers))
	for id := range s.viewers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
