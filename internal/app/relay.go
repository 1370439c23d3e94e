package app

import (
	"errors"

	"github.com/dkeye/Cast/internal/auth"
	"github.com/dkeye/Cast/internal/core"
	"github.com/dkeye/Cast/internal/domain"
)

// HostGate decides whether a connection may become the host.
type HostGate interface {
	Admit(remote string, password string) error
}

// Relay is the per-connection state machine. Every adapter feeds it
// inbound frames and tells it when a connection goes away.
type Relay struct {
	Session *Session
	Router  *Router
	Gate    HostGate
}

func NewRelay(s *Session, gate HostGate) *Relay {
	return &Relay{
		Session: s,
		Router:  NewRouter(s),
		Gate:    gate,
	}
}

// HandleFrame decodes one inbound frame and applies it.
func (r *Relay) HandleFrame(p *core.Peer, f core.Frame) {
	if p.Closed() {
		p.Logger().Debug().Msg("frame after close dropped")
		return
	}
	switch m := core.Decode(f).(type) {
	case core.Malformed:
		p.Logger().Warn().Err(m.Err).Msg("malformed frame dropped")
	case core.HostRequest:
		r.onHost(p, m)
	case core.JoinRequest:
		r.onJoin(p, m)
	case core.ReconnectRequest:
		r.onReconnect(p, m)
	case core.Negotiation:
		r.Router.Route(p, m)
	}
}

func (r *Relay) onHost(p *core.Peer, m core.HostRequest) {
	if kind := p.Role().Kind; kind != domain.RoleUnassigned {
		p.Logger().Warn().Str("role", kind.String()).Msg("host request ignored")
		return
	}
	if err := r.Gate.Admit(p.RemoteAddr(), m.Password); err != nil {
		p.Logger().Warn().Err(err).Msg("host rejected")
		p.Send(core.ErrorNotice(rejectReason(err)))
		p.Close()
		return
	}

	s := r.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignHostLocked(p)
	for _, id := range s.sortedViewersLocked() {
		s.viewers[id].Send(core.HostConnected(id))
	}
	p.Send(core.HostAck())
}

func rejectReason(err error) string {
	if errors.Is(err, auth.ErrTooManyAttempts) {
		return "Too many attempts"
	}
	return "Invalid password"
}

func (r *Relay) onJoin(p *core.Peer, m core.JoinRequest) {
	if p.Role().IsHost() {
		p.Logger().Warn().Msg("join from host ignored")
		return
	}
	s := r.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerViewerLocked(m.ID, p)
	if s.host != nil {
		s.host.Send(core.JoinNotice(m.ID))
		p.Send(core.HostConnected(""))
		return
	}
	p.Send(core.HostDisconnected())
}

func (r *Relay) onReconnect(p *core.Peer, m core.ReconnectRequest) {
	if p.Role().IsHost() {
		p.Logger().Warn().Msg("reconnect from host ignored")
		return
	}
	s := r.Session
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.viewers[m.ID]; !known {
		p.Logger().Debug().Str("id", string(m.ID)).Msg("reconnect for unknown identity ignored")
		return
	}
	s.registerViewerLocked(m.ID, p)
	if s.host != nil {
		s.host.Send(core.JoinNotice(m.ID))
	}
}

// Disconnect releases whatever p held in the session.
func (r *Relay) Disconnect(p *core.Peer) {
	role := p.Role()
	s := r.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	switch role.Kind {
	case domain.RoleHost:
		if s.host != p {
			p.Logger().Info().Msg("superseded host left")
			return
		}
		for _, v := range s.clearLocked() {
			v.Send(core.HostDisconnected())
		}
	case domain.RoleViewer:
		if s.removeViewerIfLocked(role.Identity, p) {
			p.Logger().Info().Str("id", string(role.Identity)).Int("viewers", len(s.viewers)).Msg("viewer left")
		}
	case domain.RoleUnassigned:
	}
}
