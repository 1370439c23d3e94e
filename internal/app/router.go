package app

import (
	"github.com/dkeye/Cast/internal/core"
	"github.com/rs/zerolog/log"
)

// Router forwards negotiation frames between the host and its viewers.
// Viewers can only ever reach the host, never each other.
type Router struct {
	Session *Session
}

func NewRouter(s *Session) *Router {
	return &Router{Session: s}
}

// Route delivers msg on behalf of from. Misses are dropped silently.
func (rt *Router) Route(from *core.Peer, msg core.Negotiation) {
	s := rt.Session
	s.mu.Lock()
	defer s.mu.Unlock()

	role := from.Role()
	logger := from.Logger().With().Str("module", "app.router").Str("type", string(msg.Type)).Logger()

	if role.IsHost() {
		if s.host != from {
			logger.Debug().Msg("drop: sender is no longer the host")
			return
		}
		target, ok := s.viewers[msg.ID]
		if !ok {
			logger.Debug().Str("id", string(msg.ID)).Msg("drop: no such viewer")
			return
		}
		target.SendFrame(msg.Raw)
		return
	}

	if s.host == nil {
		logger.Debug().Msg("drop: no host")
		return
	}
	frame := msg.Raw
	if role.IsViewer() && msg.ID != role.Identity {
		stamped, err := msg.WithID(role.Identity)
		if err != nil {
			log.Error().Err(err).Str("module", "app.router").Msg("stamp id")
			return
		}
		frame = stamped
	}
	s.host.SendFrame(frame)
}
