package core

import (
	"encoding/json"
	"sync/atomic"

	"github.com/dkeye/Cast/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ConnID string

// Peer is the relay's handle on one remote participant.
// The role is stored atomically so that other goroutines may read it
// while the owning handler transitions it.
type Peer struct {
	id     ConnID
	remote string
	conn   SignalConnection
	role   atomic.Pointer[domain.Role]
	closed atomic.Bool
	logger zerolog.Logger
}

func NewPeer(remote string, conn SignalConnection) *Peer {
	id := ConnID(uuid.NewString())
	p := &Peer{
		id:     id,
		remote: remote,
		conn:   conn,
		logger: log.With().Str("module", "signal").Str("conn", string(id)).Str("remote", remote).Logger(),
	}
	r := domain.Unassigned()
	p.role.Store(&r)
	return p
}

func (p *Peer) ID() ConnID              { return p.id }
func (p *Peer) RemoteAddr() string      { return p.remote }
func (p *Peer) Logger() *zerolog.Logger { return &p.logger }
func (p *Peer) Role() domain.Role       { return *p.role.Load() }

// SetRole is reserved for the session state machine.
func (p *Peer) SetRole(r domain.Role) {
	p.role.Store(&r)
}

// SendFrame queues f for delivery. Failures are logged and swallowed.
func (p *Peer) SendFrame(f Frame) {
	if err := p.conn.TrySend(f); err != nil {
		p.logger.Warn().Err(err).Msg("send dropped")
	}
}

// Send marshals v and queues it.
func (p *Peer) Send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		p.logger.Error().Err(err).Msg("send marshal")
		return
	}
	p.SendFrame(b)
}

// Close is terminal: the relay ignores every later frame from p.
func (p *Peer) Close() {
	p.closed.Store(true)
	p.conn.Close()
}

func (p *Peer) Closed() bool { return p.closed.Load() }
