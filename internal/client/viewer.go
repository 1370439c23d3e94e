package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/Cast/internal/core"
	"github.com/dkeye/Cast/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrNotConnected = errors.New("not connected")

// Viewer is a signaling client that joins the relay as one viewer and
// keeps its identity across reconnects.
type Viewer struct {
	URL    string
	ID     domain.Identity
	Dialer *websocket.Dialer

	// OnMessage sees every frame the relay delivers, from the read goroutine.
	OnMessage func(core.Frame)

	Supervisor *Supervisor

	mu     sync.Mutex
	conn   *websocket.Conn
	logger zerolog.Logger
}

func NewViewer(url string, id domain.Identity, b Backoff) *Viewer {
	v := &Viewer{
		URL:    url,
		ID:     id,
		Dialer: websocket.DefaultDialer,
		logger: log.With().Str("module", "client").Str("id", string(id)).Logger(),
	}
	v.Supervisor = NewSupervisor(b, v.connect)
	return v
}

// Run connects and then keeps the link alive until ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.connect(ctx); err != nil {
		return err
	}
	defer v.Close()
	return v.Supervisor.Run(ctx)
}

func (v *Viewer) connect(ctx context.Context) error {
	conn, _, err := v.Dialer.DialContext(ctx, v.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", v.URL, err)
	}
	if err := conn.WriteJSON(core.JoinNotice(v.ID)); err != nil {
		_ = conn.Close()
		return fmt.Errorf("join: %w", err)
	}

	v.mu.Lock()
	v.conn = conn
	v.mu.Unlock()
	v.logger.Info().Str("url", v.URL).Msg("joined")

	go v.readLoop(conn)
	return nil
}

func (v *Viewer) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			v.mu.Lock()
			current := v.conn == conn
			if current {
				v.conn = nil
			}
			v.mu.Unlock()
			_ = conn.Close()
			if current {
				v.logger.Warn().Err(err).Msg("link lost")
				v.Supervisor.Lost()
			}
			return
		}
		if v.OnMessage != nil {
			v.OnMessage(core.Frame(data))
		}
	}
}

// Send writes one JSON message on the live link.
func (v *Viewer) Send(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.conn == nil {
		return ErrNotConnected
	}
	return v.conn.WriteMessage(websocket.TextMessage, b)
}

// Wake is called when the viewer becomes visible again. A live link
// re-announces itself with reconnect, a dead one gets an extra attempt.
func (v *Viewer) Wake() {
	err := v.Send(core.Notice{Type: core.KindReconnect, ID: v.ID})
	if errors.Is(err, ErrNotConnected) {
		v.Supervisor.Wake()
		return
	}
	if err != nil {
		v.logger.Warn().Err(err).Msg("reconnect send")
	}
}

func (v *Viewer) Connected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conn != nil
}

func (v *Viewer) Close() {
	v.mu.Lock()
	conn := v.conn
	v.conn = nil
	v.mu.Unlock()
	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}
}
