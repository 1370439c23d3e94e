package signal

import (
	"context"
	"net/http"
	"sync"

	"github.com/dkeye/Cast/internal/app"
	"github.com/dkeye/Cast/internal/config"
	"github.com/dkeye/Cast/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// SignalWSController turns websocket connections into relay peers.
type SignalWSController struct {
	Relay    *app.Relay
	Registry *app.Registry
	Cfg      *config.Config

	upgrader websocket.Upgrader
}

func NewSignalWSController(relay *app.Relay, reg *app.Registry, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Relay:    relay,
		Registry: reg,
		Cfg:      cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WsSignalConn implements core.SignalConnection on top of a websocket.
// Only the write pump touches the socket for writing.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting frames. The write pump flushes what is queued,
// sends a close frame and releases the socket.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	peer := core.NewPeer(c.Request.RemoteAddr, conn)
	peer.Logger().Info().Msg("new WS connection")

	connCtx, cancel := context.WithCancel(ctx)
	ctl.Registry.Bind(peer, cancel)

	go ctl.writePump(connCtx, peer, conn)
	go ctl.readPump(connCtx, peer, conn, cancel)
}
