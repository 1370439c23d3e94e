package signal

import (
	"context"
	"time"

	"github.com/dkeye/Cast/internal/core"
	"github.com/gorilla/websocket"
)

func (ctl *SignalWSController) writePump(ctx context.Context, p *core.Peer, c *WsSignalConn) {
	logger := p.Logger()
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("writePump ctx done")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(ctl.Cfg.WriteWait))
			return
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteWait)); err != nil {
				logger.Error().Err(err).Msg("writePump set deadline")
				return
			}
			if !ok {
				logger.Debug().Msg("writePump channel closed")
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Warn().Err(err).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn().Err(err).Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, p *core.Peer, c *WsSignalConn, cancel context.CancelFunc) {
	logger := p.Logger()
	defer func() {
		logger.Info().Str("role", p.Role().Kind.String()).Msg("readPump closing")
		ctl.Relay.Disconnect(p)
		ctl.Registry.Unbind(p.ID())
		c.Close()
		cancel()
	}()

	pongWait := ctl.Cfg.PongWait()
	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("readPump ctx done")
			return
		default:
		}
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Warn().Err(err).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if mt != websocket.TextMessage {
			logger.Warn().Int("message_type", mt).Msg("non-text frame dropped")
			continue
		}
		ctl.Relay.HandleFrame(p, core.Frame(data))
	}
}
