package http

import (
	"context"
	stdhttp "net/http"
	"path/filepath"

	"github.com/dkeye/Cast/internal/adapters/rtc"
	"github.com/dkeye/Cast/internal/adapters/signal"
	"github.com/dkeye/Cast/internal/app"
	"github.com/dkeye/Cast/internal/config"
	"github.com/dkeye/Cast/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const identityKey = "viewer_id"

// IdentityMiddleware keeps a stable viewer identity in the cookie session.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		raw, _ := sess.Get(identityKey).(string)
		if _, err := domain.ParseIdentity(raw); err != nil {
			raw = string(domain.NewIdentity())
			sess.Set(identityKey, raw)
			if err := sess.Save(); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(identityKey, raw)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, relay *app.Relay, reg *app.Registry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("CastSessions", store))

	ctrl := signal.NewSignalWSController(relay, reg, cfg)
	handleSignal := func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("remote", c.Request.RemoteAddr).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	}

	r.Static("/static", cfg.StaticPath)
	r.GET("/host", func(c *gin.Context) {
		c.File(filepath.Join(cfg.StaticPath, "host.html"))
	})
	r.GET("/receiver", func(c *gin.Context) {
		c.File(filepath.Join(cfg.StaticPath, "receiver.html"))
	})
	// Browser clients open the socket on the page origin root.
	r.GET("/", func(c *gin.Context) {
		if websocket.IsWebSocketUpgrade(c.Request) {
			handleSignal(c)
			return
		}
		c.Redirect(stdhttp.StatusFound, "/receiver")
	})
	r.GET("/ws", handleSignal)

	iceServers := rtc.ICEServers(cfg.ICEServers)
	if len(iceServers) == 0 {
		iceServers = rtc.DefaultICEServers()
	}

	api := r.Group("/api")
	api.GET("/identity", IdentityMiddleware(), func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{"id": c.GetString(identityKey)})
	})
	api.GET("/ice", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{"iceServers": iceServers})
	})
	api.GET("/status", func(c *gin.Context) {
		st := relay.Session.Stats()
		c.JSON(stdhttp.StatusOK, gin.H{
			"host":        st.Host,
			"viewers":     st.Viewers,
			"connections": reg.Count(),
		})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Int("ice_servers", len(iceServers)).Msg("router setup")
	return r
}
