package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Slate/internal/adapters/signal"
	"github.com/dkeye/Slate/internal/app/orch"
	"github.com/dkeye/Slate/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const tokenKey = "client_token"

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware gives every client a stable token, kept in the
// signed session and mirrored in the "ct" cookie.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		token, _ := s.Get(tokenKey).(string)
		if token == "" {
			token, _ = c.Cookie("ct")
		}
		if token == "" {
			token = genClientToken()
		}
		if s.Get(tokenKey) != token {
			s.Set(tokenKey, token)
			if err := s.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, ws *signal.SignalWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SlateSessions", store))
	r.Use(ClientTokenMiddleware())

	if cfg.StaticPath != "" {
		r.Static("/static", cfg.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(cfg.StaticPath + "/index.html")
		})
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &handlers{orch: o, fps: cfg.Capture.FPS}
	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString(tokenKey)).Msg("ws signal endpoint hit")
		ws.HandleSignal(ctx, c)
	})

	api.GET("/sessions", h.listSessions)
	api.GET("/sessions/:sid/overlay", h.overlay)
	api.GET("/sessions/:sid/preview.mjpeg", h.preview)
	api.POST("/sessions/:sid/commands/:topic", h.command)

	api.GET("/board", h.board)
	api.GET("/board.png", h.boardPNG)
	api.POST("/board/strokes", h.draw)
	api.DELETE("/board", h.clear)
	api.POST("/board/mount", h.mount(true))
	api.POST("/board/unmount", h.mount(false))

	return r
}
