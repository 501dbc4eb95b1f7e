package http

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/dkeye/Slate/internal/app/orch"
	"github.com/dkeye/Slate/internal/canvas"
	"github.com/dkeye/Slate/internal/core"
	"github.com/dkeye/Slate/internal/domain"
	"github.com/dkeye/Slate/internal/media"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	orch *orch.Orchestrator
	fps  int
}

func sidParam(c *gin.Context) core.SessionID {
	return core.SessionID(c.Param("sid"))
}

func (h *handlers) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.orch.Sessions.List()})
}

func (h *handlers) overlay(c *gin.Context) {
	v, ok := h.orch.Overlay(sidParam(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such session"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// command accepts the raw message text as the request body.
func (h *handlers) command(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err = h.orch.Deliver(sidParam(c), domain.Topic(c.Param("topic")), string(body))
	switch {
	case err == nil:
		c.Status(http.StatusAccepted)
	case errors.Is(err, orch.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	}
}

// preview streams the frames published to a session as MJPEG.
func (h *handlers) preview(c *gin.Context) {
	sid := sidParam(c)
	if _, ok := h.orch.Sessions.Get(sid); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such session"})
		return
	}

	mw := multipart.NewWriter(c.Writer)
	c.Header("Content-Type", "multipart/x-mixed-replace; boundary="+mw.Boundary())
	c.Header("Cache-Control", "no-store")

	ticker := time.NewTicker(media.FrameInterval(h.fps))
	defer ticker.Stop()

	var last []byte
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-ticker.C:
		}
		frame, ok := h.orch.Preview(sid)
		if !ok || bytes.Equal(frame, last) {
			return true
		}
		last = frame
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":   {"image/jpeg"},
			"Content-Length": {strconv.Itoa(len(frame))},
		})
		if err != nil {
			return false
		}
		if _, err := part.Write(frame); err != nil {
			log.Debug().Err(err).Str("module", "adapters.http").Str("sid", string(sid)).Msg("preview client gone")
			return false
		}
		return true
	})
}

func (h *handlers) board(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fingerprint": h.orch.Board.Fingerprint().String(),
		"mounted":     h.orch.Board.Mounted(),
		"strokes":     h.orch.Board.Strokes(),
	})
}

func (h *handlers) boardPNG(c *gin.Context) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, h.orch.Board.Snapshot()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (h *handlers) draw(c *gin.Context) {
	var s canvas.Stroke
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	applied, err := h.orch.Draw(s)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, applied)
}

func (h *handlers) clear(c *gin.Context) {
	h.orch.ClearBoard()
	c.Status(http.StatusNoContent)
}

func (h *handlers) mount(mounted bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.orch.SetMounted(mounted)
		c.JSON(http.StatusOK, gin.H{"mounted": mounted})
	}
}
