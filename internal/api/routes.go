// Package api is the control-plane HTTP/WebSocket surface: it reports a
// running Maker or Taker's state and recent round history, and serves a
// websocket stream that forwards whatever is passed to Hub.Broadcast; the
// Maker and Taker state machines do not publish to it. Grounded on the teacher's
// internal/api/routes.go gin wiring and CORS/health conventions.
package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rawblock/nostrdizer/internal/maker"
	"github.com/rawblock/nostrdizer/internal/store"
	"github.com/rawblock/nostrdizer/internal/taker"
)

// Handler serves the control-plane API for one running role instance.
type Handler struct {
	mk    *maker.Maker
	tk    *taker.Taker
	store store.Store
	hub   *Hub
}

// NewHandler builds a Handler. Exactly one of mk/tk is expected to be
// non-nil for a given process (a role instance runs one role at a time).
func NewHandler(mk *maker.Maker, tk *taker.Taker, st store.Store, hub *Hub) *Handler {
	return &Handler{mk: mk, tk: tk, store: st, hub: hub}
}

// SetupRouter wires the control-plane routes, matching the teacher's CORS
// middleware and public/protected route split.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", h.handleHealth)
		pub.GET("/stream", h.hub.Subscribe)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	protected.Use(NewRateLimiter(60, 10).Middleware())
	{
		protected.GET("/state", h.handleState)
		protected.GET("/rounds", h.handleRounds)
	}

	return r
}

func (h *Handler) handleHealth(c *gin.Context) {
	role := "none"
	switch {
	case h.mk != nil:
		role = "maker"
	case h.tk != nil:
		role = "taker"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "operational",
		"role":   role,
	})
}

func (h *Handler) handleState(c *gin.Context) {
	switch {
	case h.mk != nil:
		c.JSON(http.StatusOK, gin.H{"role": "maker", "state": h.mk.State().String()})
	case h.tk != nil:
		c.JSON(http.StatusOK, gin.H{"role": "taker", "state": h.tk.State().String()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no role running"})
	}
}

func (h *Handler) handleRounds(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no store configured"})
		return
	}
	mem, ok := h.store.(*store.Memory)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"note": "round history only introspectable for the in-memory store"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rounds": mem.Rounds()})
}
