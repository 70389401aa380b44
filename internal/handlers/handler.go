package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/opsdeck/netops-go-backend/internal/store"
)

// Answerer is the assistant surface the HTTP layer depends on.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, []string)
}

// Handler holds the dependencies of the HTTP surface.
type Handler struct {
	Store     store.RequestStore
	Assistant Answerer
}

func New(s store.RequestStore, a Answerer) *Handler {
	return &Handler{Store: s, Assistant: a}
}

// RegisterRoutes mounts the full route table on r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.POST("/requests", h.CreateRequest)
	r.GET("/requests", h.ListRequests)
	r.GET("/requests/:op_id", h.GetRequest)
	r.GET("/requests/:op_id/history", h.GetHistory)
	r.POST("/requests/:op_id/status", h.UpdateStatus)

	r.GET("/planning", h.Planning)
	r.POST("/assistant", h.Assist)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(200, gin.H{"ok": true})
}
