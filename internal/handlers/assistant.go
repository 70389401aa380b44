package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type assistantIn struct {
	Question string `json:"question" binding:"required"`
}

type assistantOut struct {
	Answer     string   `json:"answer"`
	References []string `json:"references"`
}

// Assist answers a free-text question about stored operations. The endpoint
// always responds 200 with a best-effort answer; assistant-side failures
// degrade inside the service, they are never surfaced here.
func (h *Handler) Assist(c *gin.Context) {
	var body assistantIn
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, refs := h.Assistant.Answer(c.Request.Context(), body.Question)
	c.JSON(http.StatusOK, assistantOut{Answer: answer, References: refs})
}
