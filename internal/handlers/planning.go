package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Planning lists PLANNED requests ordered by planned date, undated last.
func (h *Handler) Planning(c *gin.Context) {
	requests, err := h.Store.ListPlanning(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, requests)
}
