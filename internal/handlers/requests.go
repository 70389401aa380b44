package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsdeck/netops-go-backend/internal/models"
	"github.com/opsdeck/netops-go-backend/internal/store"
)

type createRequestIn struct {
	Feature        string   `json:"feature" binding:"required"`
	Parameter      string   `json:"parameter" binding:"required"`
	Value          string   `json:"value" binding:"required"`
	Zone           string   `json:"zone" binding:"required"`
	Sites          []string `json:"sites" binding:"required"`
	DesiredDate    *string  `json:"desired_date"`
	PlannedDate    *string  `json:"planned_date"`
	Priority       string   `json:"priority"`
	InitialComment *string  `json:"initial_comment"`
}

type statusUpdateIn struct {
	Department  string  `json:"department" binding:"required"`
	ToStatus    string  `json:"to_status" binding:"required"`
	Comment     string  `json:"comment" binding:"required"`
	PlannedDate *string `json:"planned_date"`
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var body createRequestIn
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.Store.Create(c.Request.Context(), store.CreateParams{
		Feature:        body.Feature,
		Parameter:      body.Parameter,
		Value:          body.Value,
		Zone:           body.Zone,
		Sites:          body.Sites,
		DesiredDate:    body.DesiredDate,
		PlannedDate:    body.PlannedDate,
		Priority:       body.Priority,
		InitialComment: body.InitialComment,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) ListRequests(c *gin.Context) {
	status := c.DefaultQuery("status", "ALL")
	q := c.Query("q")

	requests, err := h.Store.List(c.Request.Context(), status, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *Handler) GetRequest(c *gin.Context) {
	req, err := h.Store.Get(c.Request.Context(), c.Param("op_id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	history := req.History
	if history == nil {
		history = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, models.RequestDetail{Request: *req, History: history})
}

func (h *Handler) GetHistory(c *gin.Context) {
	req, err := h.Store.Get(c.Request.Context(), c.Param("op_id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	history := req.History
	if history == nil {
		history = []models.HistoryEntry{}
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var body statusUpdateIn
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.Store.UpdateStatus(c.Request.Context(), c.Param("op_id"), store.StatusUpdateParams{
		Department:  body.Department,
		ToStatus:    body.ToStatus,
		Comment:     body.Comment,
		PlannedDate: body.PlannedDate,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// respondStoreError maps the store's error taxonomy onto HTTP statuses.
func respondStoreError(c *gin.Context, err error) {
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
