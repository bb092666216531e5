package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/session"
)

// respond writes the session snapshot after a successful operation.
func (h *Handler) respond(c *gin.Context, s *session.Session, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SelectTimeframe handles POST /api/sessions/:id/timeframes/:index/select.
func (h *Handler) SelectTimeframe(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid timeframe index")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.SelectTimeframe(index))
}

type selectLocationRequest struct {
	Type model.OptionType `json:"type" binding:"required"`
}

// SelectLocation handles POST /api/sessions/:id/locations/:code/select.
func (h *Handler) SelectLocation(c *gin.Context) {
	var req selectLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.SelectLocation(c.Param("code"), req.Type))
}

type phoneRequest struct {
	Number string `json:"number" binding:"required"`
}

// SubmitPhone handles POST /api/sessions/:id/phone.
func (h *Handler) SubmitPhone(c *gin.Context) {
	var req phoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.SubmitPhone(req.Number); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
}

// Reset handles POST /api/sessions/:id/reset.
func (h *Handler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.Reset())
}

// DeselectAll handles POST /api/sessions/:id/deselect.
func (h *Handler) DeselectAll(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.DeselectAll())
}
