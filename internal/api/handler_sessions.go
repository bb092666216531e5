package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"delivery-options-backend/internal/model"
)

type createSessionRequest struct {
	Postcode     string `json:"postcode" binding:"required"`
	HouseNumber  string `json:"house_number" binding:"required"`
	FullAddress  string `json:"full_address" binding:"required"`
	DeliveryDate string `json:"delivery_date" binding:"required"` // dd-mm-yyyy
}

// CreateSession handles POST /api/sessions.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	date, err := model.ParseDate(req.DeliveryDate)
	if err != nil {
		badRequest(c, "invalid delivery_date, use dd-mm-yyyy")
		return
	}

	s, err := h.sessions.Create(model.Address{
		Postcode:     req.Postcode,
		HouseNumber:  req.HouseNumber,
		FullAddress:  req.FullAddress,
		DeliveryDate: date,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GetSession handles GET /api/sessions/:id.
func (h *Handler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DeleteSession handles DELETE /api/sessions/:id.
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Remove(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetHistory handles GET /api/sessions/:id/history. Records outlive the
// session, so the id is not checked against the registry.
func (h *Handler) GetHistory(c *gin.Context) {
	if h.store == nil {
		h.fail(c, errors.New("audit store is not configured"))
		return
	}
	records, err := h.store.ListAuditRecords(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = []model.AuditRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// GetShippingPrice handles GET /api/sessions/:id/shipping-price?base=.
func (h *Handler) GetShippingPrice(c *gin.Context) {
	base, err := strconv.ParseFloat(c.DefaultQuery("base", "0"), 64)
	if err != nil {
		badRequest(c, "invalid base price")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	price, err := s.ShippingPrice(base)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"base": base, "price": price})
}
