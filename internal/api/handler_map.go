package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"delivery-options-backend/internal/mapview"
	"delivery-options-backend/internal/session"
)

type filtersRequest struct {
	Early   bool `json:"early"`
	Evening bool `json:"evening"`
}

// SetFilters handles PUT /api/sessions/:id/filters.
func (h *Handler) SetFilters(c *gin.Context) {
	var req filtersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.SetFilters(req.Early, req.Evening))
}

// SelectMarker handles POST /api/sessions/:id/map/markers/:code/select.
func (h *Handler) SelectMarker(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.SelectMarker(c.Param("code")))
}

// Hover handles POST /api/sessions/:id/map/markers/:code/hover.
func (h *Handler) Hover(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.Hover(c.Param("code")))
}

// Unhover handles POST /api/sessions/:id/map/markers/:code/unhover.
func (h *Handler) Unhover(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.Unhover(c.Param("code")))
}

// Viewport handles POST /api/sessions/:id/map/viewport.
func (h *Handler) Viewport(c *gin.Context) {
	var ev session.ViewportEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c, "invalid request")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.HandleViewport(ev))
}

type searchRequest struct {
	Results   []mapview.GeocodeResult `json:"results"`
	AddMarker bool                    `json:"add_marker"`
	Refetch   bool                    `json:"refetch"`
}

// Search handles POST /api/sessions/:id/map/search with geocoder results.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	moved, err := s.ApplySearchResults(req.Results, mapview.SearchOptions{
		AddMarker: req.AddMarker,
		Refetch:   req.Refetch,
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
	c.JSON(http.StatusOK, gin.H{"moved": moved, "session": snap})
}

// SaveMapLocation handles POST /api/sessions/:id/map/save.
func (h *Handler) SaveMapLocation(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respond(c, s, s.SaveMapLocation())
}
