package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"delivery-options-backend/internal/carrier"
)

// GetMethods handles GET /api/carrier/methods.
func (h *Handler) GetMethods(c *gin.Context) {
	current, err := carrier.CurrentMethod(h.cfg.Carrier.RateType)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"methods": carrier.Methods(),
		"current": current,
	})
}

// GetTrackAndTrace handles GET /api/carrier/track/:barcode?country=&postcode=.
func (h *Handler) GetTrackAndTrace(c *gin.Context) {
	var dest carrier.Destination
	if err := c.ShouldBindQuery(&dest); err != nil {
		badRequest(c, "invalid destination")
		return
	}
	barcode := c.Param("barcode")
	c.JSON(http.StatusOK, gin.H{
		"barcode": barcode,
		"url":     carrier.TrackAndTraceURL(h.cfg.Carrier.TrackTraceBaseURL, barcode, dest),
	})
}
