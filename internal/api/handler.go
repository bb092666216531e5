package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"delivery-options-backend/config"
	"delivery-options-backend/internal/mapview"
	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/parse"
	"delivery-options-backend/internal/selection"
	"delivery-options-backend/internal/session"
	"delivery-options-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	sessions *session.Registry
	store    store.Store
	cfg      *config.Config
	log      *zap.Logger
}

// NewHandler creates a new API handler. The store may be nil, in which case
// session history is unavailable.
func NewHandler(sessions *session.Registry, s store.Store, cfg *config.Config, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		sessions: sessions,
		store:    s,
		cfg:      cfg,
		log:      log,
	}
}

// session resolves the :id parameter, writing a 404 when it is unknown.
func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

// fail maps a domain error onto a status code and aborts the request.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrUnknownTimeframe),
		errors.Is(err, session.ErrUnknownLocation),
		errors.Is(err, mapview.ErrUnknownMarker):
		return http.StatusNotFound
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	case errors.Is(err, model.ErrInvalidAddress),
		errors.Is(err, session.ErrUnknownViewportEvent):
		return http.StatusBadRequest
	case errors.Is(err, selection.ErrTypeNotOffered),
		errors.Is(err, selection.ErrNotLocationType),
		errors.Is(err, session.ErrNoMapSelection),
		errors.Is(err, parse.ErrInvalidPhone):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
