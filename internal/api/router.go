package api

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"delivery-options-backend/config"
	"delivery-options-backend/internal/mw"
	"delivery-options-backend/internal/session"
	"delivery-options-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(sessions *session.Registry, s store.Store, cfg *config.Config, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(mw.Logger(log), gin.Recovery())

	handler := NewHandler(sessions, s, cfg, log)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, log)

	cacheStore := cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.Server.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/sessions", handler.CreateSession)

		sess := api.Group("/sessions/:id")
		{
			sess.GET("", handler.GetSession)
			sess.DELETE("", handler.DeleteSession)
			sess.GET("/history", handler.GetHistory)
			sess.GET("/shipping-price", handler.GetShippingPrice)

			sess.POST("/timeframes/:index/select", handler.SelectTimeframe)
			sess.POST("/locations/:code/select", handler.SelectLocation)
			sess.POST("/phone", handler.SubmitPhone)
			sess.POST("/reset", handler.Reset)
			sess.POST("/deselect", handler.DeselectAll)
			sess.PUT("/filters", handler.SetFilters)

			sess.POST("/map/markers/:code/select", handler.SelectMarker)
			sess.POST("/map/markers/:code/hover", handler.Hover)
			sess.POST("/map/markers/:code/unhover", handler.Unhover)
			sess.POST("/map/viewport", handler.Viewport)
			sess.POST("/map/search", handler.Search)
			sess.POST("/map/save", handler.SaveMapLocation)
		}

		api.GET("/carrier/methods", caching, handler.GetMethods)
		api.GET("/carrier/track/:barcode", caching, handler.GetTrackAndTrace)
	}

	return r
}
