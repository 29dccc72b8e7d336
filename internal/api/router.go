package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/plundell/stabelo-elevator/config"
	"github.com/plundell/stabelo-elevator/internal/mw"
)

// NewRouter creates and configures a new Gin router around the handler.
func NewRouter(h *Handler, server config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(server.RateLimitPerSec), server.RateLimitBurst)

	cacheTTL := time.Duration(server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*time.Minute)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/rides", h.PostRide)

		api.GET("/elevators", h.GetElevators)
		api.GET("/elevators/:elevator_id/state", h.GetElevatorState)
		api.GET("/elevators/:elevator_id/buttons", h.GetElevatorButtons)
		api.GET("/state", caching, h.GetAllStates)
		api.GET("/buttons", caching, h.GetAllButtons)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
