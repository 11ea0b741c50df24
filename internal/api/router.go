package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fieldops-backend/internal/history"
	"fieldops-backend/internal/importer"
	"fieldops-backend/internal/ledger"
	"fieldops-backend/internal/mw"
	"fieldops-backend/internal/store"
)

// RouterConfig carries the tunables the router needs from the config
// file.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
	DefaultImageURL string
}

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, e *ledger.Engine, cfg RouterConfig, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = 10
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}

	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.ResponseCache(cacheStore, cfg.CacheTTL)

	projection := history.NewService(s)
	bulk := importer.NewImporter(e, s, cfg.DefaultImageURL)
	handler := NewHandler(s, e, projection, bulk, webpushOptions, cacheStore)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	{
		api.GET("/assets", caching, handler.GetAssets)
		api.POST("/assets", handler.PostAsset)
		api.GET("/assets/import/template", handler.GetImportTemplate)
		api.POST("/assets/import", handler.PostImport)
		api.GET("/assets/:id", caching, handler.GetAsset)
		api.DELETE("/assets/:id", handler.DeleteAsset)

		api.POST("/assets/:id/assign", handler.PostAssign)
		api.POST("/assets/:id/workshop", handler.PostWorkshop)
		api.POST("/assets/:id/status", handler.PostStatus)

		api.GET("/clients", caching, handler.GetClients)
		api.GET("/clients/:client_id/equipment", caching, handler.GetClientEquipment)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
