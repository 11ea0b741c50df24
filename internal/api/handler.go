package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"fieldops-backend/internal/history"
	"fieldops-backend/internal/importer"
	"fieldops-backend/internal/ledger"
	"fieldops-backend/internal/mw"
	"fieldops-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	engine   *ledger.Engine
	history  *history.Service
	importer *importer.Importer
	webpush  *webpush.Options
	cache    *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, e *ledger.Engine, h *history.Service, im *importer.Importer, webpushOptions *webpush.Options, cacheStore *cache.Cache) *Handler {
	return &Handler{
		store:    s,
		engine:   e,
		history:  h,
		importer: im,
		webpush:  webpushOptions,
		cache:    cacheStore,
	}
}

// actor extracts the acting operator identity from the request. The
// engine never reads a global user; auth itself lives upstream of this
// service and forwards the identity as headers.
func actor(c *gin.Context) (name string, ok bool) {
	name = c.GetHeader("X-Actor")
	if name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Actor header is required"})
		return "", false
	}
	return name, true
}

func actorRole(c *gin.Context) string {
	return c.GetHeader("X-Actor-Role")
}

// bust drops cached GET responses after a successful write.
func (h *Handler) bust() {
	if h.cache != nil {
		mw.Bust(h.cache)
	}
}

// fail maps ledger and store errors onto HTTP statuses.
func fail(c *gin.Context, err error) {
	var vErr *ledger.ValidationError
	switch {
	case errors.Is(err, store.ErrAssetNotFound), errors.Is(err, store.ErrClientNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &vErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrConcurrentModification):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
