package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldops-backend/internal/ledger"
	"fieldops-backend/internal/model"
)

type createAssetRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	SerialNumber string `json:"serialNumber" binding:"required"`
	ImageURL     string `json:"imageUrl"`
}

// PostAsset handles POST /api/assets.
func (h *Handler) PostAsset(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.engine.Create(c.Request.Context(), ledger.CreateIntent{
		Name:         req.Name,
		Description:  req.Description,
		SerialNumber: req.SerialNumber,
		ImageURL:     req.ImageURL,
	}, time.Now().UTC(), who)
	if err != nil {
		fail(c, err)
		return
	}
	h.bust()
	c.JSON(http.StatusCreated, asset)
}

// assetSummary is the flattened list row: the aggregate's descriptive
// fields plus the derived active assignment.
type assetSummary struct {
	model.Asset
	Assignment *model.AssignmentRecord `json:"assignment,omitempty"`
}

// GetAssets handles GET /api/assets.
func (h *Handler) GetAssets(c *gin.Context) {
	assets, err := h.store.LoadAllAssets(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]assetSummary, 0, len(assets))
	for i := range assets {
		out = append(out, assetSummary{
			Asset:      assets[i],
			Assignment: assets[i].ActiveAssignment(),
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetAsset handles GET /api/assets/:id — the full timeline view.
func (h *Handler) GetAsset(c *gin.Context) {
	timeline, err := h.history.AssetTimeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, timeline)
}

// DeleteAsset handles DELETE /api/assets/:id. Deletion is terminal and
// not audited.
func (h *Handler) DeleteAsset(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	if err := h.engine.Delete(c.Request.Context(), c.Param("id"), who); err != nil {
		fail(c, err)
		return
	}
	h.bust()
	c.Status(http.StatusNoContent)
}
