package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldops-backend/internal/ledger"
	"fieldops-backend/internal/model"
)

type assignRequest struct {
	ClientID     string `json:"clientId"`
	SiteName     string `json:"siteName"`
	OperatorName string `json:"operatorName" binding:"required"`
	ApproverName string `json:"approverName" binding:"required"`
	Notes        string `json:"notes"`
	EvidenceURL  string `json:"evidenceUrl"`
}

// PostAssign handles POST /api/assets/:id/assign. When a client ID is
// given, the site name is resolved from the client record so the record
// carries a consistent display-name snapshot.
func (h *Handler) PostAssign(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	siteName := req.SiteName
	if req.ClientID != "" {
		client, err := h.store.GetClient(c.Request.Context(), req.ClientID)
		if err != nil {
			fail(c, err)
			return
		}
		siteName = client.Name
	}

	asset, err := h.engine.Assign(c.Request.Context(), c.Param("id"), ledger.AssignIntent{
		ClientID:     req.ClientID,
		SiteName:     siteName,
		OperatorName: req.OperatorName,
		ApproverName: req.ApproverName,
		Notes:        req.Notes,
		EvidenceURL:  req.EvidenceURL,
	}, time.Now().UTC(), who)
	if err != nil {
		fail(c, err)
		return
	}
	h.bust()
	c.JSON(http.StatusOK, asset)
}

type workshopRequest struct {
	WorkshopName   string `json:"workshopName" binding:"required"`
	ReceivedByName string `json:"receivedByName" binding:"required"`
	Reason         string `json:"reason" binding:"required"`
	Notes          string `json:"notes"`
	EvidenceURL    string `json:"evidenceUrl"`
}

// PostWorkshop handles POST /api/assets/:id/workshop.
func (h *Handler) PostWorkshop(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var req workshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	asset, err := h.engine.SendToWorkshop(c.Request.Context(), c.Param("id"), ledger.WorkshopIntent{
		WorkshopName:   req.WorkshopName,
		ReceivedByName: req.ReceivedByName,
		Reason:         req.Reason,
		Notes:          req.Notes,
		EvidenceURL:    req.EvidenceURL,
	}, time.Now().UTC(), who)
	if err != nil {
		fail(c, err)
		return
	}
	h.bust()
	c.JSON(http.StatusOK, asset)
}

type changeStatusRequest struct {
	NewStatus model.AssetStatus `json:"newStatus" binding:"required"`
	Reason    string            `json:"reason"`
}

// PostStatus handles POST /api/assets/:id/status — the direct moves to
// Available or Inactive. Deactivation is restricted here, not in the
// engine: the engine stays role-agnostic.
func (h *Handler) PostStatus(c *gin.Context) {
	who, ok := actor(c)
	if !ok {
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.NewStatus == model.StatusInactive && actorRole(c) != "developer" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "deactivation requires the developer role"})
		return
	}

	asset, err := h.engine.ChangeStatus(c.Request.Context(), c.Param("id"), req.NewStatus, req.Reason, time.Now().UTC(), who)
	if err != nil {
		fail(c, err)
		return
	}
	h.bust()
	c.JSON(http.StatusOK, asset)
}
