package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldops-backend/internal/history"
)

// GetClients handles GET /api/clients — the lookup list backing the
// assignment form. Client management itself lives in another subsystem.
func (h *Handler) GetClients(c *gin.Context) {
	clients, err := h.store.ListClients(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetClientEquipment handles GET /api/clients/:client_id/equipment —
// every assignment period involving the client, newest first, with the
// active one tagged.
func (h *Handler) GetClientEquipment(c *gin.Context) {
	records, err := h.history.ClientHistory(c.Request.Context(), c.Param("client_id"))
	if err != nil {
		fail(c, err)
		return
	}
	if records == nil {
		records = []history.ClientAssignment{}
	}
	c.JSON(http.StatusOK, records)
}
