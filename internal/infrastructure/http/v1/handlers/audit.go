package handlers

import (
	"github.com/gin-gonic/gin"

	"anbar/internal/core/apperror"
	"anbar/internal/domain/audit"
)

var auditedEntities = map[string]bool{
	"document": true,
	"company":  true,
}

// AuditHandler serves the audit trail of documents and the company profile.
type AuditHandler struct {
	*BaseHandler
	reader audit.Reader
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, reader audit.Reader) *AuditHandler {
	return &AuditHandler{BaseHandler: base, reader: reader}
}

// History handles GET /audit/:entityType/:id
func (h *AuditHandler) History(c *gin.Context) {
	entityType := c.Param("entityType")
	if !auditedEntities[entityType] {
		h.Error(c, apperror.NewFieldValidation("entityType", "entity type is not audited").WithDetail("value", entityType))
		return
	}

	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entries, err := h.reader.History(c.Request.Context(), entityType, entityID, h.ParseIntQuery(c, "limit", 50))
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	h.OK(c, gin.H{"items": entries})
}
