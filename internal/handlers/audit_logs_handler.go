package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httpresp"
)

type AuditLogsHandler struct {
	logs *audit.Logger
	log  *zap.Logger
}

func NewAuditLogsHandler(logs *audit.Logger, log *zap.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{logs: logs, log: log}
}

// List accepts action, entity, user_id, from, to (YYYY-MM-DD), page and limit.
func (h *AuditLogsHandler) List(c *gin.Context) {
	page, err := h.logs.List(c.Request.Context(), audit.ParseFilter(c.Query))
	if err != nil {
		h.log.Error("audit list failed", zap.Error(err))
		httperr.Internal(c, "audit_list_failed", "Erro ao listar logs.")
		return
	}
	httpresp.OK(c, page)
}
