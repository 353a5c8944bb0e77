package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httpresp"
	"github.com/BruksfildServices01/jacare-do-corte/internal/middleware"
	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/account"
	ucAppointment "github.com/BruksfildServices01/jacare-do-corte/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AdminHandler struct {
	today       *ucAppointment.ListTodayAppointments
	setStatus   *ucAppointment.SetAppointmentStatus
	setAccess   *account.SetAccess
	automations *account.Automations
	log         *zap.Logger
}

func NewAdminHandler(
	today *ucAppointment.ListTodayAppointments,
	setStatus *ucAppointment.SetAppointmentStatus,
	setAccess *account.SetAccess,
	automations *account.Automations,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		today:       today,
		setStatus:   setStatus,
		setAccess:   setAccess,
		automations: automations,
		log:         log,
	}
}

type SetAccessRequest struct {
	Status string `json:"status" binding:"required"`
}

type ToggleAutomationRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ======================================================
// APPOINTMENTS
// ======================================================

func (h *AdminHandler) Today(c *gin.Context) {
	summary, err := h.today.Execute(c.Request.Context())
	if err != nil {
		h.log.Error("today listing failed", zap.Error(err))
		httperr.FromError(c, err, "list_failed", "Erro ao listar agendamentos.")
		return
	}
	httpresp.OK(c, summary)
}

func (h *AdminHandler) Confirm(c *gin.Context) {
	h.patchStatus(c, domain.StatusConfirmed)
}

func (h *AdminHandler) Cancel(c *gin.Context) {
	h.patchStatus(c, domain.StatusCancelled)
}

func (h *AdminHandler) patchStatus(c *gin.Context, to domain.Status) {
	caller := middleware.CallerFrom(c)

	res, err := h.setStatus.Execute(c.Request.Context(), caller.UserID, c.Param("id"), to)
	if err != nil {
		httperr.FromError(c, err, "status_update_failed", "Erro ao atualizar agendamento.")
		return
	}
	httpresp.OK(c, res)
}

// ======================================================
// ACCESS
// ======================================================

func (h *AdminHandler) SetUserAccess(c *gin.Context) {
	var req SetAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	res, err := h.setAccess.Execute(c.Request.Context(), middleware.CallerFrom(c).UserID, c.Param("id"), req.Status)
	if err != nil {
		httperr.FromError(c, err, "access_update_failed", "Erro ao atualizar acesso.")
		return
	}
	httpresp.OK(c, res)
}

// ======================================================
// AUTOMATIONS
// ======================================================

func (h *AdminHandler) ListAutomations(c *gin.Context) {
	list, err := h.automations.List(c.Request.Context())
	if err != nil {
		httperr.FromError(c, err, "automations_failed", "Erro ao listar automações.")
		return
	}
	httpresp.List(c, list)
}

func (h *AdminHandler) ToggleAutomation(c *gin.Context) {
	var req ToggleAutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	a, err := h.automations.Toggle(c.Request.Context(), middleware.CallerFrom(c).UserID, c.Param("key"), *req.Active)
	if err != nil {
		httperr.FromError(c, err, "automation_update_failed", "Erro ao atualizar automação.")
		return
	}
	httpresp.OK(c, a)
}
