package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httpresp"
	"github.com/BruksfildServices01/jacare-do-corte/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/jacare-do-corte/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	book    *ucAppointment.BookAppointment
	catalog *ucAppointment.GetCatalog
	mine    *ucAppointment.ListMyAppointments
	cancel  *ucAppointment.CancelMyAppointment
	log     *zap.Logger
}

func NewAppointmentHandler(
	book *ucAppointment.BookAppointment,
	catalog *ucAppointment.GetCatalog,
	mine *ucAppointment.ListMyAppointments,
	cancel *ucAppointment.CancelMyAppointment,
	log *zap.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		book:    book,
		catalog: catalog,
		mine:    mine,
		cancel:  cancel,
		log:     log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

// No binding tags: a missing field must surface as missing_fields,
// the message the schedule screen shows.
type BookAppointmentRequest struct {
	ServiceID       uint   `json:"service_id"`
	BarberID        uint   `json:"barber_id"`
	Day             int    `json:"day"`
	Time            string `json:"time"`
	ClientRequestID string `json:"client_request_id"`
}

// ======================================================
// CATALOG
// ======================================================

func (h *AppointmentHandler) Services(c *gin.Context) {
	cat := h.catalog.Execute(c.Request.Context())
	httpresp.OK(c, gin.H{"services": cat.Services, "fallback": cat.Fallback})
}

func (h *AppointmentHandler) Barbers(c *gin.Context) {
	cat := h.catalog.Execute(c.Request.Context())
	httpresp.OK(c, gin.H{"barbers": cat.Barbers, "fallback": cat.Fallback})
}

func (h *AppointmentHandler) Slots(c *gin.Context) {
	cat := h.catalog.Execute(c.Request.Context())
	httpresp.OK(c, gin.H{"slots": cat.Slots})
}

// ======================================================
// BOOK
// ======================================================

func (h *AppointmentHandler) Book(c *gin.Context) {
	caller := middleware.CallerFrom(c)

	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	res, err := h.book.Execute(c.Request.Context(), domain.BookingInput{
		UserID:    caller.UserID,
		ServiceID: req.ServiceID,
		BarberID:  req.BarberID,
		Day:       req.Day,
		Time:      req.Time,
		RequestID: req.ClientRequestID,
	})
	if err != nil {
		h.log.Error("booking failed", zap.String("user_id", caller.UserID), zap.Error(err))
		httperr.FromError(c, err, "booking_failed", "Erro ao criar agendamento.")
		return
	}

	if res.Persisted == ucAppointment.PersistedFallback {
		httpresp.Accepted(c, res)
		return
	}
	httpresp.Created(c, res)
}

// ======================================================
// MINE
// ======================================================

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	caller := middleware.CallerFrom(c)

	list, err := h.mine.Execute(c.Request.Context(), caller.UserID)
	if err != nil {
		httperr.FromError(c, err, "list_failed", "Erro ao listar agendamentos.")
		return
	}
	httpresp.List(c, list)
}

func (h *AppointmentHandler) CancelMine(c *gin.Context) {
	caller := middleware.CallerFrom(c)

	if err := h.cancel.Execute(c.Request.Context(), caller.UserID, c.Param("id")); err != nil {
		httperr.FromError(c, err, "cancel_failed", "Erro ao cancelar agendamento.")
		return
	}
	c.Status(http.StatusNoContent)
}
