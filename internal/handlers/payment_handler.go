package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httpresp"
	"github.com/BruksfildServices01/jacare-do-corte/internal/middleware"
	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/account"
)

type PaymentHandler struct {
	payment *account.Payment
}

func NewPaymentHandler(payment *account.Payment) *PaymentHandler {
	return &PaymentHandler{payment: payment}
}

func (h *PaymentHandler) Instructions(c *gin.Context) {
	info, err := h.payment.Instructions(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		httperr.FromError(c, err, "payment_failed", "Erro ao carregar pagamento.")
		return
	}
	httpresp.OK(c, info)
}

func (h *PaymentHandler) Notify(c *gin.Context) {
	notice, err := h.payment.Notify(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		httperr.FromError(c, err, "payment_notify_failed", "Erro ao registrar pagamento.")
		return
	}
	httpresp.OK(c, notice)
}
