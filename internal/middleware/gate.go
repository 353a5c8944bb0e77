package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/domain/access"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

type AccessReader interface {
	GetAccess(ctx context.Context, userID string) (*models.UserAccess, error)
}

// AccessGate guards a route group. It runs after AuthMiddleware; the
// payment-exempt flag belongs to the group, not to the URL.
func AccessGate(store AccessReader, surface access.Surface, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)

		subject := access.Subject{
			Authenticated: true,
			Admin:         caller.IsAdmin(),
			Demo:          caller.IsDemo(),
		}

		if !subject.Admin && !subject.Demo {
			a, err := store.GetAccess(c.Request.Context(), caller.UserID)
			if err != nil {
				log.Error("access lookup failed", zap.String("user_id", caller.UserID), zap.Error(err))
				httperr.Abort(c, http.StatusInternalServerError, "access_lookup_failed", "Erro ao verificar acesso.", "")
				return
			}
			status, err := access.ParsePaymentStatus(a.Status)
			if err != nil {
				status = access.PaymentPending
			}
			subject.Status = status
		}

		d := access.Decide(subject, surface)
		if !d.Allow {
			httperr.Abort(c, http.StatusPaymentRequired, "payment_required", "Acesso aguardando aprovação do pagamento.", d.Redirect)
			return
		}

		c.Next()
	}
}

// AdminOnly runs after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CallerFrom(c).IsAdmin() {
			httperr.Abort(c, http.StatusForbidden, "forbidden", "Acesso restrito ao administrador.", "")
			return
		}
		c.Next()
	}
}
