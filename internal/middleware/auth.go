package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/auth"
	"github.com/BruksfildServices01/jacare-do-corte/internal/domain/access"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/account"
)

const (
	ContextCaller = "caller"
	ContextUserID = "userID"
)

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware accepts "Authorization: Bearer <jwt>". Event streams
// cannot set headers, so ?access_token= is accepted as well.
func AuthMiddleware(secret string, revoked RevocationChecker, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c.GetHeader("Authorization"))
		if raw == "" {
			raw = c.Query("access_token")
		}
		if raw == "" {
			unauthenticated(c, "missing_authorization_header")
			return
		}

		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			unauthenticated(c, "invalid_token")
			return
		}

		if claims.ID != "" {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// revocation store down: the signature still holds
				log.Warn("revocation check failed", zap.Error(err))
			}
			if isRevoked {
				unauthenticated(c, "token_revoked")
				return
			}
		}

		caller := account.Caller{
			UserID:  claims.UserID,
			Email:   claims.Email,
			Role:    claims.Role,
			TokenID: claims.ID,
		}
		if claims.ExpiresAt != nil {
			caller.ExpiresAt = claims.ExpiresAt.Time
		}

		c.Set(ContextCaller, caller)
		c.Set(ContextUserID, caller.UserID)

		c.Next()
	}
}

// CallerFrom is only valid behind AuthMiddleware.
func CallerFrom(c *gin.Context) account.Caller {
	return c.MustGet(ContextCaller).(account.Caller)
}

func bearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthenticated(c *gin.Context, code string) {
	d := access.Decide(access.Subject{}, access.Surface{})
	httperr.Abort(c, http.StatusUnauthorized, code, "Sessão inválida ou expirada.", d.Redirect)
}
