package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httpresp"
	"github.com/BruksfildServices01/jacare-do-corte/internal/middleware"
	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/account"
	"github.com/BruksfildServices01/jacare-do-corte/internal/validators"
)

type AuthHandler struct {
	auth *account.Auth
	log  *zap.Logger

	// checkDomain is off in tests; it resolves DNS
	checkDomain bool
}

func NewAuthHandler(auth *account.Auth, log *zap.Logger, checkDomain bool) *AuthHandler {
	return &AuthHandler{auth: auth, log: log, checkDomain: checkDomain}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name                 string `json:"name" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	Phone                string `json:"phone"`
	Password             string `json:"password" binding:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if h.checkDomain && !validators.IsEmailDomainValid(req.Email) {
		httperr.BadRequest(c, "invalid_email_domain", "O domínio do e-mail informado não parece ser válido.")
		return
	}

	res, err := h.auth.Register(c.Request.Context(), account.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Phone:                req.Phone,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.fail(c, "register", err)
		return
	}
	httpresp.Created(c, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	httpresp.OK(c, res)
}

func (h *AuthHandler) RequestCode(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	if err := h.auth.RequestCode(c.Request.Context(), req.Email); err != nil {
		h.fail(c, "otp", err)
		return
	}
	httpresp.OK(c, gin.H{"message": "Se o e-mail estiver cadastrado, enviamos um código de acesso."})
}

func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	res, err := h.auth.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.fail(c, "otp_verify", err)
		return
	}
	httpresp.OK(c, res)
}

func (h *AuthHandler) Demo(c *gin.Context) {
	res, err := h.auth.Demo()
	if err != nil {
		h.fail(c, "demo", err)
		return
	}
	httpresp.OK(c, res)
}

// Logout always answers 204; the client drops its state either way.
func (h *AuthHandler) Logout(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if err := h.auth.Logout(c.Request.Context(), caller); err != nil {
		h.log.Warn("logout incomplete", zap.String("user_id", caller.UserID), zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) fail(c *gin.Context, op string, err error) {
	if _, business := httperr.BusinessCode(err); !business {
		h.log.Error("auth failed", zap.String("op", op), zap.Error(err))
	}
	httperr.FromError(c, err, "auth_failed", err.Error())
}
