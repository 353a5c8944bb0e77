package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httpresp"
	"github.com/BruksfildServices01/jacare-do-corte/internal/imaging"
	"github.com/BruksfildServices01/jacare-do-corte/internal/middleware"
	"github.com/BruksfildServices01/jacare-do-corte/internal/session"
	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/account"
)

type MeHandler struct {
	profile   *account.Profile
	hub       *session.Hub
	log       *zap.Logger
	heartbeat time.Duration
}

func NewMeHandler(profile *account.Profile, hub *session.Hub, log *zap.Logger) *MeHandler {
	return &MeHandler{
		profile:   profile,
		hub:       hub,
		log:       log,
		heartbeat: 25 * time.Second,
	}
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

type PreferencesRequest struct {
	DarkMode      *bool `json:"dark_mode" binding:"required"`
	Notifications *bool `json:"notifications" binding:"required"`
}

// ======================================================
// SESSION
// ======================================================

func (h *MeHandler) Session(c *gin.Context) {
	v, err := h.profile.Session(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		httperr.FromError(c, err, "session_failed", "Erro ao carregar sessão.")
		return
	}
	httpresp.OK(c, v)
}

func (h *MeHandler) Access(c *gin.Context) {
	v, err := h.profile.Access(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		httperr.FromError(c, err, "access_failed", "Erro ao verificar acesso.")
		return
	}
	httpresp.OK(c, v)
}

// Events streams the caller's session changes as server-sent events,
// starting with the current access state.
func (h *MeHandler) Events(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	ctx := c.Request.Context()

	events, cancel := h.hub.Subscribe(caller.UserID)
	defer cancel()

	current, err := h.profile.Access(ctx, caller)
	if err != nil {
		httperr.FromError(c, err, "access_failed", "Erro ao verificar acesso.")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("access", current)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now()})
			return true
		}
	})
}

// ======================================================
// PROFILE
// ======================================================

func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	u, err := h.profile.Update(c.Request.Context(), middleware.CallerFrom(c), req.Name, req.Phone)
	if err != nil {
		httperr.FromError(c, err, "profile_update_failed", "Erro ao atualizar perfil.")
		return
	}
	httpresp.OK(c, u)
}

func (h *MeHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, imaging.MaxUploadBytes+1<<20)

	file, _, err := c.Request.FormFile("avatar")
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Envie a imagem no campo avatar.")
		return
	}
	defer file.Close()

	caller := middleware.CallerFrom(c)
	url, err := h.profile.UploadAvatar(c.Request.Context(), caller, file)
	if err != nil {
		h.log.Warn("avatar upload failed", zap.String("user_id", caller.UserID), zap.Error(err))
		httperr.FromError(c, err, "avatar_upload_failed", "Erro ao enviar imagem.")
		return
	}
	httpresp.OK(c, gin.H{"avatar_url": url})
}

// ======================================================
// PREFERENCES
// ======================================================

func (h *MeHandler) GetPreferences(c *gin.Context) {
	p, err := h.profile.Preferences(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		httperr.FromError(c, err, "preferences_failed", "Erro ao carregar preferências.")
		return
	}
	httpresp.OK(c, p)
}

func (h *MeHandler) PutPreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	p, err := h.profile.SavePreferences(c.Request.Context(), middleware.CallerFrom(c), dto.Preferences{
		DarkMode:      *req.DarkMode,
		Notifications: *req.Notifications,
	})
	if err != nil {
		httperr.FromError(c, err, "preferences_failed", "Erro ao salvar preferências.")
		return
	}
	httpresp.OK(c, p)
}
