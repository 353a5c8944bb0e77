package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/reminder"
)

type CronHandler struct {
	reminders *reminder.SendReminders
	log       *zap.Logger
}

func NewCronHandler(reminders *reminder.SendReminders, log *zap.Logger) *CronHandler {
	return &CronHandler{reminders: reminders, log: log}
}

func (h *CronHandler) Reminders(c *gin.Context) {
	res, err := h.reminders.Execute(c.Request.Context())
	if err != nil {
		h.log.Error("cron job error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
