package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/jacare-do-corte/internal/app"
	"github.com/BruksfildServices01/jacare-do-corte/internal/domain/access"
	"github.com/BruksfildServices01/jacare-do-corte/internal/handlers"
	"github.com/BruksfildServices01/jacare-do-corte/internal/middleware"
	"github.com/BruksfildServices01/jacare-do-corte/internal/timezone"
	ucAccount "github.com/BruksfildServices01/jacare-do-corte/internal/usecase/account"
	ucAppointment "github.com/BruksfildServices01/jacare-do-corte/internal/usecase/appointment"
	ucReminder "github.com/BruksfildServices01/jacare-do-corte/internal/usecase/reminder"
)

func RegisterRoutes(r *gin.Engine, ct *app.Container, limiter *middleware.RateLimiter) {
	cfg := ct.Config
	log := ct.Log
	loc := timezone.Location(cfg.Timezone)

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// USE CASES / APPOINTMENTS
	// ======================================================
	bookUC := ucAppointment.NewBookAppointment(
		ct.Appointments,
		ct.Catalog,
		ct.Outbox,
		ct.Audit,
		log,
		cfg.TimeSlots,
		loc,
	)
	catalogUC := ucAppointment.NewGetCatalog(ct.Catalog, log, cfg.TimeSlots)
	listMineUC := ucAppointment.NewListMyAppointments(ct.Appointments, ct.Outbox, log)
	cancelMineUC := ucAppointment.NewCancelMyAppointment(ct.Appointments, ct.Outbox, ct.Audit)
	todayUC := ucAppointment.NewListTodayAppointments(ct.Appointments, ct.Outbox, log, loc)
	setStatusUC := ucAppointment.NewSetAppointmentStatus(ct.Appointments, ct.Outbox, ct.Audit, log)

	// ======================================================
	// USE CASES / ACCOUNT
	// ======================================================
	authUC := ucAccount.NewAuth(
		ct.Accounts,
		ct.Codes,
		ct.Revocations,
		ct.Publisher,
		ct.Audit,
		log,
		cfg.JWTSecret,
		cfg.IsAdminEmail,
	)
	profileUC := ucAccount.NewProfile(ct.Accounts, ct.Storage, ct.Audit)
	paymentUC := ucAccount.NewPayment(ct.Accounts, ct.Publisher, ct.Audit, log, ucAccount.PaymentSettings{
		PixKey:         cfg.PixKey,
		Price:          cfg.AppPrice,
		WhatsAppNumber: cfg.WhatsAppNumber,
	})
	setAccessUC := ucAccount.NewSetAccess(ct.Accounts, ct.Publisher, ct.Audit, log)
	automationsUC := ucAccount.NewAutomations(ct.Automations, ct.Audit)

	remindersUC := ucReminder.NewSendReminders(ct.Appointments, ct.Automations, ct.Claims, log, loc)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(authUC, log, true)
	meHandler := handlers.NewMeHandler(profileUC, ct.Hub, log)
	appointmentHandler := handlers.NewAppointmentHandler(bookUC, catalogUC, listMineUC, cancelMineUC, log)
	paymentHandler := handlers.NewPaymentHandler(paymentUC)
	adminHandler := handlers.NewAdminHandler(todayUC, setStatusUC, setAccessUC, automationsUC, log)
	auditLogsHandler := handlers.NewAuditLogsHandler(ct.AuditLog, log)
	cronHandler := handlers.NewCronHandler(remindersUC, log)

	api := r.Group("/api")

	// ------------------------------
	// AUTH (público, com limite por IP)
	// ------------------------------
	limited := api.Group("/auth", middleware.RateLimit(limiter))
	{
		limited.POST("/register", authHandler.Register)
		limited.POST("/login", authHandler.Login)
		limited.POST("/otp", authHandler.RequestCode)
		limited.POST("/otp/verify", authHandler.VerifyCode)
	}
	api.POST("/auth/demo", authHandler.Demo)

	// ------------------------------
	// CATÁLOGO (público)
	// ------------------------------
	api.GET("/services", appointmentHandler.Services)
	api.GET("/barbers", appointmentHandler.Barbers)
	api.GET("/slots", appointmentHandler.Slots)

	// ------------------------------
	// CRON
	// ------------------------------
	api.GET("/cron/reminders", middleware.CronSecret(cfg.CronSecret), cronHandler.Reminders)

	// ------------------------------
	// SESSÃO (sem exigir pagamento)
	// ------------------------------
	secured := api.Group("/", middleware.AuthMiddleware(cfg.JWTSecret, ct.Revocations, log))

	exempt := secured.Group("/", middleware.AccessGate(ct.Accounts, access.Surface{PaymentExempt: true}, log))
	{
		exempt.POST("/auth/logout", authHandler.Logout)

		exempt.GET("/session", meHandler.Session)
		exempt.GET("/session/events", meHandler.Events)
		exempt.GET("/access", meHandler.Access)

		exempt.GET("/payment", paymentHandler.Instructions)
		exempt.POST("/payment/notify", paymentHandler.Notify)
	}

	// ------------------------------
	// APP (sessão + pagamento aprovado)
	// ------------------------------
	gated := secured.Group("/", middleware.AccessGate(ct.Accounts, access.Surface{}, log))
	{
		gated.POST("/appointments", appointmentHandler.Book)
		gated.GET("/me/appointments", appointmentHandler.ListMine)
		gated.DELETE("/me/appointments/:id", appointmentHandler.CancelMine)

		gated.PATCH("/me", meHandler.UpdateProfile)
		gated.POST("/me/avatar", meHandler.UploadAvatar)
		gated.GET("/me/preferences", meHandler.GetPreferences)
		gated.PUT("/me/preferences", meHandler.PutPreferences)
	}

	// ------------------------------
	// ADMIN
	// ------------------------------
	admin := secured.Group("/admin", middleware.AdminOnly())
	{
		admin.GET("/appointments/today", adminHandler.Today)
		admin.PATCH("/appointments/:id/confirm", adminHandler.Confirm)
		admin.PATCH("/appointments/:id/cancel", adminHandler.Cancel)

		admin.PATCH("/users/:id/access", adminHandler.SetUserAccess)

		admin.GET("/automations", adminHandler.ListAutomations)
		admin.PATCH("/automations/:key", adminHandler.ToggleAutomation)

		admin.GET("/audit-logs", auditLogsHandler.List)
	}
}

// SweepLimiter drops idle rate-limit buckets until stop closes.
func SweepLimiter(limiter *middleware.RateLimiter, stop <-chan struct{}) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			limiter.Sweep(3 * time.Minute)
		}
	}
}
