// Command reminders runs the reminder job once, for schedulers that
// prefer a process over calling the HTTP endpoint.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/app"
	"github.com/BruksfildServices01/jacare-do-corte/internal/config"
	"github.com/BruksfildServices01/jacare-do-corte/internal/logger"
	"github.com/BruksfildServices01/jacare-do-corte/internal/timezone"
	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/reminder"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ct, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer ct.Close()

	job := reminder.NewSendReminders(
		ct.Appointments,
		ct.Automations,
		ct.Claims,
		log,
		timezone.Location(cfg.Timezone),
	)

	res, err := job.Execute(ctx)
	if err != nil {
		log.Error("cron job error", zap.Error(err))
		ct.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}
