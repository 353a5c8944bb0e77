package outbox

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

// Remote is the store the replay pushes to. CreateAppointment must be
// idempotent on the appointment id.
type Remote interface {
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
	DeleteAppointmentForUser(ctx context.Context, id, userID string) (bool, error)
}

// settleRounds bounds how often one entry is re-pushed within a pass
// when it keeps changing underneath the replay.
const settleRounds = 3

var errStale = errors.New("outbox: stale entry")

type Replayer struct {
	store    Store
	remote   Remote
	log      *zap.Logger
	interval time.Duration
	maxDelay time.Duration
	now      func() time.Time
}

func NewReplayer(store Store, remote Remote, log *zap.Logger, interval time.Duration) *Replayer {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Replayer{
		store:    store,
		remote:   remote,
		log:      log,
		interval: interval,
		maxDelay: 30 * time.Minute,
		now:      time.Now,
	}
}

// Run replays on every tick until ctx is done.
func (r *Replayer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.ReplayOnce(ctx); err != nil {
				r.log.Warn("outbox replay failed", zap.Error(err))
			}
		}
	}
}

// ReplayOnce pushes every due entry to the remote store and returns how
// many left the outbox. Cancelled entries are pushed regardless of
// their backoff; parked ones only once cancelled.
func (r *Replayer) ReplayOnce(ctx context.Context) (int, error) {
	entries, err := r.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := r.now()
	settled := 0

	for _, e := range entries {
		if !e.Deleted && (e.Parked || now.Before(e.NextAttemptAt)) {
			continue
		}

		done, err := r.settle(ctx, e)
		if err != nil {
			return settled, err
		}
		if done {
			settled++
		}
	}

	return settled, nil
}

// settle pushes e and drops it from the outbox if nobody changed it in
// the meantime. A newer version is re-read and pushed again as an
// update or a delete.
func (r *Replayer) settle(ctx context.Context, e Entry) (bool, error) {
	created := false

	for round := 0; round < settleRounds; round++ {
		if err := r.push(ctx, e, created); err != nil {
			return false, r.deferEntry(ctx, e, err)
		}
		if !e.Deleted {
			created = true
		}

		removed, err := r.store.RemoveIf(ctx, e.ID(), e.Version)
		if err != nil {
			return false, err
		}
		if removed {
			r.log.Info("outbox entry replayed",
				zap.String("appointment_id", e.ID()),
				zap.Bool("deleted", e.Deleted),
				zap.Int("attempts", e.Attempts+1),
			)
			return true, nil
		}

		cur, err := r.store.Get(ctx, e.ID())
		if errors.Is(err, ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		e = *cur
	}

	// still changing; the next pass picks it up
	return false, nil
}

func (r *Replayer) push(ctx context.Context, e Entry, created bool) error {
	ap := e.Appointment

	if e.Deleted {
		_, err := r.remote.DeleteAppointmentForUser(ctx, ap.ID, ap.UserID)
		return err
	}

	if !created {
		if err := r.remote.CreateAppointment(ctx, &ap); err != nil {
			return err
		}
		if !e.Patched {
			return nil
		}
	}
	return r.remote.UpdateAppointment(ctx, &ap)
}

// deferEntry records the failed attempt on the version that was pushed.
// Constraint violations will not heal by retrying, so the entry is
// parked for an admin instead.
func (r *Replayer) deferEntry(ctx context.Context, e Entry, pushErr error) error {
	now := r.now()
	permanent := httperr.IsForeignKeyViolation(pushErr) || httperr.IsUniqueViolation(pushErr)

	cur, err := r.store.Update(ctx, e.ID(), func(cur *Entry) error {
		if cur.Version != e.Version {
			return errStale
		}
		cur.Attempts++
		cur.LastError = pushErr.Error()
		cur.NextAttemptAt = now.Add(r.backoff(cur.Attempts))
		cur.Parked = permanent
		return nil
	})
	if errors.Is(err, errStale) || errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if permanent {
		r.log.Warn("outbox entry parked",
			zap.String("appointment_id", e.ID()),
			zap.Int("attempts", cur.Attempts),
			zap.Error(pushErr),
		)
		return nil
	}

	r.log.Info("outbox replay deferred",
		zap.String("appointment_id", e.ID()),
		zap.Int("attempts", cur.Attempts),
		zap.Time("next_attempt_at", cur.NextAttemptAt),
		zap.Error(pushErr),
	)
	return nil
}

func (r *Replayer) backoff(attempts int) time.Duration {
	d := r.interval
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= r.maxDelay {
			return r.maxDelay
		}
	}
	return d
}
