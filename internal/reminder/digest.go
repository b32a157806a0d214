// Package reminder sends the daily follow-up digest.
package reminder

import (
	"context"
	"fmt"
	"time"

	"jobtracker/internal/models"
	"jobtracker/internal/storage/sqlstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the read side the digest needs.
type Store interface {
	ReminderTargets(ctx context.Context) ([]sqlstore.ReminderTarget, error)
	ApplicationsDueBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]models.ApplicationDetail, error)
	OpenFollowUpsDueOn(ctx context.Context, ownerID int64, day models.Date) ([]models.FollowUpItem, error)
}

type Recipient struct {
	UserID         int64
	Username       string
	Email          string
	TelegramChatID *int64
}

// Notifier delivers one digest to one user.
type Notifier interface {
	// Reachable reports whether the recipient has an address this
	// notifier can deliver to.
	Reachable(r Recipient) bool
	Send(ctx context.Context, r Recipient, m Message) error
}

// RunReport summarizes one digest pass.
type RunReport struct {
	RunID   string
	Today   models.Date
	Checked int
	Sent    int
	Skipped int
	Failed  int
}

type Digest struct {
	store    Store
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// Option is a functional option for Digest
type Option func(*Digest)

func WithClock(now func() time.Time) Option {
	return func(d *Digest) {
		d.now = now
	}
}

func WithLocation(loc *time.Location) Option {
	return func(d *Digest) {
		d.loc = loc
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(d *Digest) {
		d.logger = logger
	}
}

func New(store Store, notifier Notifier, opts ...Option) *Digest {
	d := &Digest{
		store:    store,
		notifier: notifier,
		loc:      time.UTC,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run sends one digest to every opted-in user with something due on their
// target day. A failed send is logged and counted; the pass continues.
func (d *Digest) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID: uuid.NewString(),
		Today: models.DateOf(d.now().In(d.loc)),
	}
	log := d.logger.With(zap.String("run_id", report.RunID))

	targets, err := d.store.ReminderTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reminder targets: %w", err)
	}

	log.Info("starting reminder digest",
		zap.String("today", report.Today.String()),
		zap.Int("targets", len(targets)),
	)

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		r := Recipient{
			UserID:         t.UserID,
			Username:       t.Username,
			Email:          t.Email,
			TelegramChatID: t.TelegramChatID,
		}
		if !d.notifier.Reachable(r) {
			log.Debug("recipient has no address", zap.Int64("user_id", t.UserID))
			report.Skipped++
			continue
		}

		day := report.Today.AddDays(t.ReminderDaysBefore)
		msg, err := d.collect(ctx, t.UserID, t.Username, day)
		if err != nil {
			log.Error("failed to collect due items",
				zap.Int64("user_id", t.UserID),
				zap.Error(err),
			)
			report.Failed++
			continue
		}
		if msg == nil {
			report.Skipped++
			continue
		}

		if err := d.notifier.Send(ctx, r, *msg); err != nil {
			log.Error("failed to send reminder digest",
				zap.Int64("user_id", t.UserID),
				zap.Error(err),
			)
			report.Failed++
			continue
		}

		log.Info("sent reminder digest",
			zap.Int64("user_id", t.UserID),
			zap.String("day", day.String()),
			zap.Int("applications", len(msg.Applications)),
			zap.Int("followups", len(msg.FollowUps)),
		)
		report.Sent++
	}

	log.Info("finished reminder digest",
		zap.Int("checked", report.Checked),
		zap.Int("sent", report.Sent),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)

	return report, nil
}

// collect returns nil when nothing is due for the owner on day.
func (d *Digest) collect(ctx context.Context, ownerID int64, username string, day models.Date) (*Message, error) {
	from := day.In(d.loc, 0, 0)
	to := day.AddDays(1).In(d.loc, 0, 0)

	apps, err := d.store.ApplicationsDueBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	items, err := d.store.OpenFollowUpsDueOn(ctx, ownerID, day)
	if err != nil {
		return nil, err
	}

	if len(apps) == 0 && len(items) == 0 {
		return nil, nil
	}

	msg := Compose(username, day, apps, items)
	return &msg, nil
}
