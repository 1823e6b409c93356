package ledger

import (
	"context"
	"time"

	"github.com/bonchon-studio/statusrental/internal/models"
	log "github.com/sirupsen/logrus"
)

// Sweep transitions every active subscription whose end date has passed to
// expired and returns the number of rows transitioned. Idempotent: a second
// run with no intervening time change transitions zero rows.
func (l *Ledger) Sweep(ctx context.Context) (int64, error) {
	result := l.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND end_date <= ?", models.SubscriptionActive, time.Now().UTC()).
		Update("status", models.SubscriptionExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DefaultSweepInterval is how often the background sweeper runs.
const DefaultSweepInterval = time.Hour

// Sweeper runs the expiry sweep at startup and on a recurring timer, so a
// subscription does not stay nominally active past its end date until the
// next process restart.
type Sweeper struct {
	ledger   *Ledger
	interval time.Duration
}

// NewSweeper constructs a Sweeper. A non-positive interval falls back to
// DefaultSweepInterval.
func NewSweeper(ledger *Ledger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{ledger: ledger, interval: interval}
}

// Start runs one immediate sweep and then sweeps on every tick until the
// context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.runOnce(ctx)
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

func (s *Sweeper) runOnce(ctx context.Context) {
	expired, err := s.ledger.Sweep(ctx)
	if err != nil {
		log.WithError(err).Error("subscription expiry sweep failed")
		return
	}
	if expired > 0 {
		log.Infof("expired %d stale subscription(s)", expired)
	}
}
