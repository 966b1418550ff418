package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventstack/notification-engine/internal/domain"
	"github.com/eventstack/notification-engine/internal/repository"
)

const (
	defaultSweepInterval  = 5 * time.Minute
	defaultRetryWindow    = 24 * time.Hour
	defaultRetryScanLimit = 100
)

// RetrySweeper periodically re-attempts failed notifications that are
// still inside the attempt budget and the retry window. Records are
// processed oldest first, one at a time.
type RetrySweeper struct {
	notifications repository.NotificationRepository
	delivery      *DeliveryService
	logger        *zap.Logger
	interval      time.Duration
	maxAttempts   int
	retryWindow   time.Duration
	limit         int
	now           func() time.Time
}

func NewRetrySweeper(
	notifications repository.NotificationRepository,
	delivery *DeliveryService,
	interval time.Duration,
	maxAttempts int,
	retryWindow time.Duration,
	limit int,
	logger *zap.Logger,
) (*RetrySweeper, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if delivery == nil {
		return nil, fmt.Errorf("delivery service is required")
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if retryWindow <= 0 {
		retryWindow = defaultRetryWindow
	}
	if limit <= 0 {
		limit = defaultRetryScanLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RetrySweeper{
		notifications: notifications,
		delivery:      delivery,
		logger:        logger,
		interval:      interval,
		maxAttempts:   maxAttempts,
		retryWindow:   retryWindow,
		limit:         limit,
		now:           time.Now,
	}, nil
}

func (s *RetrySweeper) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial sweep so due retries do not wait for the first ticker edge.
	if err := s.sweep(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("retry sweeper initial sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("retry sweeper sweep failed", zap.Error(err))
			}
		}
	}
}

// sweep retries each eligible record once. A failing record is logged
// and skipped; it stays FAILED and is picked up again on a later sweep
// if still eligible.
func (s *RetrySweeper) sweep(ctx context.Context) error {
	eligible, err := s.notifications.GetFailedForRetry(ctx, s.maxAttempts, s.retryWindow, s.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch retry candidates: %w", err)
	}

	for i := range eligible {
		if err := ctx.Err(); err != nil {
			return err
		}

		notification := eligible[i]
		// The candidate query ran once for the whole batch; re-check
		// eligibility per record so records that settled while earlier
		// ones were retried are not touched.
		if !notification.RetryEligible(s.now().UTC(), s.maxAttempts, s.retryWindow) {
			continue
		}

		result, err := s.delivery.Retry(ctx, notification.ID)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
				// Another instance got there first.
				s.logger.Debug("retry skipped",
					zap.String("notificationId", notification.ID),
					zap.Error(err),
				)
				continue
			}
			s.logger.Error("retry attempt failed",
				zap.String("notificationId", notification.ID),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("retry processed",
			zap.String("notificationId", result.ID),
			zap.String("status", result.Status.String()),
			zap.Int("attempts", result.SendAttempts),
		)
	}

	return nil
}
