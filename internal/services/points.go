package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nexora-edu/learning-service/internal/cache"
	"github.com/nexora-edu/learning-service/internal/events"
	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/repositories"
)

// PointsAwarder is the single point-accounting primitive. Task reviews, quiz
// attempts and the ad-hoc game endpoints all credit points through here so
// every credit is an atomic increment, the leaderboard cache is invalidated,
// and a points.awarded event goes out.
type PointsAwarder struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.Publisher
	logger    *slog.Logger
}

func NewPointsAwarder(repo repositories.Repository, cacheSvc cache.CacheService, publisher events.Publisher, logger *slog.Logger) *PointsAwarder {
	return &PointsAwarder{
		repo:      repo,
		cache:     cacheSvc,
		publisher: publisher,
		logger:    logger,
	}
}

// Award credits points (and optionally completion counters) to a user.
// Deltas must be non-negative; decrements only happen through the explicit
// admin points override.
func (a *PointsAwarder) Award(ctx context.Context, userID uint, points, tasksCompleted, quizzesTaken int, reason string) (*models.User, error) {
	if points < 0 || tasksCompleted < 0 || quizzesTaken < 0 {
		return nil, NewValidationError("points", "must be non-negative", points)
	}

	user, err := a.repo.User().IncrementPoints(ctx, userID, points, tasksCompleted, quizzesTaken)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}

	a.invalidateLeaderboards(ctx)

	if points > 0 {
		if err := a.publisher.Publish(ctx, events.EventPointsAwarded, events.PointsAwardedEvent{
			UserID:      userID,
			Delta:       points,
			TotalPoints: user.Points,
			Reason:      reason,
		}); err != nil {
			a.logger.Error("Failed to publish points.awarded event", "user_id", userID, "error", err)
		}
	}

	a.logger.Info("Points credited",
		"user_id", userID,
		"delta", points,
		"total", user.Points,
		"reason", reason)

	return user, nil
}

func (a *PointsAwarder) invalidateLeaderboards(ctx context.Context) {
	if err := a.cache.Delete(ctx, cache.KeyLeaderboard, cache.KeyStreakLeaderboard); err != nil {
		a.logger.Warn("Failed to invalidate leaderboard cache", "error", err)
	}
}
