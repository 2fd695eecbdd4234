package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/nexora-edu/learning-service/internal/authz"
	"github.com/nexora-edu/learning-service/internal/repositories"
	"github.com/nexora-edu/learning-service/internal/validator"
)

// ===== REQUEST / RESPONSE STRUCTURES =====

type StartGameRequest struct {
	GameType string `json:"gameType" validate:"required"`
}

type CompleteChallengeRequest struct {
	ChallengeID string `json:"challengeId" validate:"required"`
}

type GameStartResult struct {
	Streak  int  `json:"streak"`
	CanPlay bool `json:"canPlay"`
}

type DailyChallenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// ===== CONTENT BANKS =====

var dailyTips = []string{
	"Turn off lights when you leave a room.",
	"Use a reusable water bottle.",
	"Unplug electronics when not in use.",
	"Take shorter showers to save water.",
	"Plant a tree or support local green initiatives.",
}

// dailyChallenges rotates by day of year so every student sees the same
// challenge on a given day.
var dailyChallenges = []DailyChallenge{
	{ID: "plastic-free-day", Title: "Plastic-Free Day", Description: "Avoid using single-use plastics for the entire day.", Points: 50},
	{ID: "meatless-meal", Title: "Meatless Meal", Description: "Replace one meal today with a fully plant-based one.", Points: 30},
	{ID: "walk-or-cycle", Title: "Walk or Cycle", Description: "Skip motorized transport for one trip today.", Points: 40},
	{ID: "zero-food-waste", Title: "Zero Food Waste", Description: "Finish every meal today without throwing food away.", Points: 30},
	{ID: "power-hour", Title: "Power Hour", Description: "Spend one hour with all non-essential electronics off.", Points: 25},
}

// ===== SERVICE =====

type GameService interface {
	// Start records a play and rolls the student's daily streak forward.
	Start(ctx context.Context, req *StartGameRequest, p authz.Principal) (*GameStartResult, error)
	DailyTip() string
	TodaysChallenge(now time.Time) DailyChallenge
	// CompleteChallenge credits the current challenge's points. The challenge
	// id must match today's challenge; stale ids are rejected.
	CompleteChallenge(ctx context.Context, req *CompleteChallengeRequest, p authz.Principal) (int, error)
}

type gameService struct {
	repo      repositories.Repository
	awarder   *PointsAwarder
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGameService(
	repo repositories.Repository,
	awarder *PointsAwarder,
	logger *slog.Logger,
	v *validator.Validator,
) GameService {
	return &gameService{
		repo:      repo,
		awarder:   awarder,
		logger:    logger,
		validator: v,
	}
}

func (s *gameService) Start(ctx context.Context, req *StartGameRequest, p authz.Principal) (*GameStartResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, p.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	today := truncateToDay(time.Now())
	streak := user.Streak

	switch {
	case user.LastStreakDate == nil:
		streak = 1
	case truncateToDay(*user.LastStreakDate).Equal(today):
		// Already played today, streak unchanged.
	case truncateToDay(*user.LastStreakDate).Equal(today.AddDate(0, 0, -1)):
		streak++
	default:
		streak = 1
	}

	if user.LastStreakDate == nil || !truncateToDay(*user.LastStreakDate).Equal(today) {
		if err := s.repo.User().UpdateStreak(ctx, p.ID, streak, today); err != nil {
			return nil, fmt.Errorf("failed to update streak: %w", err)
		}
		s.logger.Info("Streak updated", "user_id", p.ID, "streak", streak, "game_type", req.GameType)
	}

	return &GameStartResult{Streak: streak, CanPlay: true}, nil
}

func (s *gameService) DailyTip() string {
	return dailyTips[rand.Intn(len(dailyTips))]
}

func (s *gameService) TodaysChallenge(now time.Time) DailyChallenge {
	return dailyChallenges[now.YearDay()%len(dailyChallenges)]
}

func (s *gameService) CompleteChallenge(ctx context.Context, req *CompleteChallengeRequest, p authz.Principal) (int, error) {
	if err := s.validator.Validate(req); err != nil {
		return 0, err
	}

	challenge := s.TodaysChallenge(time.Now())
	if req.ChallengeID != challenge.ID {
		return 0, NewValidationError("challengeId", "does not match today's challenge", req.ChallengeID)
	}

	user, err := s.awarder.Award(ctx, p.ID, challenge.Points, 0, 0, "daily challenge")
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	s.logger.Info("Challenge completed", "user_id", p.ID, "challenge", challenge.ID, "points", challenge.Points)
	return user.Points, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
