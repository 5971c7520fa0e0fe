package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/dto"
	"github.com/noah-isme/survey-go-api/internal/models"
	"github.com/noah-isme/survey-go-api/internal/observability"
	"github.com/noah-isme/survey-go-api/internal/repository"
)

const leaderboardSize = 50

// LeaderboardCache stores the rendered leaderboard in redis. A nil client
// disables caching.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewLeaderboardCache constructs the leaderboard cache.
func NewLeaderboardCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *LeaderboardCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LeaderboardCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "leaderboard_cache").Logger(),
	}
}

func (c *LeaderboardCache) get(ctx context.Context) (dto.LeaderboardResponse, bool) {
	if c == nil || c.client == nil {
		return dto.LeaderboardResponse{}, false
	}
	cached, err := c.client.Get(ctx, leaderboardCacheKey).Result()
	if err != nil || cached == "" {
		observability.CacheRequests().WithLabelValues("leaderboard", "miss").Inc()
		return dto.LeaderboardResponse{}, false
	}
	var response dto.LeaderboardResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		observability.CacheRequests().WithLabelValues("leaderboard", "miss").Inc()
		return dto.LeaderboardResponse{}, false
	}
	observability.CacheRequests().WithLabelValues("leaderboard", "hit").Inc()
	response.CacheHit = true
	return response, true
}

func (c *LeaderboardCache) set(ctx context.Context, response dto.LeaderboardResponse) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, leaderboardCacheKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to cache leaderboard")
	}
}

func (c *LeaderboardCache) invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}
}

// WinnerService announces competition winners and serves the leaderboard.
type WinnerService interface {
	ListByCompetition(ctx context.Context, competitionID uint) ([]dto.WinnerResponse, error)
	Leaderboard(ctx context.Context) (dto.LeaderboardResponse, error)
	Get(ctx context.Context, id uint) (dto.WinnerResponse, error)
	Create(ctx context.Context, caller Principal, req dto.WinnerCreateRequest) (dto.WinnerResponse, error)
	Delete(ctx context.Context, caller Principal, id uint) error
}

type winnerService struct {
	repo      repository.CompetitionRepository
	users     repository.UserRepository
	cache     *LeaderboardCache
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
	now       func() time.Time
}

// NewWinnerService constructs the winner service.
func NewWinnerService(repo repository.CompetitionRepository, users repository.UserRepository, cache *LeaderboardCache, validate *validator.Validate, logger zerolog.Logger) WinnerService {
	return &winnerService{
		repo:      repo,
		users:     users,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "winner_service").Logger(),
		policy:    bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

func (s *winnerService) ListByCompetition(ctx context.Context, competitionID uint) ([]dto.WinnerResponse, error) {
	if _, err := s.repo.FindByID(ctx, competitionID); err != nil {
		return nil, translate(err, ErrCompetitionNotFound)
	}
	winners, err := s.repo.ListWinners(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	return dto.NewWinnerResponseSlice(winners), nil
}

func (s *winnerService) Leaderboard(ctx context.Context) (dto.LeaderboardResponse, error) {
	if cached, ok := s.cache.get(ctx); ok {
		return cached, nil
	}

	winners, err := s.repo.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}
	response := dto.LeaderboardResponse{
		Items:       dto.NewWinnerResponseSlice(winners),
		GeneratedAt: s.now().UTC(),
	}
	s.cache.set(ctx, response)
	return response, nil
}

func (s *winnerService) Get(ctx context.Context, id uint) (dto.WinnerResponse, error) {
	winner, err := s.repo.FindWinner(ctx, id)
	if err != nil {
		return dto.WinnerResponse{}, translate(err, ErrWinnerNotFound)
	}
	return dto.NewWinnerResponse(*winner), nil
}

func (s *winnerService) Create(ctx context.Context, caller Principal, req dto.WinnerCreateRequest) (dto.WinnerResponse, error) {
	if !caller.IsAdmin() {
		return dto.WinnerResponse{}, ErrAccessDenied
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.WinnerResponse{}, err
	}
	if _, err := s.repo.FindByID(ctx, req.CompetitionID); err != nil {
		return dto.WinnerResponse{}, translate(err, ErrCompetitionNotFound)
	}
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return dto.WinnerResponse{}, translate(err, ErrUserNotFound)
	}

	taken, err := s.repo.RankTaken(ctx, req.CompetitionID, req.Rank)
	if err != nil {
		return dto.WinnerResponse{}, err
	}
	if taken {
		return dto.WinnerResponse{}, ErrRankTaken
	}

	winner := models.CompetitionWinner{
		CompetitionID: req.CompetitionID,
		UserID:        req.UserID,
		Rank:          req.Rank,
		Score:         models.Round2(req.Score),
		AnnouncedAt:   s.now().UTC(),
	}
	if req.PrizeDetails != nil {
		prize := s.policy.Sanitize(*req.PrizeDetails)
		winner.PrizeDetails = &prize
	}
	if err := s.repo.AddWinner(ctx, caller.Actor, &winner); err != nil {
		return dto.WinnerResponse{}, err
	}
	s.cache.invalidate(ctx)

	s.logger.Info().
		Uint("competition_id", winner.CompetitionID).
		Uint("user_id", winner.UserID).
		Int("rank", winner.Rank).
		Msg("winner announced")
	return s.Get(ctx, winner.ID)
}

func (s *winnerService) Delete(ctx context.Context, caller Principal, id uint) error {
	if !caller.IsAdmin() {
		return ErrAccessDenied
	}
	if err := s.repo.DeleteWinner(ctx, caller.Actor, id); err != nil {
		return translate(err, ErrWinnerNotFound)
	}
	s.cache.invalidate(ctx)
	return nil
}
