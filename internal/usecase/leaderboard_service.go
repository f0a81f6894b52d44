package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/score-predictor/internal/domain/leaderboard"
	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/uow"
	"github.com/riskibarqy/score-predictor/internal/platform/cache"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
)

const leaderboardCachePrefix = "leaderboard:"

type LeaderboardView struct {
	League         league.League
	Scope          league.Scope
	CurrentRound   *int
	Standings      []leaderboard.Standing
	Unresolved     int
	NewWeekWinners int
	ComputedAt     time.Time
}

type RefreshSummary struct {
	Leagues   int `json:"leagues"`
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

type LeaderboardService struct {
	units   uow.Factory
	cache   *cache.Store
	workers int
	logger  *logging.Logger
	now     func() time.Time
}

// NewLeaderboardService wires the aggregator. A nil cache disables caching.
func NewLeaderboardService(units uow.Factory, store *cache.Store, workers int, logger *logging.Logger) *LeaderboardService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		units:   units,
		cache:   store,
		workers: workers,
		logger:  logger.Named("leaderboard"),
		now:     time.Now,
	}
}

// Leaderboard returns the ranked standings of a league, serving from cache
// when a fresh entry exists.
func (s *LeaderboardService) Leaderboard(ctx context.Context, leagueID string) (LeaderboardView, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return LeaderboardView{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	value, err := s.cache.GetOrLoad(ctx, leaderboardCachePrefix+leagueID, func(ctx context.Context) (any, error) {
		return s.Refresh(ctx, leagueID)
	})
	if err != nil {
		return LeaderboardView{}, err
	}
	view, ok := value.(LeaderboardView)
	if !ok {
		return LeaderboardView{}, fmt.Errorf("unexpected cached leaderboard type %T", value)
	}
	return view, nil
}

// LeaderboardFor returns the leaderboard when userID may see it: members of
// any league, anyone for open leagues.
func (s *LeaderboardService) LeaderboardFor(ctx context.Context, userID, leagueID string) (LeaderboardView, error) {
	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" || leagueID == "" {
		return LeaderboardView{}, fmt.Errorf("%w: user id and league id are required", ErrInvalidInput)
	}

	err := readOnly(ctx, s.units, func(repos uow.Repositories) error {
		item, exists, err := repos.Leagues().GetByID(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("get league: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: league not found", ErrNotFound)
		}
		if item.IsOpen {
			return nil
		}
		_, isMember, err := repos.Leagues().GetMember(ctx, leagueID, userID)
		if err != nil {
			return fmt.Errorf("get league member: %w", err)
		}
		if !isMember {
			return fmt.Errorf("%w: not a member of this league", ErrForbidden)
		}
		return nil
	})
	if err != nil {
		return LeaderboardView{}, err
	}

	return s.Leaderboard(ctx, leagueID)
}

// Refresh recomputes a league's standings, records any newly completed
// week winners and resyncs drifted predictions, all in one unit of work.
func (s *LeaderboardService) Refresh(ctx context.Context, leagueID string) (view LeaderboardView, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Refresh", attribute.String("league.id", leagueID))
	defer func() { finishSpan(span, err) }()

	now := s.now().UTC()
	var result leaderboard.Result
	err = withinUnitOfWork(ctx, s.units, func(unit uow.UnitOfWork) error {
		item, exists, err := unit.Leagues().GetByID(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("get league: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: league not found", ErrNotFound)
		}

		members, err := unit.Leagues().ListMembers(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("list league members: %w", err)
		}
		fixtures, err := unit.Fixtures().List(ctx)
		if err != nil {
			return fmt.Errorf("list fixtures: %w", err)
		}
		userIDs := make([]string, 0, len(members))
		for _, m := range members {
			userIDs = append(userIDs, m.UserID)
		}
		predictions, err := unit.Predictions().ListByUsers(ctx, userIDs)
		if err != nil {
			return fmt.Errorf("list member predictions: %w", err)
		}
		winners, err := unit.Leagues().ListWeekWinners(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("list week winners: %w", err)
		}

		result = leaderboard.Compute(leaderboard.Input{
			League:      item,
			Members:     members,
			Fixtures:    fixtures,
			Predictions: predictions,
			WeekWinners: winners,
			Now:         now,
		})

		if len(result.NewWeekWinners) > 0 {
			if _, err := unit.Leagues().InsertWeekWinners(ctx, result.NewWeekWinners); err != nil {
				return fmt.Errorf("insert week winners: %w", err)
			}
		}
		for _, sync := range result.Syncs {
			if err := unit.Predictions().ApplySync(ctx, sync); err != nil {
				return fmt.Errorf("resync prediction %s: %w", sync.PredictionID, err)
			}
		}

		view = LeaderboardView{
			League:         item,
			Scope:          result.Scope,
			CurrentRound:   result.CurrentRound,
			Standings:      result.Standings,
			Unresolved:     result.Unresolved,
			NewWeekWinners: len(result.NewWeekWinners),
			ComputedAt:     now,
		}
		return nil
	})
	if err != nil {
		return LeaderboardView{}, err
	}

	if len(result.NewWeekWinners) > 0 || len(result.Syncs) > 0 {
		s.logger.InfoContext(ctx, "leaderboard reconciled",
			"league_id", leagueID,
			"week_winners", len(result.NewWeekWinners),
			"prediction_syncs", len(result.Syncs),
			"unresolved", result.Unresolved,
		)
	}
	s.cache.Set(ctx, leaderboardCachePrefix+leagueID, view)
	return view, nil
}

// RefreshAll recomputes every league on a bounded worker pool. A failing
// league is logged and counted; it does not stop the others.
func (s *LeaderboardService) RefreshAll(ctx context.Context) (summary RefreshSummary, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.RefreshAll")
	defer func() { finishSpan(span, err) }()

	var leagues []league.League
	err = readOnly(ctx, s.units, func(repos uow.Repositories) error {
		items, err := repos.Leagues().ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list leagues: %w", err)
		}
		leagues = items
		return nil
	})
	if err != nil {
		return RefreshSummary{}, err
	}
	summary.Leagues = len(leagues)
	if len(leagues) == 0 {
		return summary, nil
	}

	s.InvalidateAll(ctx)

	pool, err := ants.NewPool(min(s.workers, len(leagues)))
	if err != nil {
		return RefreshSummary{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var refreshed, failed atomic.Int32
	var wg sync.WaitGroup
	for _, item := range leagues {
		leagueID := item.ID
		wg.Add(1)
		task := func() {
			defer wg.Done()
			var catcher panics.Catcher
			var refreshErr error
			catcher.Try(func() {
				_, refreshErr = s.Refresh(ctx, leagueID)
			})
			if recovered := catcher.Recovered(); recovered != nil {
				refreshErr = recovered.AsError()
			}
			if refreshErr != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "league refresh failed", "league_id", leagueID, "error", refreshErr)
				return
			}
			refreshed.Add(1)
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			failed.Add(1)
			s.logger.WarnContext(ctx, "submit league refresh failed", "league_id", leagueID, "error", err)
		}
	}
	wg.Wait()

	summary.Refreshed = int(refreshed.Load())
	summary.Failed = int(failed.Load())
	s.logger.InfoContext(ctx, "league refresh finished", "leagues", summary.Leagues, "refreshed", summary.Refreshed, "failed", summary.Failed)
	return summary, nil
}

func (s *LeaderboardService) Invalidate(ctx context.Context, leagueID string) {
	s.cache.Delete(ctx, leaderboardCachePrefix+leagueID)
}

func (s *LeaderboardService) InvalidateAll(ctx context.Context) {
	s.cache.DeletePrefix(ctx, leaderboardCachePrefix)
}
