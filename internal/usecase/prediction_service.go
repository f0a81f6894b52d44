package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/domain/scoring"
	"github.com/riskibarqy/score-predictor/internal/domain/uow"
	idgen "github.com/riskibarqy/score-predictor/internal/platform/id"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
)

const maxPredictedGoals = 99

type SubmitPredictionInput struct {
	// ActorID is the authenticated caller.
	ActorID string
	// UserID is the owner of the prediction; empty means the actor.
	UserID    string
	FixtureID string
	HomeScore int
	AwayScore int
}

// leaderboardInvalidator drops cached standings after a write.
type leaderboardInvalidator interface {
	Invalidate(ctx context.Context, leagueID string)
}

type PredictionService struct {
	units       uow.Factory
	idGen       idgen.Generator
	leaderboard leaderboardInvalidator
	logger      *logging.Logger
	now         func() time.Time
}

func NewPredictionService(units uow.Factory, idGen idgen.Generator, leaderboard leaderboardInvalidator, logger *logging.Logger) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		units:       units,
		idGen:       idGen,
		leaderboard: leaderboard,
		logger:      logger.Named("prediction"),
		now:         time.Now,
	}
}

// Submit creates or updates the owner's prediction for a fixture. Members
// can only predict before kickoff; a league admin acting for one of their
// members is not bound by the lock.
func (s *PredictionService) Submit(ctx context.Context, input SubmitPredictionInput) (item prediction.Prediction, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit", attribute.String("fixture.id", input.FixtureID))
	defer func() { finishSpan(span, err) }()

	input.ActorID = strings.TrimSpace(input.ActorID)
	input.UserID = strings.TrimSpace(input.UserID)
	input.FixtureID = strings.TrimSpace(input.FixtureID)
	if input.ActorID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.FixtureID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 || input.HomeScore > maxPredictedGoals || input.AwayScore > maxPredictedGoals {
		return prediction.Prediction{}, fmt.Errorf("%w: predicted scores must be between 0 and %d", ErrInvalidInput, maxPredictedGoals)
	}
	ownerID := input.UserID
	if ownerID == "" {
		ownerID = input.ActorID
	}
	onBehalf := ownerID != input.ActorID

	now := s.now().UTC()
	var leagueIDs []string
	err = withinUnitOfWork(ctx, s.units, func(unit uow.UnitOfWork) error {
		f, exists, err := unit.Fixtures().GetByID(ctx, input.FixtureID)
		if err != nil {
			return fmt.Errorf("get fixture: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: fixture not found", ErrNotFound)
		}

		memberships, err := unit.Leagues().ListMembershipsByUser(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("list owner memberships: %w", err)
		}
		if onBehalf {
			if err := ensureAdminOfMember(ctx, unit.Leagues(), input.ActorID, memberships); err != nil {
				return err
			}
		} else if f.HasKickedOff(now) || f.IsResolved() {
			return fmt.Errorf("%w: predictions are closed for this fixture", ErrInvalidInput)
		}
		for _, m := range memberships {
			leagueIDs = append(leagueIDs, m.LeagueID)
		}

		existing, found, err := unit.Predictions().GetByUserFixture(ctx, ownerID, f.ID)
		if err != nil {
			return fmt.Errorf("get existing prediction: %w", err)
		}
		if !found {
			existing, found, err = findUnlinked(ctx, unit, ownerID, f.ID)
			if err != nil {
				return err
			}
		}
		if found {
			existing.HomeScore = input.HomeScore
			existing.AwayScore = input.AwayScore
			existing.FixtureID = f.ID
			existing.Outcome, _ = prediction.Evaluate(existing, f)
			existing.UpdatedAt = now
			if err := unit.Predictions().UpdateScores(ctx, existing); err != nil {
				return fmt.Errorf("update prediction: %w", err)
			}
			item = existing
			return nil
		}

		predictionID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate prediction id: %w", err)
		}
		item = prediction.Prediction{
			ID:         predictionID,
			UserID:     ownerID,
			FixtureID:  f.ID,
			HomeTeam:   f.HomeTeam,
			AwayTeam:   f.AwayTeam,
			HomeScore:  input.HomeScore,
			AwayScore:  input.AwayScore,
			RoundLabel: prediction.RoundLabel(f),
			KickoffAt:  f.KickoffAt,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		item.Outcome, _ = prediction.Evaluate(item, f)
		if err := unit.Predictions().Insert(ctx, item); err != nil {
			return fmt.Errorf("insert prediction: %w", err)
		}
		return nil
	})
	if err != nil {
		return prediction.Prediction{}, err
	}

	if onBehalf {
		s.logger.InfoContext(ctx, "prediction submitted on behalf of member",
			"actor_id", input.ActorID,
			"user_id", ownerID,
			"fixture_id", input.FixtureID,
		)
	}
	s.invalidate(ctx, leagueIDs)
	return item, nil
}

// ensureAdminOfMember allows the actor when they administer any league the
// owner belongs to.
func ensureAdminOfMember(ctx context.Context, repo league.Repository, actorID string, ownerMemberships []league.Membership) error {
	if len(ownerMemberships) == 0 {
		return fmt.Errorf("%w: user is not a member of any league", ErrForbidden)
	}
	for _, m := range ownerMemberships {
		if !m.Active() {
			continue
		}
		actor, isMember, err := repo.GetMember(ctx, m.LeagueID, actorID)
		if err != nil {
			return fmt.Errorf("get actor membership: %w", err)
		}
		if isMember && actor.IsAdmin() {
			return nil
		}
	}
	return fmt.Errorf("%w: only a league admin can predict for another member", ErrForbidden)
}

// ListMine returns the user's predictions with outcomes evaluated against
// current fixtures. Stale cached outcomes and drifted names are written back.
// Older duplicates for the same fixture are left out.
func (s *PredictionService) ListMine(ctx context.Context, userID string) (items []prediction.Prediction, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListMine")
	defer func() { finishSpan(span, err) }()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var synced int
	err = withinUnitOfWork(ctx, s.units, func(unit uow.UnitOfWork) error {
		stored, err := unit.Predictions().ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list predictions: %w", err)
		}
		fixtures, err := unit.Fixtures().List(ctx)
		if err != nil {
			return fmt.Errorf("list fixtures: %w", err)
		}

		resolved, _ := prediction.ResolveAll(fixture.NewIndex(fixtures), stored)
		superseded := make(map[string]struct{})
		for _, r := range resolved {
			if r.Superseded {
				superseded[r.Prediction.ID] = struct{}{}
			}
		}
		syncs := make(map[string]prediction.Sync)
		for _, sync := range prediction.Syncs(resolved) {
			if err := unit.Predictions().ApplySync(ctx, sync); err != nil {
				return fmt.Errorf("resync prediction %s: %w", sync.PredictionID, err)
			}
			syncs[sync.PredictionID] = sync
		}
		synced = len(syncs)

		items = make([]prediction.Prediction, 0, len(stored))
		for _, p := range stored {
			if _, skip := superseded[p.ID]; skip {
				continue
			}
			if sync, ok := syncs[p.ID]; ok {
				p = applySync(p, sync)
			}
			items = append(items, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if synced > 0 {
		s.logger.DebugContext(ctx, "predictions resynced on read", "user_id", userID, "count", synced)
	}
	return items, nil
}

// EvaluateAndCacheResult evaluates p against f and persists the outcome when
// it changed. It reports false when f has no final score.
func (s *PredictionService) EvaluateAndCacheResult(ctx context.Context, p prediction.Prediction, f fixture.Fixture) (outcome scoring.Outcome, ok bool, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.EvaluateAndCacheResult", attribute.String("prediction.id", p.ID))
	defer func() { finishSpan(span, err) }()

	outcome, ok = prediction.Evaluate(p, f)
	if !ok {
		return scoring.OutcomeNone, false, nil
	}
	sync, changed := prediction.Reconcile(p, f)
	if !changed {
		return outcome, true, nil
	}

	err = withinUnitOfWork(ctx, s.units, func(unit uow.UnitOfWork) error {
		if sync.FixtureID != p.FixtureID {
			holder, held, err := unit.Predictions().GetByUserFixture(ctx, p.UserID, sync.FixtureID)
			if err != nil {
				return fmt.Errorf("get fixture holder: %w", err)
			}
			if held && holder.ID != p.ID {
				sync.FixtureID = p.FixtureID
			}
		}
		if sync == (prediction.Sync{PredictionID: p.ID, FixtureID: p.FixtureID, HomeTeam: p.HomeTeam, AwayTeam: p.AwayTeam, Outcome: p.Outcome}) {
			return nil
		}
		if err := unit.Predictions().ApplySync(ctx, sync); err != nil {
			return fmt.Errorf("cache prediction outcome: %w", err)
		}
		return nil
	})
	if err != nil {
		return scoring.OutcomeNone, false, err
	}
	return outcome, true, nil
}

func (s *PredictionService) invalidate(ctx context.Context, leagueIDs []string) {
	if s.leaderboard == nil {
		return
	}
	for _, id := range leagueIDs {
		s.leaderboard.Invalidate(ctx, id)
	}
}

// findUnlinked looks for a stored row of userID that carries no fixture id
// but names fixtureID, so a resubmission updates it instead of adding a
// second row for the same fixture.
func findUnlinked(ctx context.Context, unit uow.UnitOfWork, userID, fixtureID string) (prediction.Prediction, bool, error) {
	stored, err := unit.Predictions().ListByUser(ctx, userID)
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("list owner predictions: %w", err)
	}
	fixtures, err := unit.Fixtures().List(ctx)
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("list fixtures: %w", err)
	}
	p, ok := prediction.FindUnlinked(fixture.NewIndex(fixtures), stored, fixtureID)
	return p, ok, nil
}

func applySync(p prediction.Prediction, sync prediction.Sync) prediction.Prediction {
	p.FixtureID = sync.FixtureID
	p.HomeTeam = sync.HomeTeam
	p.AwayTeam = sync.AwayTeam
	p.Outcome = sync.Outcome
	return p
}
