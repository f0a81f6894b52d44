package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/domain/uow"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// sequenceIDs hands out the queued ids first, then prefix-N.
type sequenceIDs struct {
	mu     sync.Mutex
	prefix string
	queued []string
	n      int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id, nil
	}
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n), nil
}

type recordingInvalidator struct {
	mu      sync.Mutex
	leagues []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, leagueID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leagues = append(r.leagues, leagueID)
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.leagues...)
}

type seedData struct {
	fixtures    []fixture.Fixture
	leagues     []league.League
	members     []league.Membership
	predictions []prediction.Prediction
	winners     []league.WeekWinner
}

func newSeededStore(t *testing.T, data seedData) *memory.Store {
	t.Helper()

	store := memory.NewStore()
	ctx := context.Background()
	unit, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin seed unit: %v", err)
	}
	defer func() { _ = unit.Rollback() }()

	for _, f := range data.fixtures {
		if err := unit.Fixtures().Insert(ctx, f); err != nil {
			t.Fatalf("seed fixture: %v", err)
		}
	}
	for _, l := range data.leagues {
		if err := unit.Leagues().Create(ctx, l); err != nil {
			t.Fatalf("seed league: %v", err)
		}
	}
	for _, m := range data.members {
		if err := unit.Leagues().AddMember(ctx, m); err != nil {
			t.Fatalf("seed member: %v", err)
		}
	}
	for _, p := range data.predictions {
		if err := unit.Predictions().Insert(ctx, p); err != nil {
			t.Fatalf("seed prediction: %v", err)
		}
	}
	if _, err := unit.Leagues().InsertWeekWinners(ctx, data.winners); err != nil {
		t.Fatalf("seed week winners: %v", err)
	}
	if err := unit.Commit(); err != nil {
		t.Fatalf("commit seed unit: %v", err)
	}
	return store
}

func inspect(t *testing.T, store uow.Factory, fn func(repos uow.Repositories)) {
	t.Helper()
	unit, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin inspect unit: %v", err)
	}
	defer func() { _ = unit.Rollback() }()
	fn(unit)
}

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func finished(id string, round int, home, away string, hs, as int, kickoff time.Time) fixture.Fixture {
	return fixture.Fixture{
		ID:        id,
		Round:     intPtr(round),
		KickoffAt: timePtr(kickoff),
		HomeTeam:  home,
		AwayTeam:  away,
		HomeScore: intPtr(hs),
		AwayScore: intPtr(as),
		Completed: true,
	}
}

func upcoming(id string, round int, home, away string, kickoff time.Time) fixture.Fixture {
	return fixture.Fixture{
		ID:        id,
		Round:     intPtr(round),
		KickoffAt: timePtr(kickoff),
		HomeTeam:  home,
		AwayTeam:  away,
	}
}

func nopLogger() *logging.Logger {
	return logging.NewNop()
}
