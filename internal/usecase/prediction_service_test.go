package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/domain/scoring"
	"github.com/riskibarqy/score-predictor/internal/domain/uow"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/repository/memory"
)

func predictionSeed() seedData {
	return seedData{
		fixtures: []fixture.Fixture{
			upcoming("next", 3, "Arsenal", "Chelsea", testNow.Add(48*time.Hour)),
			upcoming("live", 3, "Liverpool", "Everton", testNow.Add(-30*time.Minute)),
			finished("done", 2, "Fulham", "Brentford", 3, 0, testNow.Add(-7*24*time.Hour)),
		},
		leagues: []league.League{
			{ID: "l1", Name: "Office", InviteCode: "OFFICE01", CreatedAt: leagueCreated},
		},
		members: []league.Membership{
			{LeagueID: "l1", UserID: "admin", DisplayName: "Boss", Role: league.RoleAdmin},
			{LeagueID: "l1", UserID: "u1", DisplayName: "Ana", Role: league.RolePlayer},
			{LeagueID: "l1", UserID: "u2", DisplayName: "Budi", Role: league.RolePlayer},
		},
	}
}

func newPredictionService(store *memory.Store, inv leaderboardInvalidator) *PredictionService {
	svc := NewPredictionService(store, &sequenceIDs{prefix: "pred"}, inv, nopLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func listPredictions(t *testing.T, store uow.Factory, userID string) []prediction.Prediction {
	t.Helper()
	var items []prediction.Prediction
	inspect(t, store, func(repos uow.Repositories) {
		var err error
		items, err = repos.Predictions().ListByUser(context.Background(), userID)
		require.NoError(t, err)
	})
	return items
}

func TestPredictionService_Submit_UpsertsPerFixture(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t, predictionSeed())
	inv := &recordingInvalidator{}
	svc := newPredictionService(store, inv)
	ctx := context.Background()

	created, err := svc.Submit(ctx, SubmitPredictionInput{ActorID: "u1", FixtureID: "next", HomeScore: 1, AwayScore: 0})
	require.NoError(t, err)
	require.Equal(t, "pred-1", created.ID)
	require.Equal(t, "Arsenal", created.HomeTeam)
	require.Equal(t, "Round 3", created.RoundLabel)
	require.Equal(t, scoring.OutcomeNone, created.Outcome)

	updated, err := svc.Submit(ctx, SubmitPredictionInput{ActorID: "u1", FixtureID: "next", HomeScore: 2, AwayScore: 2})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)

	stored := listPredictions(t, store, "u1")
	require.Len(t, stored, 1)
	require.Equal(t, 2, stored[0].HomeScore)
	require.Equal(t, 2, stored[0].AwayScore)
	require.Equal(t, []string{"l1", "l1"}, inv.calls())
}

func TestPredictionService_Submit_Validation(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t, predictionSeed())
	svc := newPredictionService(store, nil)

	tests := []struct {
		name    string
		input   SubmitPredictionInput
		wantErr error
	}{
		{name: "missing actor", input: SubmitPredictionInput{FixtureID: "next"}, wantErr: ErrInvalidInput},
		{name: "missing fixture", input: SubmitPredictionInput{ActorID: "u1"}, wantErr: ErrInvalidInput},
		{name: "negative score", input: SubmitPredictionInput{ActorID: "u1", FixtureID: "next", HomeScore: -1}, wantErr: ErrInvalidInput},
		{name: "absurd score", input: SubmitPredictionInput{ActorID: "u1", FixtureID: "next", AwayScore: 100}, wantErr: ErrInvalidInput},
		{name: "unknown fixture", input: SubmitPredictionInput{ActorID: "u1", FixtureID: "nope"}, wantErr: ErrNotFound},
		{name: "kicked off", input: SubmitPredictionInput{ActorID: "u1", FixtureID: "live"}, wantErr: ErrInvalidInput},
		{name: "finished", input: SubmitPredictionInput{ActorID: "u1", FixtureID: "done"}, wantErr: ErrInvalidInput},
		{name: "player for another player", input: SubmitPredictionInput{ActorID: "u2", UserID: "u1", FixtureID: "next"}, wantErr: ErrForbidden},
		{name: "admin for a stranger", input: SubmitPredictionInput{ActorID: "admin", UserID: "u9", FixtureID: "next"}, wantErr: ErrForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
	require.Empty(t, listPredictions(t, store, "u1"))
}

func TestPredictionService_Submit_AdminOnBehalfBypassesLock(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t, predictionSeed())
	svc := newPredictionService(store, nil)

	item, err := svc.Submit(context.Background(), SubmitPredictionInput{
		ActorID:   "admin",
		UserID:    "u1",
		FixtureID: "done",
		HomeScore: 3,
		AwayScore: 0,
	})
	require.NoError(t, err)
	require.Equal(t, "u1", item.UserID)
	require.Equal(t, scoring.OutcomeWin, item.Outcome)
	require.Len(t, listPredictions(t, store, "u1"), 1)
}

func TestPredictionService_ListMine_RefreshesOutcomes(t *testing.T) {
	t.Parallel()

	seed := predictionSeed()
	seed.predictions = []prediction.Prediction{
		{ID: "p1", UserID: "u1", FixtureID: "done", HomeTeam: "Fulham", AwayTeam: "Brentford", HomeScore: 1, AwayScore: 0},
		{ID: "p2", UserID: "u1", HomeTeam: "Spurs", AwayTeam: "Leeds", HomeScore: 1, AwayScore: 1},
	}
	store := newSeededStore(t, seed)
	svc := newPredictionService(store, nil)

	items, err := svc.ListMine(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, scoring.OutcomeDraw, items[0].Outcome)
	require.Equal(t, scoring.OutcomeNone, items[1].Outcome, "unresolved prediction is returned as is")

	stored := listPredictions(t, store, "u1")
	require.Equal(t, scoring.OutcomeDraw, stored[0].Outcome)
}

func TestPredictionService_EvaluateAndCacheResult(t *testing.T) {
	t.Parallel()

	seed := predictionSeed()
	seed.predictions = []prediction.Prediction{
		{ID: "p1", UserID: "u1", FixtureID: "done", HomeTeam: "Fulham", AwayTeam: "Brentford", HomeScore: 0, AwayScore: 2},
	}
	store := newSeededStore(t, seed)
	svc := newPredictionService(store, nil)
	ctx := context.Background()

	pending := upcoming("next", 3, "Arsenal", "Chelsea", testNow.Add(time.Hour))
	outcome, ok, err := svc.EvaluateAndCacheResult(ctx, seed.predictions[0], pending)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, scoring.OutcomeNone, outcome)

	outcome, ok, err = svc.EvaluateAndCacheResult(ctx, seed.predictions[0], seed.fixtures[2])
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, scoring.OutcomeLoss, outcome)
	require.Equal(t, scoring.OutcomeLoss, listPredictions(t, store, "u1")[0].Outcome)
}
