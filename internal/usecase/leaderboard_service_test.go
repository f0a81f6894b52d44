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
	"github.com/riskibarqy/score-predictor/internal/platform/cache"
)

var leagueCreated = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func leaderboardSeed() seedData {
	matchday := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	return seedData{
		fixtures: []fixture.Fixture{
			finished("f1", 1, "Arsenal", "Chelsea", 2, 1, matchday),
			finished("f2", 1, "Liverpool", "Everton", 1, 1, matchday),
			upcoming("f3", 2, "Chelsea", "Liverpool", matchday.Add(7*24*time.Hour)),
		},
		leagues: []league.League{
			{ID: "l1", Name: "Office", InviteCode: "OFFICE01", Scope: league.ScopeFullSeason, CreatedBy: "u1", CreatedAt: leagueCreated},
			{ID: "l2", Name: "Public", InviteCode: "PUBLIC01", IsOpen: true, Scope: league.ScopeWeekly, CreatedBy: "u1", CreatedAt: leagueCreated},
		},
		members: []league.Membership{
			{LeagueID: "l1", UserID: "u1", DisplayName: "Ana", Role: league.RoleAdmin},
			{LeagueID: "l1", UserID: "u2", DisplayName: "Budi", Role: league.RolePlayer},
			{LeagueID: "l2", UserID: "u1", DisplayName: "Ana", Role: league.RoleAdmin},
		},
		predictions: []prediction.Prediction{
			{ID: "p1", UserID: "u1", FixtureID: "f1", HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: 2, AwayScore: 1},
			{ID: "p2", UserID: "u1", FixtureID: "f2", HomeTeam: "Liverpool", AwayTeam: "Everton", HomeScore: 0, AwayScore: 0},
			// Legacy row without a fixture id and with drifted names.
			{ID: "p3", UserID: "u2", HomeTeam: "arsenal fc", AwayTeam: "chelsea", HomeScore: 1, AwayScore: 0},
		},
	}
}

func newLeaderboardService(store *memory.Store, c *cache.Store) *LeaderboardService {
	svc := NewLeaderboardService(store, c, 2, nopLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestLeaderboardService_Refresh_RanksAndReconciles(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t, leaderboardSeed())
	svc := newLeaderboardService(store, nil)

	view, err := svc.Refresh(context.Background(), "l1")
	require.NoError(t, err)
	require.Equal(t, league.ScopeFullSeason, view.Scope)
	require.NotNil(t, view.CurrentRound)
	require.Equal(t, 2, *view.CurrentRound)
	require.Equal(t, 1, view.NewWeekWinners)
	require.Len(t, view.Standings, 2)

	top, second := view.Standings[0], view.Standings[1]
	require.Equal(t, "u1", top.UserID)
	require.Equal(t, 1, top.Rank)
	require.Equal(t, 4, top.Points)
	require.Equal(t, 1, top.Wins)
	require.Equal(t, 1, top.Draws)
	require.Equal(t, 1, top.WeeksWon)

	require.Equal(t, "u2", second.UserID)
	require.Equal(t, 2, second.Rank)
	require.Equal(t, 1, second.Points)
	require.Equal(t, 1, second.Draws)
	require.Equal(t, 1, second.Losses, "skipped fixture in a played round counts as a loss")

	inspect(t, store, func(repos uow.Repositories) {
		winners, err := repos.Leagues().ListWeekWinners(context.Background(), "l1")
		require.NoError(t, err)
		require.Len(t, winners, 1)
		require.Equal(t, "u1", winners[0].UserID)
		require.Equal(t, 1, winners[0].Round)
		require.Equal(t, 4, winners[0].Points)

		stored, err := repos.Predictions().ListByUser(context.Background(), "u2")
		require.NoError(t, err)
		require.Len(t, stored, 1)
		require.Equal(t, "f1", stored[0].FixtureID)
		require.Equal(t, "Arsenal", stored[0].HomeTeam)
		require.Equal(t, scoring.OutcomeDraw, stored[0].Outcome)
	})

	again, err := svc.Refresh(context.Background(), "l1")
	require.NoError(t, err)
	require.Zero(t, again.NewWeekWinners)
	require.Equal(t, 1, again.Standings[0].WeeksWon)
}

func holdersOf(t *testing.T, store uow.Factory, userID, fixtureID string) []prediction.Prediction {
	t.Helper()
	var out []prediction.Prediction
	for _, p := range listPredictions(t, store, userID) {
		if p.FixtureID == fixtureID {
			out = append(out, p)
		}
	}
	return out
}

func TestLeaderboardService_Refresh_AfterAdminUpdatesLegacyPick(t *testing.T) {
	t.Parallel()

	seed := leaderboardSeed()
	seed.predictions = append(seed.predictions, prediction.Prediction{
		ID: "p9", UserID: "u2", HomeTeam: "chelsea", AwayTeam: "liverpool", HomeScore: 0, AwayScore: 1,
		UpdatedAt: leagueCreated,
	})
	store := newSeededStore(t, seed)
	ctx := context.Background()

	item, err := newPredictionService(store, nil).Submit(ctx, SubmitPredictionInput{
		ActorID:   "u1",
		UserID:    "u2",
		FixtureID: "f3",
		HomeScore: 2,
		AwayScore: 0,
	})
	require.NoError(t, err)
	require.Equal(t, "p9", item.ID, "the legacy row is updated in place")
	require.Len(t, listPredictions(t, store, "u2"), 2)

	view, err := newLeaderboardService(store, nil).Refresh(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, view.Standings, 2)

	held := holdersOf(t, store, "u2", "f3")
	require.Len(t, held, 1)
	require.Equal(t, "p9", held[0].ID)
	require.Equal(t, 2, held[0].HomeScore)
	require.Equal(t, 0, held[0].AwayScore)
	require.Equal(t, "Chelsea", held[0].HomeTeam)
}

func TestLeaderboardService_Refresh_KeepsOneRowPerFixture(t *testing.T) {
	t.Parallel()

	seed := leaderboardSeed()
	seed.predictions = append(seed.predictions,
		prediction.Prediction{ID: "p9", UserID: "u2", HomeTeam: "chelsea", AwayTeam: "liverpool", HomeScore: 0, AwayScore: 1, UpdatedAt: leagueCreated},
		prediction.Prediction{ID: "p10", UserID: "u2", FixtureID: "f3", HomeTeam: "Chelsea", AwayTeam: "Liverpool", HomeScore: 2, AwayScore: 0, UpdatedAt: testNow},
	)
	store := newSeededStore(t, seed)
	ctx := context.Background()

	_, err := newLeaderboardService(store, nil).Refresh(ctx, "l1")
	require.NoError(t, err)

	held := holdersOf(t, store, "u2", "f3")
	require.Len(t, held, 1)
	require.Equal(t, "p10", held[0].ID)

	mine, err := newPredictionService(store, nil).ListMine(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, p := range mine {
		require.NotEqual(t, "p9", p.ID, "older duplicate is hidden")
	}
}

func TestLeaderboardService_Leaderboard_CachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t, leaderboardSeed())
	svc := newLeaderboardService(store, cache.NewStore(time.Minute))
	ctx := context.Background()

	first, err := svc.Leaderboard(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, "u1", first.Standings[0].UserID)

	unit, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, unit.Leagues().UpdateBackfill(ctx, "l1", "u2", &league.Backfill{Wins: 3, Points: intPtr(10)}))
	require.NoError(t, unit.Commit())

	cached, err := svc.Leaderboard(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, "u1", cached.Standings[0].UserID)

	svc.Invalidate(ctx, "l1")
	fresh, err := svc.Leaderboard(ctx, "l1")
	require.NoError(t, err)
	require.Equal(t, "u2", fresh.Standings[0].UserID)
	require.Equal(t, 11, fresh.Standings[0].Points)
	require.Equal(t, 3, fresh.Standings[0].Wins)
}

func TestLeaderboardService_LeaderboardFor_Visibility(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t, leaderboardSeed())
	svc := newLeaderboardService(store, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   string
		leagueID string
		wantErr  error
	}{
		{name: "member of private league", userID: "u2", leagueID: "l1"},
		{name: "outsider on private league", userID: "u9", leagueID: "l1", wantErr: ErrForbidden},
		{name: "outsider on open league", userID: "u9", leagueID: "l2"},
		{name: "unknown league", userID: "u1", leagueID: "nope", wantErr: ErrNotFound},
		{name: "missing user", userID: " ", leagueID: "l1", wantErr: ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			view, err := svc.LeaderboardFor(ctx, tc.userID, tc.leagueID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.leagueID, view.League.ID)
		})
	}
}

func TestLeaderboardService_RefreshAll(t *testing.T) {
	t.Parallel()

	seed := leaderboardSeed()
	seed.leagues = append(seed.leagues, league.League{ID: "l3", Name: "Empty", InviteCode: "EMPTY001", CreatedAt: leagueCreated})
	store := newSeededStore(t, seed)
	svc := newLeaderboardService(store, cache.NewStore(time.Minute))

	summary, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, RefreshSummary{Leagues: 3, Refreshed: 3}, summary)

	inspect(t, store, func(repos uow.Repositories) {
		winners, err := repos.Leagues().ListWeekWinners(context.Background(), "l2")
		require.NoError(t, err)
		require.Len(t, winners, 1)
		require.Equal(t, "u1", winners[0].UserID)
	})
}

func TestLeaderboardService_RefreshAll_NoLeagues(t *testing.T) {
	t.Parallel()

	summary, err := newLeaderboardService(memory.NewStore(), nil).RefreshAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, RefreshSummary{}, summary)
}
