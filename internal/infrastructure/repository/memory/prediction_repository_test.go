package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/domain/scoring"
)

func seedPredictions(t *testing.T, items ...prediction.Prediction) prediction.Repository {
	t.Helper()
	repo := predictionRepository{state: &state{deletedUsers: make(map[string]struct{})}}
	for _, item := range items {
		require.NoError(t, repo.Insert(context.Background(), item))
	}
	return repo
}

func TestPredictionRepository_UserFixturePairIsUnique(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := seedPredictions(t,
		prediction.Prediction{ID: "linked", UserID: "u2", FixtureID: "f3", HomeTeam: "Chelsea", AwayTeam: "Liverpool"},
		prediction.Prediction{ID: "legacy", UserID: "u2", HomeTeam: "chelsea", AwayTeam: "liverpool"},
		prediction.Prediction{ID: "other", UserID: "u1", HomeTeam: "Chelsea", AwayTeam: "Liverpool"},
	)

	err := repo.Insert(ctx, prediction.Prediction{ID: "dup", UserID: "u2", FixtureID: "f3"})
	require.ErrorContains(t, err, "already exists")

	err = repo.ApplySync(ctx, prediction.Sync{PredictionID: "legacy", FixtureID: "f3", HomeTeam: "Chelsea", AwayTeam: "Liverpool"})
	require.ErrorContains(t, err, "already exists")

	err = repo.UpdateScores(ctx, prediction.Prediction{ID: "legacy", FixtureID: "f3", HomeScore: 1})
	require.ErrorContains(t, err, "already exists")

	require.NoError(t, repo.ApplySync(ctx, prediction.Sync{PredictionID: "legacy", HomeTeam: "Chelsea", AwayTeam: "Liverpool", Outcome: scoring.OutcomeDraw}))
	require.NoError(t, repo.ApplySync(ctx, prediction.Sync{PredictionID: "other", FixtureID: "f3", HomeTeam: "Chelsea", AwayTeam: "Liverpool"}))
	require.NoError(t, repo.ApplySync(ctx, prediction.Sync{PredictionID: "linked", FixtureID: "f3", HomeTeam: "Chelsea", AwayTeam: "Liverpool"}))

	items, err := repo.ListByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, items, 2)
	held := 0
	for _, item := range items {
		if item.FixtureID == "f3" {
			held++
		}
	}
	require.Equal(t, 1, held)
}
