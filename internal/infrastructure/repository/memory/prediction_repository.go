package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
)

type predictionRepository struct {
	state *state
}

func (r predictionRepository) ListByUsers(_ context.Context, userIDs []string) ([]prediction.Prediction, error) {
	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	out := make([]prediction.Prediction, 0)
	for _, item := range r.state.predictions {
		if _, ok := wanted[item.UserID]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r predictionRepository) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	return r.ListByUsers(ctx, []string{userID})
}

func (r predictionRepository) GetByUserFixture(_ context.Context, userID, fixtureID string) (prediction.Prediction, bool, error) {
	for _, item := range r.state.predictions {
		if item.UserID == userID && item.FixtureID == fixtureID {
			return item, true, nil
		}
	}
	return prediction.Prediction{}, false, nil
}

func (r predictionRepository) Insert(_ context.Context, item prediction.Prediction) error {
	for _, existing := range r.state.predictions {
		if existing.ID == item.ID {
			return fmt.Errorf("prediction %s already exists", item.ID)
		}
		if item.FixtureID != "" && existing.UserID == item.UserID && existing.FixtureID == item.FixtureID {
			return fmt.Errorf("prediction for user %s fixture %s already exists", item.UserID, item.FixtureID)
		}
	}
	r.state.predictions = append(r.state.predictions, item)
	return nil
}

func (r predictionRepository) UpdateScores(_ context.Context, item prediction.Prediction) error {
	i, err := r.index(item.ID)
	if err != nil {
		return err
	}
	if err := r.ensureUnclaimed(i, item.FixtureID); err != nil {
		return err
	}
	stored := &r.state.predictions[i]
	stored.FixtureID = item.FixtureID
	stored.HomeScore = item.HomeScore
	stored.AwayScore = item.AwayScore
	stored.Outcome = item.Outcome
	stored.UpdatedAt = item.UpdatedAt
	return nil
}

func (r predictionRepository) ApplySync(_ context.Context, sync prediction.Sync) error {
	i, err := r.index(sync.PredictionID)
	if err != nil {
		return err
	}
	if err := r.ensureUnclaimed(i, sync.FixtureID); err != nil {
		return err
	}
	stored := &r.state.predictions[i]
	stored.FixtureID = sync.FixtureID
	stored.HomeTeam = sync.HomeTeam
	stored.AwayTeam = sync.AwayTeam
	stored.Outcome = sync.Outcome
	return nil
}

// ensureUnclaimed mirrors the partial unique index on (user_id, fixture_id):
// no other row of the same user may already hold fixtureID.
func (r predictionRepository) ensureUnclaimed(i int, fixtureID string) error {
	if fixtureID == "" {
		return nil
	}
	target := r.state.predictions[i]
	for j, existing := range r.state.predictions {
		if j != i && existing.UserID == target.UserID && existing.FixtureID == fixtureID {
			return fmt.Errorf("prediction for user %s fixture %s already exists", target.UserID, fixtureID)
		}
	}
	return nil
}

func (r predictionRepository) index(predictionID string) (int, error) {
	for i := range r.state.predictions {
		if r.state.predictions[i].ID == predictionID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("prediction %s not found", predictionID)
}
