package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	qb "github.com/riskibarqy/score-predictor/internal/platform/querybuilder"
)

type predictionRepository struct {
	db sqlx.ExtContext
}

func NewPredictionRepository(db *sqlx.DB) prediction.Repository {
	return predictionRepository{db: db}
}

func (r predictionRepository) ListByUsers(ctx context.Context, userIDs []string) ([]prediction.Prediction, error) {
	if len(userIDs) == 0 {
		return []prediction.Prediction{}, nil
	}
	return r.selectGames(ctx, qb.Select(gameColumns...).From("games").
		Where(qb.In("user_id", stringsToAny(userIDs))).
		OrderBy("user_id ASC", "created_at ASC", "id ASC"))
}

func (r predictionRepository) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	return r.selectGames(ctx, qb.Select(gameColumns...).From("games").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at ASC", "id ASC"))
}

func (r predictionRepository) GetByUserFixture(ctx context.Context, userID, fixtureID string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select(gameColumns...).From("games").
		Where(qb.Eq("user_id", userID), qb.Eq("fixture_id", fixtureID)).
		OrderBy("updated_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row gameTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction user=%s fixture=%s: %w", userID, fixtureID, err)
	}
	return row.toDomain(), true, nil
}

func (r predictionRepository) Insert(ctx context.Context, item prediction.Prediction) error {
	query, args, err := qb.InsertModel("games", predictionToModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert prediction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "uq_games_user_fixture" {
			return fmt.Errorf("prediction for user %s fixture %s already exists: %w", item.UserID, item.FixtureID, err)
		}
		return fmt.Errorf("insert prediction %s: %w", item.ID, err)
	}
	return nil
}

func (r predictionRepository) UpdateScores(ctx context.Context, item prediction.Prediction) error {
	model := predictionToModel(item)
	query, args, err := qb.Update("games").
		Set("fixture_id", model.FixtureID).
		Set("home_team_score", model.HomeScore).
		Set("away_team_score", model.AwayScore).
		Set("game_result", model.Result).
		Set("updated_at", model.UpdatedAt).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update prediction query: %w", err)
	}
	return execOne(ctx, r.db, query, args, "prediction "+item.ID)
}

// ApplySync rewrites derived fields only; updated_at is left alone so the
// newest user edit still wins among duplicates.
func (r predictionRepository) ApplySync(ctx context.Context, sync prediction.Sync) error {
	query, args, err := qb.Update("games").
		Set("fixture_id", nullString(sync.FixtureID)).
		Set("home_team", sync.HomeTeam).
		Set("away_team", sync.AwayTeam).
		Set("game_result", nullString(string(sync.Outcome))).
		Where(qb.Eq("id", sync.PredictionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build sync prediction query: %w", err)
	}
	return execOne(ctx, r.db, query, args, "prediction "+sync.PredictionID)
}

func (r predictionRepository) selectGames(ctx context.Context, builder *qb.SelectBuilder) ([]prediction.Prediction, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions query: %w", err)
	}

	var rows []gameTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
