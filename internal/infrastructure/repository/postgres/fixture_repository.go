package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	qb "github.com/riskibarqy/score-predictor/internal/platform/querybuilder"
)

type fixtureRepository struct {
	db sqlx.ExtContext
}

func NewFixtureRepository(db *sqlx.DB) fixture.Repository {
	return fixtureRepository{db: db}
}

func (r fixtureRepository) List(ctx context.Context) ([]fixture.Fixture, error) {
	return r.selectFixtures(ctx, qb.Select(fixtureColumns...).From("fixtures").
		OrderBy("fixture_round ASC NULLS LAST", "fixture_date ASC NULLS LAST", "id ASC"))
}

func (r fixtureRepository) ListByRound(ctx context.Context, round int) ([]fixture.Fixture, error) {
	return r.selectFixtures(ctx, qb.Select(fixtureColumns...).From("fixtures").
		Where(qb.Eq("fixture_round", round)).
		OrderBy("fixture_date ASC NULLS LAST", "id ASC"))
}

func (r fixtureRepository) GetByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select(fixtureColumns...).From("fixtures").
		Where(qb.Eq("id", fixtureID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build get fixture query: %w", err)
	}

	var row fixtureTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("get fixture %s: %w", fixtureID, err)
	}
	return row.toDomain(), true, nil
}

func (r fixtureRepository) Insert(ctx context.Context, item fixture.Fixture) error {
	query, args, err := qb.InsertModel("fixtures", fixtureToModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert fixture query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fixture %s: %w", item.ID, err)
	}
	return nil
}

// Update rewrites every field except created_at.
func (r fixtureRepository) Update(ctx context.Context, item fixture.Fixture) error {
	model := fixtureToModel(item)
	query, args, err := qb.Update("fixtures").
		Set("fixture_round", model.Round).
		Set("fixture_date", model.KickoffAt).
		Set("fixture_home_team", model.HomeTeam).
		Set("fixture_away_team", model.AwayTeam).
		Set("actual_home_score", model.HomeScore).
		Set("actual_away_score", model.AwayScore).
		Set("is_completed", model.Completed).
		Set("updated_at", model.UpdatedAt).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update fixture query: %w", err)
	}
	return execOne(ctx, r.db, query, args, "fixture "+item.ID)
}

func (r fixtureRepository) selectFixtures(ctx context.Context, builder *qb.SelectBuilder) ([]fixture.Fixture, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// execOne runs a write that must touch exactly one existing row.
func execOne(ctx context.Context, db sqlx.ExecerContext, query string, args []any, what string) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", what, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s rows affected: %w", what, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s not found", what)
	}
	return nil
}
