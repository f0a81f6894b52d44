package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	qb "github.com/riskibarqy/score-predictor/internal/platform/querybuilder"
)

// BootstrapSeed loads fixtures into an empty fixtures table. It is a no-op
// once any fixture exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, fixtures []fixture.Fixture) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM fixtures`); err != nil {
		return fmt.Errorf("count fixtures for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, f := range fixtures {
		query, args, err := qb.InsertModel("fixtures", fixtureToModel(f), "ON CONFLICT (id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed fixture %s query: %w", f.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed fixture %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
