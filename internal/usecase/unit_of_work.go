package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/score-predictor/internal/domain/uow"
)

// withinUnitOfWork runs fn in a fresh unit of work and commits when fn
// succeeds. Any error rolls the whole unit back.
func withinUnitOfWork(ctx context.Context, factory uow.Factory, fn func(uow.UnitOfWork) error) error {
	unit, err := factory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = unit.Rollback() }()

	if err := fn(unit); err != nil {
		return err
	}
	if err := unit.Commit(); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}

// readOnly runs fn in a unit of work that is always rolled back.
func readOnly(ctx context.Context, factory uow.Factory, fn func(uow.Repositories) error) error {
	unit, err := factory.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = unit.Rollback() }()

	return fn(unit)
}
