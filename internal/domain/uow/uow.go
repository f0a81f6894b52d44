package uow

import (
	"context"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
)

// Repositories groups the stores a unit of work spans.
type Repositories interface {
	Fixtures() fixture.Repository
	Predictions() prediction.Repository
	Leagues() league.Repository
}

// UnitOfWork is an atomic set of repository operations. Nothing is visible
// to other units until Commit succeeds. Rollback after Commit is a no-op.
type UnitOfWork interface {
	Repositories
	Commit() error
	Rollback() error
}

type Factory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
