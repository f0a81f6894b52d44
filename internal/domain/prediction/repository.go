package prediction

import "context"

// Repository persists predictions. At most one prediction exists per
// (user, fixture).
type Repository interface {
	ListByUsers(ctx context.Context, userIDs []string) ([]Prediction, error)
	ListByUser(ctx context.Context, userID string) ([]Prediction, error)
	GetByUserFixture(ctx context.Context, userID, fixtureID string) (Prediction, bool, error)
	Insert(ctx context.Context, item Prediction) error
	UpdateScores(ctx context.Context, item Prediction) error
	ApplySync(ctx context.Context, sync Sync) error
}
