package fixture

import "context"

// Repository persists canonical fixtures.
type Repository interface {
	List(ctx context.Context) ([]Fixture, error)
	ListByRound(ctx context.Context, round int) ([]Fixture, error)
	GetByID(ctx context.Context, fixtureID string) (Fixture, bool, error)
	Insert(ctx context.Context, item Fixture) error
	Update(ctx context.Context, item Fixture) error
}
