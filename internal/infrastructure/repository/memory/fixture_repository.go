package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
)

type fixtureRepository struct {
	state *state
}

func (r fixtureRepository) List(_ context.Context) ([]fixture.Fixture, error) {
	out := make([]fixture.Fixture, len(r.state.fixtures))
	copy(out, r.state.fixtures)
	return out, nil
}

func (r fixtureRepository) ListByRound(_ context.Context, round int) ([]fixture.Fixture, error) {
	out := make([]fixture.Fixture, 0)
	for _, item := range r.state.fixtures {
		if v, ok := item.RoundValue(); ok && v == round {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r fixtureRepository) GetByID(_ context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	for _, item := range r.state.fixtures {
		if item.ID == fixtureID {
			return item, true, nil
		}
	}
	return fixture.Fixture{}, false, nil
}

func (r fixtureRepository) Insert(_ context.Context, item fixture.Fixture) error {
	for _, existing := range r.state.fixtures {
		if existing.ID == item.ID {
			return fmt.Errorf("fixture %s already exists", item.ID)
		}
	}
	r.state.fixtures = append(r.state.fixtures, item)
	return nil
}

func (r fixtureRepository) Update(_ context.Context, item fixture.Fixture) error {
	for i := range r.state.fixtures {
		if r.state.fixtures[i].ID == item.ID {
			item.CreatedAt = r.state.fixtures[i].CreatedAt
			r.state.fixtures[i] = item
			return nil
		}
	}
	return fmt.Errorf("fixture %s not found", item.ID)
}
