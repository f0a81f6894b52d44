package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/uow"
)

type FixtureService struct {
	units uow.Factory
}

func NewFixtureService(units uow.Factory) *FixtureService {
	return &FixtureService{units: units}
}

// List returns fixtures ordered by round, kickoff and home team. A non-nil
// round restricts the result to that round.
func (s *FixtureService) List(ctx context.Context, round *int) ([]fixture.Fixture, error) {
	if round != nil && *round < 1 {
		return nil, fmt.Errorf("%w: round must be positive", ErrInvalidInput)
	}

	var items []fixture.Fixture
	err := readOnly(ctx, s.units, func(repos uow.Repositories) error {
		var err error
		if round != nil {
			items, err = repos.Fixtures().ListByRound(ctx, *round)
		} else {
			items, err = repos.Fixtures().List(ctx)
		}
		if err != nil {
			return fmt.Errorf("list fixtures: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortFixtures(items)
	return items, nil
}

// sortFixtures puts unnumbered rounds and undated fixtures last.
func sortFixtures(items []fixture.Fixture) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ar, aok := a.RoundValue()
		br, bok := b.RoundValue()
		if aok != bok {
			return aok
		}
		if ar != br {
			return ar < br
		}
		if (a.KickoffAt == nil) != (b.KickoffAt == nil) {
			return a.KickoffAt != nil
		}
		if a.KickoffAt != nil && !a.KickoffAt.Equal(*b.KickoffAt) {
			return a.KickoffAt.Before(*b.KickoffAt)
		}
		return a.HomeTeam < b.HomeTeam
	})
}
