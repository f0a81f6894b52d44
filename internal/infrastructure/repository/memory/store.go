package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/domain/uow"
)

type state struct {
	fixtures     []fixture.Fixture
	predictions  []prediction.Prediction
	leagues      []league.League
	members      []league.Membership
	winners      []league.WeekWinner
	deletedUsers map[string]struct{}
}

func (s *state) clone() *state {
	deleted := make(map[string]struct{}, len(s.deletedUsers))
	for id := range s.deletedUsers {
		deleted[id] = struct{}{}
	}
	return &state{
		fixtures:     slices.Clone(s.fixtures),
		predictions:  slices.Clone(s.predictions),
		leagues:      slices.Clone(s.leagues),
		members:      slices.Clone(s.members),
		winners:      slices.Clone(s.winners),
		deletedUsers: deleted,
	}
}

// Store is an in-process implementation of every repository. Units of work
// are serialized: Begin blocks until the previous unit commits or rolls back.
type Store struct {
	sem     chan struct{}
	mu      sync.RWMutex
	current *state
}

func NewStore() *Store {
	return &Store{
		sem:     make(chan struct{}, 1),
		current: &state{deletedUsers: make(map[string]struct{})},
	}
}

// NewSeededStore returns a Store holding the given fixtures.
func NewSeededStore(fixtures []fixture.Fixture) *Store {
	s := NewStore()
	s.current.fixtures = slices.Clone(fixtures)
	return s
}

func (s *Store) Begin(ctx context.Context) (uow.UnitOfWork, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for memory store: %w", ctx.Err())
	}

	s.mu.RLock()
	working := s.current.clone()
	s.mu.RUnlock()

	return &unit{store: s, state: working}, nil
}

// MarkUserDeleted soft-deletes a user; their memberships become inactive.
func (s *Store) MarkUserDeleted(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.deletedUsers[userID] = struct{}{}
}

type unit struct {
	store *Store
	state *state
	done  bool
}

func (u *unit) Fixtures() fixture.Repository {
	return fixtureRepository{state: u.state}
}

func (u *unit) Predictions() prediction.Repository {
	return predictionRepository{state: u.state}
}

func (u *unit) Leagues() league.Repository {
	return leagueRepository{state: u.state}
}

func (u *unit) Commit() error {
	if u.done {
		return fmt.Errorf("unit of work already finished")
	}
	u.store.mu.Lock()
	// Users deleted while this unit ran stay deleted.
	for id := range u.store.current.deletedUsers {
		u.state.deletedUsers[id] = struct{}{}
	}
	u.store.current = u.state
	u.store.mu.Unlock()
	u.release()
	return nil
}

func (u *unit) Rollback() error {
	if u.done {
		return nil
	}
	u.release()
	return nil
}

func (u *unit) release() {
	u.done = true
	<-u.store.sem
}
