package prediction

import (
	"strconv"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/scoring"
)

// Prediction is a user's forecast for one fixture. Team names are copied
// from the fixture at submission and may drift from canonical names.
// Outcome is a cached evaluation and is recomputed whenever scores exist.
type Prediction struct {
	ID         string
	UserID     string
	FixtureID  string
	HomeTeam   string
	AwayTeam   string
	HomeScore  int
	AwayScore  int
	Outcome    scoring.Outcome
	RoundLabel string
	KickoffAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Evaluate returns the fresh outcome of p against f, or false when f has no
// final score yet.
func Evaluate(p Prediction, f fixture.Fixture) (scoring.Outcome, bool) {
	if !f.HasFinalScore() {
		return scoring.OutcomeNone, false
	}
	return scoring.Evaluate(p.HomeScore, p.AwayScore, *f.HomeScore, *f.AwayScore), true
}

// Resolve finds the fixture p refers to: by stored fixture id first, then by
// team names through the match cascade.
func Resolve(idx *fixture.Index, p Prediction) (fixture.Fixture, fixture.MatchLevel, bool) {
	if f, ok := idx.ByID(p.FixtureID); ok {
		return f, fixture.MatchExact, true
	}
	return idx.Match(p.HomeTeam, p.AwayTeam)
}

// Sync is a pending rewrite of a stored prediction's derived fields.
type Sync struct {
	PredictionID string
	FixtureID    string
	HomeTeam     string
	AwayTeam     string
	Outcome      scoring.Outcome
}

// Reconcile returns the Sync needed to bring p in line with f, if any:
// canonical team names, the fixture id, and the fresh outcome.
func Reconcile(p Prediction, f fixture.Fixture) (Sync, bool) {
	outcome, _ := Evaluate(p, f)
	out := Sync{
		PredictionID: p.ID,
		FixtureID:    f.ID,
		HomeTeam:     f.HomeTeam,
		AwayTeam:     f.AwayTeam,
		Outcome:      outcome,
	}
	return out, out.changes(p)
}

func (s Sync) changes(p Prediction) bool {
	return p.FixtureID != s.FixtureID || p.HomeTeam != s.HomeTeam || p.AwayTeam != s.AwayTeam || p.Outcome != s.Outcome
}

// Resolution is a stored prediction matched to its fixture.
type Resolution struct {
	Prediction Prediction
	Fixture    fixture.Fixture
	// Superseded marks a row that lost to a more recently updated
	// prediction by the same user for the same fixture.
	Superseded bool
}

type ownerFixture struct {
	userID    string
	fixtureID string
}

// ResolveAll matches items against idx in order. When a user holds several
// rows for one fixture, the most recently updated stays live and the rest
// are marked superseded; on equal timestamps the later row wins.
func ResolveAll(idx *fixture.Index, items []Prediction) (resolved []Resolution, unresolved []Prediction) {
	live := make(map[ownerFixture]int)
	for _, p := range items {
		f, _, ok := Resolve(idx, p)
		if !ok {
			unresolved = append(unresolved, p)
			continue
		}
		key := ownerFixture{userID: p.UserID, fixtureID: f.ID}
		current := Resolution{Prediction: p, Fixture: f}
		if i, seen := live[key]; seen {
			if resolved[i].Prediction.UpdatedAt.After(p.UpdatedAt) {
				current.Superseded = true
			} else {
				resolved[i].Superseded = true
				live[key] = len(resolved)
			}
		} else {
			live[key] = len(resolved)
		}
		resolved = append(resolved, current)
	}
	return resolved, unresolved
}

// Syncs returns the rewrites that bring resolved rows in line with their
// fixtures. A fixture id already stored on one row of a user is never given
// to another row of that user; such rows keep their stored id and only get
// names and outcome refreshed. Live rows claim free ids before superseded ones.
func Syncs(resolved []Resolution) []Sync {
	holders := make(map[ownerFixture]string, len(resolved))
	for _, r := range resolved {
		if r.Prediction.FixtureID != "" {
			holders[ownerFixture{userID: r.Prediction.UserID, fixtureID: r.Prediction.FixtureID}] = r.Prediction.ID
		}
	}

	var out []Sync
	for _, superseded := range []bool{false, true} {
		for _, r := range resolved {
			if r.Superseded != superseded {
				continue
			}
			p := r.Prediction
			sync, _ := Reconcile(p, r.Fixture)
			key := ownerFixture{userID: p.UserID, fixtureID: r.Fixture.ID}
			if holder, held := holders[key]; held && holder != p.ID {
				sync.FixtureID = p.FixtureID
			} else {
				holders[key] = p.ID
			}
			if sync.changes(p) {
				out = append(out, sync)
			}
		}
	}
	return out
}

// FindUnlinked returns the most recently updated prediction among items that
// has no usable fixture id but resolves by team names to target.
func FindUnlinked(idx *fixture.Index, items []Prediction, target string) (Prediction, bool) {
	var (
		best  Prediction
		found bool
	)
	for _, p := range items {
		if _, linked := idx.ByID(p.FixtureID); linked {
			continue
		}
		f, _, ok := idx.Match(p.HomeTeam, p.AwayTeam)
		if !ok || f.ID != target {
			continue
		}
		if !found || !best.UpdatedAt.After(p.UpdatedAt) {
			best, found = p, true
		}
	}
	return best, found
}

// RoundLabel formats the stored round label for a fixture round.
func RoundLabel(f fixture.Fixture) string {
	round, ok := f.RoundValue()
	if !ok {
		return ""
	}
	return "Round " + strconv.Itoa(round)
}
