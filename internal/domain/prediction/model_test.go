package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/scoring"
)

func intPtr(v int) *int { return &v }

func TestEvaluate_DrawnMatchAgainstHomePick(t *testing.T) {
	t.Parallel()

	f := fixture.Fixture{ID: "f1", Round: intPtr(10), HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: intPtr(2), AwayScore: intPtr(2), Completed: true}
	p := Prediction{HomeTeam: "Arsenal", AwayTeam: "Chelsea", HomeScore: 2, AwayScore: 1}

	got, ok := Evaluate(p, f)
	require.True(t, ok)
	require.Equal(t, scoring.OutcomeLoss, got)
}

func TestEvaluate_RequiresBothScores(t *testing.T) {
	t.Parallel()

	p := Prediction{HomeScore: 1, AwayScore: 0}
	_, ok := Evaluate(p, fixture.Fixture{Completed: true})
	require.False(t, ok, "completed without scores is not scoreable")

	_, ok = Evaluate(p, fixture.Fixture{HomeScore: intPtr(1)})
	require.False(t, ok)

	got, ok := Evaluate(p, fixture.Fixture{HomeScore: intPtr(1), AwayScore: intPtr(0)})
	require.True(t, ok, "scores without the completed flag are scoreable")
	require.Equal(t, scoring.OutcomeWin, got)
}

func TestResolve_PrefersFixtureID(t *testing.T) {
	t.Parallel()

	idx := fixture.NewIndex([]fixture.Fixture{
		{ID: "f1", HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
		{ID: "f2", HomeTeam: "Tottenham Hotspur", AwayTeam: "Manchester United"},
	})

	got, level, ok := Resolve(idx, Prediction{FixtureID: "f2", HomeTeam: "Arsenal", AwayTeam: "Chelsea"})
	require.True(t, ok)
	require.Equal(t, "f2", got.ID)
	require.Equal(t, fixture.MatchExact, level)

	got, level, ok = Resolve(idx, Prediction{HomeTeam: "Spurs", AwayTeam: "Man Utd"})
	require.True(t, ok)
	require.Equal(t, "f2", got.ID)
	require.Equal(t, fixture.MatchAlias, level)

	_, _, ok = Resolve(idx, Prediction{FixtureID: "gone", HomeTeam: "Leeds", AwayTeam: "Fulham"})
	require.False(t, ok)
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	f := fixture.Fixture{ID: "f2", HomeTeam: "Tottenham Hotspur", AwayTeam: "Manchester United", HomeScore: intPtr(1), AwayScore: intPtr(1)}

	sync, changed := Reconcile(Prediction{ID: "p1", HomeTeam: "Spurs", AwayTeam: "Man Utd", HomeScore: 0, AwayScore: 0}, f)
	require.True(t, changed)
	require.Equal(t, Sync{PredictionID: "p1", FixtureID: "f2", HomeTeam: "Tottenham Hotspur", AwayTeam: "Manchester United", Outcome: scoring.OutcomeDraw}, sync)

	_, changed = Reconcile(Prediction{ID: "p1", FixtureID: "f2", HomeTeam: "Tottenham Hotspur", AwayTeam: "Manchester United", Outcome: scoring.OutcomeDraw}, f)
	require.False(t, changed)

	f.HomeScore, f.AwayScore = nil, nil
	sync, changed = Reconcile(Prediction{ID: "p1", FixtureID: "f2", HomeTeam: "Tottenham Hotspur", AwayTeam: "Manchester United", Outcome: scoring.OutcomeWin}, f)
	require.True(t, changed, "stale cached outcome is cleared when scores disappear")
	require.Equal(t, scoring.OutcomeNone, sync.Outcome)
}

func TestResolveAll_SupersedesOlderDuplicates(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	idx := fixture.NewIndex([]fixture.Fixture{
		{ID: "f1", HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
	})

	resolved, unresolved := ResolveAll(idx, []Prediction{
		{ID: "legacy", UserID: "u1", HomeTeam: "Arsenal", AwayTeam: "Chelsea", UpdatedAt: base.Add(time.Hour)},
		{ID: "linked", UserID: "u1", FixtureID: "f1", HomeTeam: "Arsenal", AwayTeam: "Chelsea", UpdatedAt: base},
		{ID: "other", UserID: "u2", HomeTeam: "Arsenal", AwayTeam: "Chelsea", UpdatedAt: base},
		{ID: "lost", UserID: "u2", HomeTeam: "Leeds", AwayTeam: "Fulham"},
	})

	require.Len(t, unresolved, 1)
	require.Equal(t, "lost", unresolved[0].ID)
	require.Len(t, resolved, 3)
	require.False(t, resolved[0].Superseded)
	require.True(t, resolved[1].Superseded)
	require.False(t, resolved[2].Superseded, "rows of different users never supersede each other")
}

func TestSyncs_NeverAssignsHeldFixtureID(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := fixture.Fixture{ID: "f3", HomeTeam: "Chelsea", AwayTeam: "Liverpool"}
	idx := fixture.NewIndex([]fixture.Fixture{f})

	tests := []struct {
		name  string
		items []Prediction
		want  map[string]string
	}{
		{
			name: "older legacy row keeps no fixture id",
			items: []Prediction{
				{ID: "legacy", UserID: "u2", HomeTeam: "chelsea", AwayTeam: "liverpool", UpdatedAt: base},
				{ID: "linked", UserID: "u2", FixtureID: "f3", HomeTeam: "Chelsea", AwayTeam: "Liverpool", UpdatedAt: base.Add(time.Hour)},
			},
			want: map[string]string{"legacy": ""},
		},
		{
			name: "newer legacy row cannot take an id held by an older row",
			items: []Prediction{
				{ID: "linked", UserID: "u2", FixtureID: "f3", HomeTeam: "Chelsea", AwayTeam: "Liverpool", UpdatedAt: base},
				{ID: "legacy", UserID: "u2", HomeTeam: "chelsea", AwayTeam: "liverpool", UpdatedAt: base.Add(time.Hour)},
			},
			want: map[string]string{"legacy": ""},
		},
		{
			name: "only the latest of two legacy rows is linked",
			items: []Prediction{
				{ID: "old", UserID: "u2", HomeTeam: "chelsea", AwayTeam: "liverpool", UpdatedAt: base},
				{ID: "new", UserID: "u2", HomeTeam: "chelsea", AwayTeam: "liverpool", UpdatedAt: base.Add(time.Hour)},
			},
			want: map[string]string{"old": "", "new": "f3"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resolved, _ := ResolveAll(idx, tc.items)
			got := make(map[string]string)
			for _, sync := range Syncs(resolved) {
				got[sync.PredictionID] = sync.FixtureID
				require.Equal(t, "Chelsea", sync.HomeTeam)
			}
			require.Equal(t, tc.want, got)
		})
	}
}

func TestFindUnlinked(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	idx := fixture.NewIndex([]fixture.Fixture{
		{ID: "f1", HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
		{ID: "f3", HomeTeam: "Chelsea", AwayTeam: "Liverpool"},
	})
	items := []Prediction{
		{ID: "linked", FixtureID: "f1", HomeTeam: "Chelsea", AwayTeam: "Liverpool", UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "stale", FixtureID: "deleted", HomeTeam: "chelsea", AwayTeam: "liverpool", UpdatedAt: base.Add(time.Hour)},
		{ID: "legacy", HomeTeam: "Chelsea", AwayTeam: "Liverpool", UpdatedAt: base},
	}

	got, ok := FindUnlinked(idx, items, "f3")
	require.True(t, ok)
	require.Equal(t, "stale", got.ID)

	_, ok = FindUnlinked(idx, items, "f1")
	require.False(t, ok)
}

func TestRoundLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Round 12", RoundLabel(fixture.Fixture{Round: intPtr(12)}))
	require.Equal(t, "", RoundLabel(fixture.Fixture{}))
}
