package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		ph, pa, ah, aa int
		want           Outcome
	}{
		{name: "exact home win", ph: 2, pa: 1, ah: 2, aa: 1, want: OutcomeWin},
		{name: "exact draw", ph: 0, pa: 0, ah: 0, aa: 0, want: OutcomeWin},
		{name: "right winner wrong score", ph: 3, pa: 0, ah: 1, aa: 0, want: OutcomeDraw},
		{name: "right draw wrong score", ph: 1, pa: 1, ah: 2, aa: 2, want: OutcomeDraw},
		{name: "right away win", ph: 0, pa: 2, ah: 1, aa: 4, want: OutcomeDraw},
		{name: "predicted home actual draw", ph: 2, pa: 1, ah: 2, aa: 2, want: OutcomeLoss},
		{name: "predicted draw actual away", ph: 1, pa: 1, ah: 0, aa: 1, want: OutcomeLoss},
		{name: "predicted away actual home", ph: 0, pa: 3, ah: 3, aa: 0, want: OutcomeLoss},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Evaluate(tc.ph, tc.pa, tc.ah, tc.aa))
		})
	}
}

func TestEvaluate_ExactScoreAlwaysWins(t *testing.T) {
	t.Parallel()

	for h := 0; h <= 6; h++ {
		for a := 0; a <= 6; a++ {
			require.Equal(t, OutcomeWin, Evaluate(h, a, h, a))
		}
	}
}

func TestEvaluate_DifferentWinnerClassAlwaysLoses(t *testing.T) {
	t.Parallel()

	for ph := 0; ph <= 4; ph++ {
		for pa := 0; pa <= 4; pa++ {
			for ah := 0; ah <= 4; ah++ {
				for aa := 0; aa <= 4; aa++ {
					if ClassOf(ph, pa) == ClassOf(ah, aa) {
						continue
					}
					require.Equal(t, OutcomeLoss, Evaluate(ph, pa, ah, aa), "%d-%d vs %d-%d", ph, pa, ah, aa)
				}
			}
		}
	}
}

func TestRecord(t *testing.T) {
	t.Parallel()

	var r Record
	for _, o := range []Outcome{OutcomeWin, OutcomeDraw, OutcomeDraw, OutcomeLoss, OutcomeNone} {
		r.Add(o)
	}
	require.Equal(t, Record{Wins: 1, Draws: 2, Losses: 1}, r)
	require.Equal(t, 5, r.Points())
	require.Equal(t, 4, r.Played())
	require.Equal(t, Record{Wins: 2, Draws: 2, Losses: 3}, r.Plus(Record{Wins: 1, Losses: 2}))
}

func TestOutcomePointsAndParse(t *testing.T) {
	t.Parallel()

	require.Equal(t, 3, OutcomeWin.Points())
	require.Equal(t, 1, OutcomeDraw.Points())
	require.Equal(t, 0, OutcomeLoss.Points())
	require.Equal(t, OutcomeDraw, ParseOutcome("draw"))
	require.Equal(t, OutcomeNone, ParseOutcome("pending"))
	require.False(t, OutcomeNone.Valid())
}
