package memory

import (
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
)

// SeedFixtures returns a small two-round schedule for local runs without a
// database. Kickoffs are relative to now so the first round is in play.
func SeedFixtures(now time.Time) []fixture.Fixture {
	now = now.UTC().Truncate(time.Hour)
	kickoff := func(offset time.Duration) *time.Time {
		t := now.Add(offset)
		return &t
	}
	round := func(v int) *int { return &v }

	items := []fixture.Fixture{
		{ID: "seed-r1-ars-che", Round: round(1), KickoffAt: kickoff(24 * time.Hour), HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
		{ID: "seed-r1-liv-mci", Round: round(1), KickoffAt: kickoff(26 * time.Hour), HomeTeam: "Liverpool", AwayTeam: "Manchester City"},
		{ID: "seed-r1-tot-mun", Round: round(1), KickoffAt: kickoff(28 * time.Hour), HomeTeam: "Tottenham Hotspur", AwayTeam: "Manchester United"},
		{ID: "seed-r2-che-liv", Round: round(2), KickoffAt: kickoff(8 * 24 * time.Hour), HomeTeam: "Chelsea", AwayTeam: "Liverpool"},
		{ID: "seed-r2-mci-tot", Round: round(2), KickoffAt: kickoff(8*24*time.Hour + 2*time.Hour), HomeTeam: "Manchester City", AwayTeam: "Tottenham Hotspur"},
		{ID: "seed-r2-mun-ars", Round: round(2), KickoffAt: kickoff(8*24*time.Hour + 4*time.Hour), HomeTeam: "Manchester United", AwayTeam: "Arsenal"},
	}
	for i := range items {
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
	}
	return items
}
