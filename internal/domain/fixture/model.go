package fixture

import (
	"strings"
	"time"
)

// Fixture represents one scheduled match as published by the result feed.
// Identity is inferred from round, team names and kickoff date; ID is local.
type Fixture struct {
	ID        string
	Round     *int
	KickoffAt *time.Time
	HomeTeam  string
	AwayTeam  string
	HomeScore *int
	AwayScore *int
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasFinalScore reports whether both actual scores are known.
func (f Fixture) HasFinalScore() bool {
	return f.HomeScore != nil && f.AwayScore != nil
}

// IsResolved reports whether the fixture no longer holds its round open:
// either both scores are known or the feed flagged it completed.
func (f Fixture) IsResolved() bool {
	return f.HasFinalScore() || f.Completed
}

// HasKickedOff reports whether predictions for f are locked at now.
func (f Fixture) HasKickedOff(now time.Time) bool {
	return f.KickoffAt != nil && !now.Before(*f.KickoffAt)
}

// OnOrAfter reports whether f falls inside a horizon starting at t.
// Undated fixtures are always inside.
func (f Fixture) OnOrAfter(t time.Time) bool {
	return f.KickoffAt == nil || !f.KickoffAt.Before(t)
}

func (f Fixture) RoundValue() (int, bool) {
	if f.Round == nil {
		return 0, false
	}
	return *f.Round, true
}

var completedStatuses = map[string]struct{}{
	"FULLTIME":  {},
	"FULL_TIME": {},
	"FT":        {},
	"RESULT":    {},
	"FINISHED":  {},
	"COMPLETE":  {},
	"C":         {},
	"ENDED":     {},
}

// IsCompletedStatus reports whether a feed status/period value means full time.
func IsCompletedStatus(value string) bool {
	_, ok := completedStatuses[strings.ToUpper(strings.TrimSpace(value))]
	return ok
}
