package league

import (
	"errors"
	"strings"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/scoring"
)

var (
	ErrDuplicateDisplayName = errors.New("display name already taken in league")
	ErrAlreadyMember        = errors.New("user is already a league member")
	ErrDuplicateInviteCode  = errors.New("invite code already in use")
)

type Scope string

const (
	ScopeFullSeason Scope = "full_season"
	ScopeWeekly     Scope = "weekly"
)

// NormalizeScope maps anything other than a recognized scope to full_season.
func NormalizeScope(v string) Scope {
	if Scope(strings.ToLower(strings.TrimSpace(v))) == ScopeWeekly {
		return ScopeWeekly
	}
	return ScopeFullSeason
}

// IsKnownScope reports whether v names a scope exactly.
func IsKnownScope(v string) bool {
	s := Scope(strings.ToLower(strings.TrimSpace(v)))
	return s == ScopeFullSeason || s == ScopeWeekly
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

// League is a scoring group. CreatedAt is the scoring horizon: fixtures
// dated before it never count.
type League struct {
	ID         string
	Name       string
	InviteCode string
	IsOpen     bool
	Scope      Scope
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Backfill holds legacy totals imported from outside the system.
type Backfill struct {
	Wins   int
	Draws  int
	Losses int
	Points *int
}

func (b Backfill) Record() scoring.Record {
	return scoring.Record{Wins: b.Wins, Draws: b.Draws, Losses: b.Losses}
}

// TotalPoints uses the imported points when present, else derives them.
func (b Backfill) TotalPoints() int {
	if b.Points != nil {
		return *b.Points
	}
	return b.Record().Points()
}

type Membership struct {
	LeagueID    string
	UserID      string
	DisplayName string
	Role        Role
	Backfill    *Backfill
	UserDeleted bool
	JoinedAt    time.Time
}

func (m Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// Active reports whether the member's user account still exists.
func (m Membership) Active() bool {
	return !m.UserDeleted
}

// WeekWinner records that a member topped a completed round. Rows are
// written once per (league, round) and never rewritten.
type WeekWinner struct {
	LeagueID  string
	Round     int
	UserID    string
	Points    int
	CreatedAt time.Time
}
