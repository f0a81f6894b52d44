package league

import "context"

type Repository interface {
	Create(ctx context.Context, item League) error
	Update(ctx context.Context, item League) error
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (League, bool, error)
	ListAll(ctx context.Context) ([]League, error)
	ListOpen(ctx context.Context, query string, limit int) ([]League, error)
	ListByUser(ctx context.Context, userID string) ([]League, error)

	// AddMember fails with ErrAlreadyMember or ErrDuplicateDisplayName.
	AddMember(ctx context.Context, item Membership) error
	GetMember(ctx context.Context, leagueID, userID string) (Membership, bool, error)
	ListMembers(ctx context.Context, leagueID string) ([]Membership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]Membership, error)
	UpdateBackfill(ctx context.Context, leagueID, userID string, backfill *Backfill) error

	ListWeekWinners(ctx context.Context, leagueID string) ([]WeekWinner, error)
	// InsertWeekWinners ignores rows whose (league, round, user) already exists
	// and returns how many were written.
	InsertWeekWinners(ctx context.Context, items []WeekWinner) (int, error)
}
