package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/uow"
	"github.com/riskibarqy/score-predictor/internal/infrastructure/repository/memory"
)

func newLeagueService(store *memory.Store, codes ...string) (*LeagueService, *recordingInvalidator) {
	inv := &recordingInvalidator{}
	svc := NewLeagueService(store, &sequenceIDs{prefix: "league"}, &sequenceIDs{prefix: "CODE", queued: codes}, inv, nopLogger())
	svc.now = func() time.Time { return testNow }
	return svc, inv
}

func TestLeagueService_Create_EnrollsCreatorAsAdmin(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	svc, _ := newLeagueService(store, "ABCD2345")

	item, err := svc.Create(context.Background(), CreateLeagueInput{
		UserID:      "u1",
		Name:        "  Office Pool ",
		DisplayName: "Ana  K",
		Scope:       "WEEKLY",
	})
	require.NoError(t, err)
	require.Equal(t, "Office Pool", item.Name)
	require.Equal(t, "ABCD2345", item.InviteCode)
	require.Equal(t, league.ScopeWeekly, item.Scope)
	require.Equal(t, testNow, item.CreatedAt)

	inspect(t, store, func(repos uow.Repositories) {
		member, ok, err := repos.Leagues().GetMember(context.Background(), item.ID, "u1")
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, member.IsAdmin())
		require.Equal(t, "Ana K", member.DisplayName)
	})
}

func TestLeagueService_Create_RetriesTakenInviteCode(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t, seedData{leagues: []league.League{
		{ID: "existing", Name: "Old", InviteCode: "TAKEN234", CreatedAt: leagueCreated},
	}})
	svc, _ := newLeagueService(store, "TAKEN234", "FRESH234")

	item, err := svc.Create(context.Background(), CreateLeagueInput{UserID: "u1", Name: "New", DisplayName: "Ana"})
	require.NoError(t, err)
	require.Equal(t, "FRESH234", item.InviteCode)
	require.Equal(t, league.ScopeFullSeason, item.Scope)
}

func TestLeagueService_Create_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newLeagueService(memory.NewStore())
	tests := []struct {
		name  string
		input CreateLeagueInput
	}{
		{name: "missing user", input: CreateLeagueInput{Name: "A", DisplayName: "Ana"}},
		{name: "missing name", input: CreateLeagueInput{UserID: "u1", DisplayName: "Ana"}},
		{name: "missing display name", input: CreateLeagueInput{UserID: "u1", Name: "A"}},
		{name: "unknown scope", input: CreateLeagueInput{UserID: "u1", Name: "A", DisplayName: "Ana", Scope: "monthly"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLeagueService_Join(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t, seedData{
		leagues: []league.League{
			{ID: "private", Name: "Private", InviteCode: "PRIV2345", CreatedAt: leagueCreated},
			{ID: "open", Name: "Open Table", InviteCode: "OPEN2345", IsOpen: true, CreatedAt: leagueCreated},
		},
		members: []league.Membership{
			{LeagueID: "private", UserID: "u1", DisplayName: "Ana", Role: league.RoleAdmin},
		},
	})
	svc, inv := newLeagueService(store)
	ctx := context.Background()

	member, err := svc.JoinByCode(ctx, JoinLeagueByCodeInput{UserID: "u2", InviteCode: " priv-2345 ", DisplayName: "Budi"})
	require.NoError(t, err)
	require.Equal(t, "private", member.LeagueID)
	require.Equal(t, league.RolePlayer, member.Role)

	_, err = svc.JoinByCode(ctx, JoinLeagueByCodeInput{UserID: "u3", InviteCode: "PRIV2345", DisplayName: "ana"})
	require.ErrorIs(t, err, ErrInvalidInput, "display names are unique per league")

	_, err = svc.JoinByCode(ctx, JoinLeagueByCodeInput{UserID: "u2", InviteCode: "PRIV2345", DisplayName: "Budi 2"})
	require.ErrorIs(t, err, ErrInvalidInput, "already a member")

	_, err = svc.JoinByCode(ctx, JoinLeagueByCodeInput{UserID: "u3", InviteCode: "NOPE2345", DisplayName: "Cici"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.JoinOpen(ctx, JoinOpenLeagueInput{UserID: "u3", LeagueID: "private", DisplayName: "Cici"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.JoinOpen(ctx, JoinOpenLeagueInput{UserID: "u3", LeagueID: "open", DisplayName: "Cici"})
	require.NoError(t, err)

	require.Equal(t, []string{"private", "open"}, inv.calls())

	mine, err := svc.ListMine(ctx, "u3")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "open", mine[0].League.ID)
	require.Equal(t, "Cici", mine[0].Membership.DisplayName)
}

func TestLeagueService_ListOpen(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t, seedData{leagues: []league.League{
		{ID: "a", Name: "Weekend Warriors", InviteCode: "AAAA2345", IsOpen: true},
		{ID: "b", Name: "office table", InviteCode: "BBBB2345", IsOpen: true},
		{ID: "c", Name: "Office Secret", InviteCode: "CCCC2345"},
	}})
	svc, _ := newLeagueService(store)

	items, err := svc.ListOpen(context.Background(), "OFFICE")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "b", items[0].ID)

	all, err := svc.ListOpen(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "b", all[0].ID)
}

func TestLeagueService_UpdateAndBackfill_RequireAdmin(t *testing.T) {
	t.Parallel()

	store := newSeededStore(t, seedData{
		leagues: []league.League{{ID: "l1", Name: "Office", InviteCode: "OFFI2345", CreatedAt: leagueCreated}},
		members: []league.Membership{
			{LeagueID: "l1", UserID: "admin", DisplayName: "Boss", Role: league.RoleAdmin},
			{LeagueID: "l1", UserID: "u1", DisplayName: "Ana", Role: league.RolePlayer},
		},
	})
	svc, inv := newLeagueService(store)
	ctx := context.Background()

	weekly := "weekly"
	open := true
	_, err := svc.Update(ctx, UpdateLeagueInput{UserID: "u1", LeagueID: "l1", Scope: &weekly})
	require.ErrorIs(t, err, ErrForbidden)

	bogus := "monthly"
	_, err = svc.Update(ctx, UpdateLeagueInput{UserID: "admin", LeagueID: "l1", Scope: &bogus})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, UpdateLeagueInput{UserID: "admin", LeagueID: "l1"})
	require.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.Update(ctx, UpdateLeagueInput{UserID: "admin", LeagueID: "l1", Scope: &weekly, IsOpen: &open})
	require.NoError(t, err)
	require.Equal(t, league.ScopeWeekly, updated.Scope)
	require.True(t, updated.IsOpen)
	require.Equal(t, "Office", updated.Name)

	_, err = svc.SetMemberBackfill(ctx, SetMemberBackfillInput{ActorID: "u1", LeagueID: "l1", UserID: "u1", Wins: 9})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SetMemberBackfill(ctx, SetMemberBackfillInput{ActorID: "admin", LeagueID: "l1", UserID: "u1", Losses: -1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SetMemberBackfill(ctx, SetMemberBackfillInput{ActorID: "admin", LeagueID: "l1", UserID: "ghost"})
	require.ErrorIs(t, err, ErrNotFound)

	member, err := svc.SetMemberBackfill(ctx, SetMemberBackfillInput{ActorID: "admin", LeagueID: "l1", UserID: "u1", Wins: 4, Draws: 2, Losses: 1})
	require.NoError(t, err)
	require.NotNil(t, member.Backfill)
	require.Equal(t, 14, member.Backfill.TotalPoints())

	require.Equal(t, []string{"l1", "l1"}, inv.calls())
}
