package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/score-predictor/internal/domain/league"
)

type leagueRepository struct {
	state *state
}

func (r leagueRepository) Create(_ context.Context, item league.League) error {
	for _, existing := range r.state.leagues {
		if existing.ID == item.ID {
			return fmt.Errorf("league %s already exists", item.ID)
		}
		if existing.InviteCode == item.InviteCode {
			return league.ErrDuplicateInviteCode
		}
	}
	r.state.leagues = append(r.state.leagues, item)
	return nil
}

func (r leagueRepository) Update(_ context.Context, item league.League) error {
	for i := range r.state.leagues {
		if r.state.leagues[i].ID != item.ID {
			continue
		}
		stored := &r.state.leagues[i]
		stored.Name = item.Name
		stored.IsOpen = item.IsOpen
		stored.Scope = item.Scope
		stored.UpdatedAt = item.UpdatedAt
		return nil
	}
	return fmt.Errorf("league %s not found", item.ID)
}

func (r leagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	for _, item := range r.state.leagues {
		if item.ID == leagueID {
			return item, true, nil
		}
	}
	return league.League{}, false, nil
}

func (r leagueRepository) GetByInviteCode(_ context.Context, inviteCode string) (league.League, bool, error) {
	for _, item := range r.state.leagues {
		if item.InviteCode == inviteCode {
			return item, true, nil
		}
	}
	return league.League{}, false, nil
}

func (r leagueRepository) ListAll(_ context.Context) ([]league.League, error) {
	out := make([]league.League, len(r.state.leagues))
	copy(out, r.state.leagues)
	return out, nil
}

func (r leagueRepository) ListOpen(_ context.Context, query string, limit int) ([]league.League, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]league.League, 0)
	for _, item := range r.state.leagues {
		if !item.IsOpen {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(item.Name), needle) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r leagueRepository) ListByUser(ctx context.Context, userID string) ([]league.League, error) {
	out := make([]league.League, 0)
	for _, m := range r.state.members {
		if m.UserID != userID {
			continue
		}
		if item, ok, _ := r.GetByID(ctx, m.LeagueID); ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r leagueRepository) AddMember(_ context.Context, item league.Membership) error {
	found := false
	for _, l := range r.state.leagues {
		if l.ID == item.LeagueID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("league %s not found", item.LeagueID)
	}
	for _, m := range r.state.members {
		if m.LeagueID != item.LeagueID {
			continue
		}
		if m.UserID == item.UserID {
			return league.ErrAlreadyMember
		}
		if strings.EqualFold(m.DisplayName, item.DisplayName) {
			return league.ErrDuplicateDisplayName
		}
	}
	item.UserDeleted = false
	r.state.members = append(r.state.members, item)
	return nil
}

func (r leagueRepository) GetMember(_ context.Context, leagueID, userID string) (league.Membership, bool, error) {
	for _, m := range r.state.members {
		if m.LeagueID == leagueID && m.UserID == userID {
			return r.withUserState(m), true, nil
		}
	}
	return league.Membership{}, false, nil
}

func (r leagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Membership, error) {
	out := make([]league.Membership, 0)
	for _, m := range r.state.members {
		if m.LeagueID == leagueID {
			out = append(out, r.withUserState(m))
		}
	}
	return out, nil
}

func (r leagueRepository) ListMembershipsByUser(_ context.Context, userID string) ([]league.Membership, error) {
	out := make([]league.Membership, 0)
	for _, m := range r.state.members {
		if m.UserID == userID {
			out = append(out, r.withUserState(m))
		}
	}
	return out, nil
}

func (r leagueRepository) UpdateBackfill(_ context.Context, leagueID, userID string, backfill *league.Backfill) error {
	for i := range r.state.members {
		m := &r.state.members[i]
		if m.LeagueID == leagueID && m.UserID == userID {
			if backfill != nil {
				cp := *backfill
				backfill = &cp
			}
			m.Backfill = backfill
			return nil
		}
	}
	return fmt.Errorf("member %s of league %s not found", userID, leagueID)
}

func (r leagueRepository) ListWeekWinners(_ context.Context, leagueID string) ([]league.WeekWinner, error) {
	out := make([]league.WeekWinner, 0)
	for _, w := range r.state.winners {
		if w.LeagueID == leagueID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r leagueRepository) InsertWeekWinners(_ context.Context, items []league.WeekWinner) (int, error) {
	written := 0
	for _, item := range items {
		if r.hasWinner(item) {
			continue
		}
		r.state.winners = append(r.state.winners, item)
		written++
	}
	return written, nil
}

func (r leagueRepository) hasWinner(item league.WeekWinner) bool {
	for _, w := range r.state.winners {
		if w.LeagueID == item.LeagueID && w.Round == item.Round && w.UserID == item.UserID {
			return true
		}
	}
	return false
}

func (r leagueRepository) withUserState(m league.Membership) league.Membership {
	_, m.UserDeleted = r.state.deletedUsers[m.UserID]
	return m
}
