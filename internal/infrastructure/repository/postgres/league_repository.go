package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/score-predictor/internal/domain/league"
	qb "github.com/riskibarqy/score-predictor/internal/platform/querybuilder"
)

const (
	constraintInviteCode  = "uq_leagues_invite_code"
	constraintMembership  = "pk_league_memberships"
	constraintDisplayName = "uq_league_memberships_display_name"
)

type leagueRepository struct {
	db sqlx.ExtContext
}

func NewLeagueRepository(db *sqlx.DB) league.Repository {
	return leagueRepository{db: db}
}

func (r leagueRepository) Create(ctx context.Context, item league.League) error {
	query, args, err := qb.InsertModel("leagues", leagueToModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert league query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintInviteCode {
			return league.ErrDuplicateInviteCode
		}
		return fmt.Errorf("insert league %s: %w", item.ID, err)
	}
	return nil
}

func (r leagueRepository) Update(ctx context.Context, item league.League) error {
	query, args, err := qb.Update("leagues").
		Set("name", item.Name).
		Set("is_open", item.IsOpen).
		Set("leaderboard_scope", string(league.NormalizeScope(string(item.Scope)))).
		Set("updated_at", item.UpdatedAt).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update league query: %w", err)
	}
	return execOne(ctx, r.db, query, args, "league "+item.ID)
}

func (r leagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	return r.getLeague(ctx, qb.Eq("l.id", leagueID))
}

func (r leagueRepository) GetByInviteCode(ctx context.Context, inviteCode string) (league.League, bool, error) {
	return r.getLeague(ctx, qb.Eq("l.invite_code", inviteCode))
}

func (r leagueRepository) ListAll(ctx context.Context) ([]league.League, error) {
	return r.selectLeagues(ctx, qb.Select(leagueColumns...).From("leagues l").
		OrderBy("l.created_at ASC", "l.id ASC"))
}

func (r leagueRepository) ListOpen(ctx context.Context, query string, limit int) ([]league.League, error) {
	conditions := []qb.Condition{qb.Eq("l.is_open", true)}
	if needle := strings.TrimSpace(query); needle != "" {
		conditions = append(conditions, qb.ILike("l.name", containsPattern(needle)))
	}
	builder := qb.Select(leagueColumns...).From("leagues l").
		Where(conditions...).
		OrderBy("lower(l.name) ASC", "l.id ASC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	return r.selectLeagues(ctx, builder)
}

func (r leagueRepository) ListByUser(ctx context.Context, userID string) ([]league.League, error) {
	return r.selectLeagues(ctx, qb.Select(leagueColumns...).
		From("leagues l JOIN league_memberships m ON m.league_id = l.id").
		Where(qb.Eq("m.user_id", userID)).
		OrderBy("m.joined_at ASC", "l.id ASC"))
}

func (r leagueRepository) AddMember(ctx context.Context, item league.Membership) error {
	query, args, err := qb.InsertModel("league_memberships", membershipToModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert membership query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case constraintMembership:
				return league.ErrAlreadyMember
			case constraintDisplayName:
				return league.ErrDuplicateDisplayName
			}
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("league %s not found: %w", item.LeagueID, err)
		}
		return fmt.Errorf("insert membership league=%s user=%s: %w", item.LeagueID, item.UserID, err)
	}
	return nil
}

func (r leagueRepository) GetMember(ctx context.Context, leagueID, userID string) (league.Membership, bool, error) {
	query, args, err := qb.Select(membershipColumns...).From(membershipsWithUsers).
		Where(qb.Eq("m.league_id", leagueID), qb.Eq("m.user_id", userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.Membership{}, false, fmt.Errorf("build get membership query: %w", err)
	}

	var row membershipTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.Membership{}, false, nil
		}
		return league.Membership{}, false, fmt.Errorf("get membership league=%s user=%s: %w", leagueID, userID, err)
	}
	return row.toDomain(), true, nil
}

func (r leagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Membership, error) {
	return r.selectMemberships(ctx, qb.Select(membershipColumns...).From(membershipsWithUsers).
		Where(qb.Eq("m.league_id", leagueID)).
		OrderBy("m.joined_at ASC", "m.user_id ASC"))
}

func (r leagueRepository) ListMembershipsByUser(ctx context.Context, userID string) ([]league.Membership, error) {
	return r.selectMemberships(ctx, qb.Select(membershipColumns...).From(membershipsWithUsers).
		Where(qb.Eq("m.user_id", userID)).
		OrderBy("m.joined_at ASC", "m.league_id ASC"))
}

func (r leagueRepository) UpdateBackfill(ctx context.Context, leagueID, userID string, backfill *league.Backfill) error {
	cols := backfillToColumns(backfill)
	query, args, err := qb.Update("league_memberships").
		Set("backfill_wins", cols.Wins).
		Set("backfill_draws", cols.Draws).
		Set("backfill_losses", cols.Losses).
		Set("backfill_points", cols.Points).
		Where(qb.Eq("league_id", leagueID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update backfill query: %w", err)
	}
	return execOne(ctx, r.db, query, args, fmt.Sprintf("member %s of league %s", userID, leagueID))
}

func (r leagueRepository) ListWeekWinners(ctx context.Context, leagueID string) ([]league.WeekWinner, error) {
	query, args, err := qb.Select("league_id", "fixture_round", "user_id", "points", "created_at").
		From("league_week_winners").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("fixture_round ASC", "user_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list week winners query: %w", err)
	}

	var rows []weekWinnerTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list week winners league=%s: %w", leagueID, err)
	}
	out := make([]league.WeekWinner, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r leagueRepository) InsertWeekWinners(ctx context.Context, items []league.WeekWinner) (int, error) {
	written := 0
	for _, item := range items {
		query, args, err := qb.InsertModel("league_week_winners", weekWinnerTableModel{
			LeagueID:  item.LeagueID,
			Round:     item.Round,
			UserID:    item.UserID,
			Points:    item.Points,
			CreatedAt: item.CreatedAt,
		}, "ON CONFLICT (league_id, fixture_round, user_id) DO NOTHING")
		if err != nil {
			return written, fmt.Errorf("build insert week winner query: %w", err)
		}
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return written, fmt.Errorf("insert week winner league=%s round=%d: %w", item.LeagueID, item.Round, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return written, fmt.Errorf("insert week winner rows affected: %w", err)
		}
		written += int(affected)
	}
	return written, nil
}

func (r leagueRepository) getLeague(ctx context.Context, cond qb.Condition) (league.League, bool, error) {
	query, args, err := qb.Select(leagueColumns...).From("leagues l").
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r leagueRepository) selectLeagues(ctx context.Context, builder *qb.SelectBuilder) ([]league.League, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r leagueRepository) selectMemberships(ctx context.Context, builder *qb.SelectBuilder) ([]league.Membership, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list memberships query: %w", err)
	}

	var rows []membershipTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	out := make([]league.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
