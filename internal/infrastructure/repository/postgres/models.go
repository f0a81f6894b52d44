package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/domain/scoring"
)

type fixtureTableModel struct {
	ID        string        `db:"id"`
	Round     sql.NullInt64 `db:"fixture_round"`
	KickoffAt sql.NullTime  `db:"fixture_date"`
	HomeTeam  string        `db:"fixture_home_team"`
	AwayTeam  string        `db:"fixture_away_team"`
	HomeScore sql.NullInt64 `db:"actual_home_score"`
	AwayScore sql.NullInt64 `db:"actual_away_score"`
	Completed bool          `db:"is_completed"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

var fixtureColumns = []string{
	"id", "fixture_round", "fixture_date", "fixture_home_team", "fixture_away_team",
	"actual_home_score", "actual_away_score", "is_completed", "created_at", "updated_at",
}

func fixtureToModel(f fixture.Fixture) fixtureTableModel {
	return fixtureTableModel{
		ID:        f.ID,
		Round:     nullInt(f.Round),
		KickoffAt: nullTime(f.KickoffAt),
		HomeTeam:  f.HomeTeam,
		AwayTeam:  f.AwayTeam,
		HomeScore: nullInt(f.HomeScore),
		AwayScore: nullInt(f.AwayScore),
		Completed: f.Completed,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func (m fixtureTableModel) toDomain() fixture.Fixture {
	return fixture.Fixture{
		ID:        m.ID,
		Round:     intPtrFromNull(m.Round),
		KickoffAt: timePtrFromNull(m.KickoffAt),
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		HomeScore: intPtrFromNull(m.HomeScore),
		AwayScore: intPtrFromNull(m.AwayScore),
		Completed: m.Completed,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// gameTableModel stores a prediction. The table keeps its historical name.
type gameTableModel struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	FixtureID  sql.NullString `db:"fixture_id"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	HomeScore  int            `db:"home_team_score"`
	AwayScore  int            `db:"away_team_score"`
	Result     sql.NullString `db:"game_result"`
	RoundLabel string         `db:"game_week_name"`
	KickoffAt  sql.NullTime   `db:"game_week"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

var gameColumns = []string{
	"id", "user_id", "fixture_id", "home_team", "away_team", "home_team_score", "away_team_score",
	"game_result", "game_week_name", "game_week", "created_at", "updated_at",
}

func predictionToModel(p prediction.Prediction) gameTableModel {
	return gameTableModel{
		ID:         p.ID,
		UserID:     p.UserID,
		FixtureID:  nullString(p.FixtureID),
		HomeTeam:   p.HomeTeam,
		AwayTeam:   p.AwayTeam,
		HomeScore:  p.HomeScore,
		AwayScore:  p.AwayScore,
		Result:     nullString(string(p.Outcome)),
		RoundLabel: p.RoundLabel,
		KickoffAt:  nullTime(p.KickoffAt),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func (m gameTableModel) toDomain() prediction.Prediction {
	return prediction.Prediction{
		ID:         m.ID,
		UserID:     m.UserID,
		FixtureID:  m.FixtureID.String,
		HomeTeam:   m.HomeTeam,
		AwayTeam:   m.AwayTeam,
		HomeScore:  m.HomeScore,
		AwayScore:  m.AwayScore,
		Outcome:    scoring.ParseOutcome(m.Result.String),
		RoundLabel: m.RoundLabel,
		KickoffAt:  timePtrFromNull(m.KickoffAt),
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

type leagueTableModel struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	InviteCode string    `db:"invite_code"`
	IsOpen     bool      `db:"is_open"`
	Scope      string    `db:"leaderboard_scope"`
	CreatedBy  string    `db:"created_by"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

var leagueColumns = []string{
	"l.id", "l.name", "l.invite_code", "l.is_open", "l.leaderboard_scope", "l.created_by", "l.created_at", "l.updated_at",
}

func leagueToModel(l league.League) leagueTableModel {
	return leagueTableModel{
		ID:         l.ID,
		Name:       l.Name,
		InviteCode: l.InviteCode,
		IsOpen:     l.IsOpen,
		Scope:      string(league.NormalizeScope(string(l.Scope))),
		CreatedBy:  l.CreatedBy,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{
		ID:         m.ID,
		Name:       m.Name,
		InviteCode: m.InviteCode,
		IsOpen:     m.IsOpen,
		Scope:      league.NormalizeScope(m.Scope),
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

type membershipInsertModel struct {
	LeagueID       string        `db:"league_id"`
	UserID         string        `db:"user_id"`
	DisplayName    string        `db:"display_name"`
	Role           string        `db:"role"`
	BackfillWins   sql.NullInt64 `db:"backfill_wins"`
	BackfillDraws  sql.NullInt64 `db:"backfill_draws"`
	BackfillLosses sql.NullInt64 `db:"backfill_losses"`
	BackfillPoints sql.NullInt64 `db:"backfill_points"`
	JoinedAt       time.Time     `db:"joined_at"`
}

type membershipTableModel struct {
	membershipInsertModel
	UserDeleted bool `db:"user_deleted"`
}

var membershipColumns = []string{
	"m.league_id", "m.user_id", "m.display_name", "m.role",
	"m.backfill_wins", "m.backfill_draws", "m.backfill_losses", "m.backfill_points", "m.joined_at",
	"(u.deleted_at IS NOT NULL) AS user_deleted",
}

const membershipsWithUsers = "league_memberships m LEFT JOIN users u ON u.id = m.user_id"

type backfillColumns struct {
	Wins   sql.NullInt64
	Draws  sql.NullInt64
	Losses sql.NullInt64
	Points sql.NullInt64
}

// backfillToColumns stores a missing backfill as all-null columns; wins
// being null marks the absence.
func backfillToColumns(b *league.Backfill) backfillColumns {
	if b == nil {
		return backfillColumns{}
	}
	wins, draws, losses := b.Wins, b.Draws, b.Losses
	return backfillColumns{
		Wins:   nullInt(&wins),
		Draws:  nullInt(&draws),
		Losses: nullInt(&losses),
		Points: nullInt(b.Points),
	}
}

func membershipToModel(m league.Membership) membershipInsertModel {
	cols := backfillToColumns(m.Backfill)
	return membershipInsertModel{
		LeagueID:       m.LeagueID,
		UserID:         m.UserID,
		DisplayName:    m.DisplayName,
		Role:           string(m.Role),
		BackfillWins:   cols.Wins,
		BackfillDraws:  cols.Draws,
		BackfillLosses: cols.Losses,
		BackfillPoints: cols.Points,
		JoinedAt:       m.JoinedAt,
	}
}

func (m membershipTableModel) toDomain() league.Membership {
	out := league.Membership{
		LeagueID:    m.LeagueID,
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Role:        league.Role(m.Role),
		UserDeleted: m.UserDeleted,
		JoinedAt:    m.JoinedAt.UTC(),
	}
	if m.BackfillWins.Valid {
		out.Backfill = &league.Backfill{
			Wins:   int(m.BackfillWins.Int64),
			Draws:  int(m.BackfillDraws.Int64),
			Losses: int(m.BackfillLosses.Int64),
			Points: intPtrFromNull(m.BackfillPoints),
		}
	}
	return out
}

type weekWinnerTableModel struct {
	LeagueID  string    `db:"league_id"`
	Round     int       `db:"fixture_round"`
	UserID    string    `db:"user_id"`
	Points    int       `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

func (m weekWinnerTableModel) toDomain() league.WeekWinner {
	return league.WeekWinner{
		LeagueID:  m.LeagueID,
		Round:     m.Round,
		UserID:    m.UserID,
		Points:    m.Points,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}

func timePtrFromNull(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	out := v.Time.UTC()
	return &out
}
