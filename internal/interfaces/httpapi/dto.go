package httpapi

import (
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/leaderboard"
	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/usecase"
)

type submitPredictionRequest struct {
	FixtureID     string `json:"fixture_id" validate:"required"`
	HomeTeamScore *int   `json:"home_team_score" validate:"required,min=0,max=99"`
	AwayTeamScore *int   `json:"away_team_score" validate:"required,min=0,max=99"`
	UserID        string `json:"user_id" validate:"omitempty,max=128"`
}

type createLeagueRequest struct {
	Name             string `json:"name" validate:"required"`
	DisplayName      string `json:"display_name" validate:"required"`
	IsOpen           bool   `json:"is_open"`
	LeaderboardScope string `json:"leaderboard_scope"`
}

type joinByCodeRequest struct {
	InviteCode  string `json:"invite_code" validate:"required,max=32"`
	DisplayName string `json:"display_name" validate:"required"`
}

type joinOpenRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
}

type updateLeagueRequest struct {
	Name             *string `json:"name" `
	IsOpen           *bool   `json:"is_open"`
	LeaderboardScope *string `json:"leaderboard_scope"`
}

type backfillRequest struct {
	Wins   int  `json:"wins" validate:"min=0"`
	Draws  int  `json:"draws" validate:"min=0"`
	Losses int  `json:"losses" validate:"min=0"`
	Points *int `json:"points" validate:"omitempty,min=0"`
}

type syncRequest struct {
	APIURL string `json:"api_url" validate:"omitempty,url"`
}

type fixtureDTO struct {
	ID        string     `json:"id"`
	Round     *int       `json:"round"`
	KickoffAt *time.Time `json:"kickoff_at"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	HomeScore *int       `json:"home_team_score"`
	AwayScore *int       `json:"away_team_score"`
	Completed bool       `json:"completed"`
}

type predictionDTO struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	FixtureID  string     `json:"fixture_id,omitempty"`
	HomeTeam   string     `json:"home_team"`
	AwayTeam   string     `json:"away_team"`
	HomeScore  int        `json:"home_team_score"`
	AwayScore  int        `json:"away_team_score"`
	Outcome    string     `json:"outcome,omitempty"`
	RoundLabel string     `json:"round_label,omitempty"`
	KickoffAt  *time.Time `json:"kickoff_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type leagueDTO struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	InviteCode       string    `json:"invite_code,omitempty"`
	IsOpen           bool      `json:"is_open"`
	LeaderboardScope string    `json:"leaderboard_scope"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
}

type myLeagueDTO struct {
	leagueDTO
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type backfillDTO struct {
	Wins   int  `json:"wins"`
	Draws  int  `json:"draws"`
	Losses int  `json:"losses"`
	Points *int `json:"points,omitempty"`
}

type membershipDTO struct {
	LeagueID    string       `json:"league_id"`
	UserID      string       `json:"user_id"`
	DisplayName string       `json:"display_name"`
	Role        string       `json:"role"`
	Backfill    *backfillDTO `json:"backfill,omitempty"`
	JoinedAt    time.Time    `json:"joined_at"`
}

type standingDTO struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Wins        int    `json:"wins"`
	Draws       int    `json:"draws"`
	Losses      int    `json:"losses"`
	Points      int    `json:"points"`
	Played      int    `json:"played"`
	WeeksWon    int    `json:"weeks_won"`
}

type leaderboardDTO struct {
	LeagueID         string        `json:"league_id"`
	LeagueName       string        `json:"league_name"`
	LeaderboardScope string        `json:"leaderboard_scope"`
	CurrentRound     *int          `json:"current_round"`
	Standings        []standingDTO `json:"standings"`
	Unresolved       int           `json:"unresolved_predictions"`
	ComputedAt       time.Time     `json:"computed_at"`
}

func fixtureToDTO(f fixture.Fixture) fixtureDTO {
	return fixtureDTO{
		ID:        f.ID,
		Round:     f.Round,
		KickoffAt: f.KickoffAt,
		HomeTeam:  f.HomeTeam,
		AwayTeam:  f.AwayTeam,
		HomeScore: f.HomeScore,
		AwayScore: f.AwayScore,
		Completed: f.Completed,
	}
}

func predictionToDTO(p prediction.Prediction) predictionDTO {
	return predictionDTO{
		ID:         p.ID,
		UserID:     p.UserID,
		FixtureID:  p.FixtureID,
		HomeTeam:   p.HomeTeam,
		AwayTeam:   p.AwayTeam,
		HomeScore:  p.HomeScore,
		AwayScore:  p.AwayScore,
		Outcome:    string(p.Outcome),
		RoundLabel: p.RoundLabel,
		KickoffAt:  p.KickoffAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// leagueToDTO shows the invite code only to admins.
func leagueToDTO(l league.League, showInvite bool) leagueDTO {
	out := leagueDTO{
		ID:               l.ID,
		Name:             l.Name,
		IsOpen:           l.IsOpen,
		LeaderboardScope: string(league.NormalizeScope(string(l.Scope))),
		CreatedBy:        l.CreatedBy,
		CreatedAt:        l.CreatedAt,
	}
	if showInvite {
		out.InviteCode = l.InviteCode
	}
	return out
}

func myLeagueToDTO(item usecase.MyLeague) myLeagueDTO {
	return myLeagueDTO{
		leagueDTO:   leagueToDTO(item.League, item.Membership.IsAdmin()),
		DisplayName: item.Membership.DisplayName,
		Role:        string(item.Membership.Role),
	}
}

func membershipToDTO(m league.Membership) membershipDTO {
	out := membershipDTO{
		LeagueID:    m.LeagueID,
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Role:        string(m.Role),
		JoinedAt:    m.JoinedAt,
	}
	if m.Backfill != nil {
		out.Backfill = &backfillDTO{
			Wins:   m.Backfill.Wins,
			Draws:  m.Backfill.Draws,
			Losses: m.Backfill.Losses,
			Points: m.Backfill.Points,
		}
	}
	return out
}

func standingToDTO(s leaderboard.Standing) standingDTO {
	return standingDTO{
		Rank:        s.Rank,
		UserID:      s.UserID,
		DisplayName: s.DisplayName,
		Role:        string(s.Role),
		Wins:        s.Wins,
		Draws:       s.Draws,
		Losses:      s.Losses,
		Points:      s.Points,
		Played:      s.Played,
		WeeksWon:    s.WeeksWon,
	}
}

func leaderboardToDTO(view usecase.LeaderboardView) leaderboardDTO {
	standings := make([]standingDTO, 0, len(view.Standings))
	for _, s := range view.Standings {
		standings = append(standings, standingToDTO(s))
	}
	return leaderboardDTO{
		LeagueID:         view.League.ID,
		LeagueName:       view.League.Name,
		LeaderboardScope: string(view.Scope),
		CurrentRound:     view.CurrentRound,
		Standings:        standings,
		Unresolved:       view.Unresolved,
		ComputedAt:       view.ComputedAt,
	}
}
