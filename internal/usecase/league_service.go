package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/uow"
	idgen "github.com/riskibarqy/score-predictor/internal/platform/id"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
)

const (
	maxLeagueNameLength  = 80
	maxDisplayNameLength = 40
	inviteCodeAttempts   = 5
	openLeagueListLimit  = 50
)

type CreateLeagueInput struct {
	UserID      string
	Name        string
	DisplayName string
	IsOpen      bool
	Scope       string
}

type JoinLeagueByCodeInput struct {
	UserID      string
	InviteCode  string
	DisplayName string
}

type JoinOpenLeagueInput struct {
	UserID      string
	LeagueID    string
	DisplayName string
}

// UpdateLeagueInput carries optional changes; nil fields are left as is.
type UpdateLeagueInput struct {
	UserID   string
	LeagueID string
	Name     *string
	IsOpen   *bool
	Scope    *string
}

type SetMemberBackfillInput struct {
	ActorID  string
	LeagueID string
	UserID   string
	Wins     int
	Draws    int
	Losses   int
	Points   *int
}

// MyLeague is a league together with the caller's membership in it.
type MyLeague struct {
	League     league.League
	Membership league.Membership
}

type LeagueService struct {
	units       uow.Factory
	idGen       idgen.Generator
	inviteCodes idgen.Generator
	leaderboard leaderboardInvalidator
	logger      *logging.Logger
	now         func() time.Time
}

func NewLeagueService(
	units uow.Factory,
	idGen idgen.Generator,
	inviteCodes idgen.Generator,
	leaderboard leaderboardInvalidator,
	logger *logging.Logger,
) *LeagueService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueService{
		units:       units,
		idGen:       idGen,
		inviteCodes: inviteCodes,
		leaderboard: leaderboard,
		logger:      logger.Named("league"),
		now:         time.Now,
	}
}

// Create makes a league with a fresh invite code and enrolls the creator as
// its admin.
func (s *LeagueService) Create(ctx context.Context, input CreateLeagueInput) (league.League, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	if input.UserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := validateLeagueName(input.Name); err != nil {
		return league.League{}, err
	}
	displayName, err := normalizeDisplayName(input.DisplayName)
	if err != nil {
		return league.League{}, err
	}
	scope, err := parseScope(input.Scope)
	if err != nil {
		return league.League{}, err
	}

	leagueID, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	for attempt := 1; ; attempt++ {
		code, err := s.inviteCodes.NewID()
		if err != nil {
			return league.League{}, fmt.Errorf("generate invite code: %w", err)
		}

		now := s.now().UTC()
		item := league.League{
			ID:         leagueID,
			Name:       input.Name,
			InviteCode: code,
			IsOpen:     input.IsOpen,
			Scope:      scope,
			CreatedBy:  input.UserID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		err = withinUnitOfWork(ctx, s.units, func(unit uow.UnitOfWork) error {
			if err := unit.Leagues().Create(ctx, item); err != nil {
				return fmt.Errorf("create league: %w", err)
			}
			return addMember(ctx, unit.Leagues(), league.Membership{
				LeagueID:    item.ID,
				UserID:      input.UserID,
				DisplayName: displayName,
				Role:        league.RoleAdmin,
				JoinedAt:    now,
			})
		})
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "league created", "league_id", item.ID, "user_id", input.UserID, "scope", item.Scope)
			return item, nil
		case errors.Is(err, league.ErrDuplicateInviteCode) && attempt < inviteCodeAttempts:
			continue
		default:
			return league.League{}, err
		}
	}
}

// JoinByCode adds the user to the league behind an invite code, open or not.
func (s *LeagueService) JoinByCode(ctx context.Context, input JoinLeagueByCodeInput) (league.Membership, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	code := idgen.NormalizeInviteCode(input.InviteCode)
	if input.UserID == "" {
		return league.Membership{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if code == "" {
		return league.Membership{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}
	displayName, err := normalizeDisplayName(input.DisplayName)
	if err != nil {
		return league.Membership{}, err
	}

	var member league.Membership
	err = withinUnitOfWork(ctx, s.units, func(unit uow.UnitOfWork) error {
		item, exists, err := unit.Leagues().GetByInviteCode(ctx, code)
		if err != nil {
			return fmt.Errorf("get league by invite code: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: invite code not found", ErrNotFound)
		}
		member = league.Membership{
			LeagueID:    item.ID,
			UserID:      input.UserID,
			DisplayName: displayName,
			Role:        league.RolePlayer,
			JoinedAt:    s.now().UTC(),
		}
		return addMember(ctx, unit.Leagues(), member)
	})
	if err != nil {
		return league.Membership{}, err
	}

	s.invalidate(ctx, member.LeagueID)
	return member, nil
}

// JoinOpen adds the user to an open league by id.
func (s *LeagueService) JoinOpen(ctx context.Context, input JoinOpenLeagueInput) (league.Membership, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.UserID == "" || input.LeagueID == "" {
		return league.Membership{}, fmt.Errorf("%w: user id and league id are required", ErrInvalidInput)
	}
	displayName, err := normalizeDisplayName(input.DisplayName)
	if err != nil {
		return league.Membership{}, err
	}

	var member league.Membership
	err = withinUnitOfWork(ctx, s.units, func(unit uow.UnitOfWork) error {
		item, exists, err := unit.Leagues().GetByID(ctx, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get league: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: league not found", ErrNotFound)
		}
		if !item.IsOpen {
			return fmt.Errorf("%w: league is invite only", ErrForbidden)
		}
		member = league.Membership{
			LeagueID:    item.ID,
			UserID:      input.UserID,
			DisplayName: displayName,
			Role:        league.RolePlayer,
			JoinedAt:    s.now().UTC(),
		}
		return addMember(ctx, unit.Leagues(), member)
	})
	if err != nil {
		return league.Membership{}, err
	}

	s.invalidate(ctx, member.LeagueID)
	return member, nil
}

// ListOpen lists open leagues whose name contains query, case-insensitively.
func (s *LeagueService) ListOpen(ctx context.Context, query string) ([]league.League, error) {
	query = strings.TrimSpace(query)
	var items []league.League
	err := readOnly(ctx, s.units, func(repos uow.Repositories) error {
		var err error
		items, err = repos.Leagues().ListOpen(ctx, query, openLeagueListLimit)
		if err != nil {
			return fmt.Errorf("list open leagues: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *LeagueService) ListMine(ctx context.Context, userID string) ([]MyLeague, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var out []MyLeague
	err := readOnly(ctx, s.units, func(repos uow.Repositories) error {
		memberships, err := repos.Leagues().ListMembershipsByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list memberships: %w", err)
		}
		out = make([]MyLeague, 0, len(memberships))
		for _, m := range memberships {
			item, exists, err := repos.Leagues().GetByID(ctx, m.LeagueID)
			if err != nil {
				return fmt.Errorf("get league %s: %w", m.LeagueID, err)
			}
			if !exists {
				continue
			}
			out = append(out, MyLeague{League: item, Membership: m})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes a league's settings. Only its admins may do so.
func (s *LeagueService) Update(ctx context.Context, input UpdateLeagueInput) (league.League, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.UserID == "" || input.LeagueID == "" {
		return league.League{}, fmt.Errorf("%w: user id and league id are required", ErrInvalidInput)
	}
	if input.Name == nil && input.IsOpen == nil && input.Scope == nil {
		return league.League{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	var item league.League
	err := withinUnitOfWork(ctx, s.units, func(unit uow.UnitOfWork) error {
		var err error
		item, err = loadAdminLeague(ctx, unit.Leagues(), input.LeagueID, input.UserID)
		if err != nil {
			return err
		}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if err := validateLeagueName(name); err != nil {
				return err
			}
			item.Name = name
		}
		if input.IsOpen != nil {
			item.IsOpen = *input.IsOpen
		}
		if input.Scope != nil {
			scope, err := parseScope(*input.Scope)
			if err != nil {
				return err
			}
			item.Scope = scope
		}
		item.UpdatedAt = s.now().UTC()
		if err := unit.Leagues().Update(ctx, item); err != nil {
			return fmt.Errorf("update league: %w", err)
		}
		return nil
	})
	if err != nil {
		return league.League{}, err
	}

	s.invalidate(ctx, item.ID)
	return item, nil
}

// SetMemberBackfill stores legacy totals for a member. Only admins of the
// league may do so.
func (s *LeagueService) SetMemberBackfill(ctx context.Context, input SetMemberBackfillInput) (league.Membership, error) {
	input.ActorID = strings.TrimSpace(input.ActorID)
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.UserID = strings.TrimSpace(input.UserID)
	if input.ActorID == "" || input.LeagueID == "" || input.UserID == "" {
		return league.Membership{}, fmt.Errorf("%w: actor, league and user ids are required", ErrInvalidInput)
	}
	if input.Wins < 0 || input.Draws < 0 || input.Losses < 0 || (input.Points != nil && *input.Points < 0) {
		return league.Membership{}, fmt.Errorf("%w: backfill values must not be negative", ErrInvalidInput)
	}

	backfill := &league.Backfill{
		Wins:   input.Wins,
		Draws:  input.Draws,
		Losses: input.Losses,
		Points: input.Points,
	}

	var member league.Membership
	err := withinUnitOfWork(ctx, s.units, func(unit uow.UnitOfWork) error {
		if _, err := loadAdminLeague(ctx, unit.Leagues(), input.LeagueID, input.ActorID); err != nil {
			return err
		}
		current, exists, err := unit.Leagues().GetMember(ctx, input.LeagueID, input.UserID)
		if err != nil {
			return fmt.Errorf("get member: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: member not found", ErrNotFound)
		}
		if err := unit.Leagues().UpdateBackfill(ctx, input.LeagueID, input.UserID, backfill); err != nil {
			return fmt.Errorf("update backfill: %w", err)
		}
		current.Backfill = backfill
		member = current
		return nil
	})
	if err != nil {
		return league.Membership{}, err
	}

	s.logger.InfoContext(ctx, "member backfill set",
		"league_id", input.LeagueID,
		"user_id", input.UserID,
		"actor_id", input.ActorID,
	)
	s.invalidate(ctx, input.LeagueID)
	return member, nil
}

func (s *LeagueService) invalidate(ctx context.Context, leagueID string) {
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx, leagueID)
	}
}

func loadAdminLeague(ctx context.Context, repo league.Repository, leagueID, userID string) (league.League, error) {
	item, exists, err := repo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league not found", ErrNotFound)
	}
	member, isMember, err := repo.GetMember(ctx, leagueID, userID)
	if err != nil {
		return league.League{}, fmt.Errorf("get member: %w", err)
	}
	if !isMember || !member.IsAdmin() {
		return league.League{}, fmt.Errorf("%w: league admin required", ErrForbidden)
	}
	return item, nil
}

func addMember(ctx context.Context, repo league.Repository, member league.Membership) error {
	err := repo.AddMember(ctx, member)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, league.ErrAlreadyMember):
		return fmt.Errorf("%w: already a member of this league", ErrInvalidInput)
	case errors.Is(err, league.ErrDuplicateDisplayName):
		return fmt.Errorf("%w: display name %q is taken in this league", ErrInvalidInput, member.DisplayName)
	default:
		return fmt.Errorf("add league member: %w", err)
	}
}

func validateLeagueName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: league name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxLeagueNameLength {
		return fmt.Errorf("%w: league name must be at most %d characters", ErrInvalidInput, maxLeagueNameLength)
	}
	return nil
}

func normalizeDisplayName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLength {
		return "", fmt.Errorf("%w: display name must be at most %d characters", ErrInvalidInput, maxDisplayNameLength)
	}
	return name, nil
}

// parseScope accepts an empty value as full_season and rejects unknown ones.
func parseScope(value string) (league.Scope, error) {
	if strings.TrimSpace(value) == "" {
		return league.ScopeFullSeason, nil
	}
	if !league.IsKnownScope(value) {
		return "", fmt.Errorf("%w: unknown leaderboard scope %q", ErrInvalidInput, value)
	}
	return league.NormalizeScope(value), nil
}
