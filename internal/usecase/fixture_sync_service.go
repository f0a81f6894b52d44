package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/uow"
	idgen "github.com/riskibarqy/score-predictor/internal/platform/id"
	"github.com/riskibarqy/score-predictor/internal/platform/logging"
)

type SyncMode string

const (
	SyncModeSchedule SyncMode = "schedule"
	SyncModeScores   SyncMode = "scores"
)

// ExternalMatch is one upstream match record after field extraction.
type ExternalMatch struct {
	Round     *int
	KickoffAt *time.Time
	HomeTeam  string
	AwayTeam  string
	HomeScore *int
	AwayScore *int
	Completed bool
}

// FeedBatch is the full result of walking every page of the feed.
type FeedBatch struct {
	Matches   []ExternalMatch
	Pages     int
	Skipped   int
	Truncated bool
}

// FixtureFeed fetches all pages of a match feed. Implementations must not
// return partial data together with an error.
type FixtureFeed interface {
	FetchMatches(ctx context.Context, sourceURL string) (FeedBatch, error)
}

type SyncSummary struct {
	Mode      SyncMode `json:"mode"`
	Added     int      `json:"added"`
	Updated   int      `json:"updated"`
	Seen      int      `json:"seen"`
	NotFound  int      `json:"not_found"`
	Skipped   int      `json:"skipped"`
	Pages     int      `json:"pages"`
	Truncated bool     `json:"truncated"`
}

// leagueRefresher recomputes standings after results change.
type leagueRefresher interface {
	RefreshAll(ctx context.Context) (RefreshSummary, error)
}

type FixtureSyncService struct {
	feed       FixtureFeed
	units      uow.Factory
	idGen      idgen.Generator
	defaultURL string
	refresher  leagueRefresher
	logger     *logging.Logger
	now        func() time.Time
}

func NewFixtureSyncService(
	feed FixtureFeed,
	units uow.Factory,
	idGen idgen.Generator,
	defaultURL string,
	refresher leagueRefresher,
	logger *logging.Logger,
) *FixtureSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureSyncService{
		feed:       feed,
		units:      units,
		idGen:      idGen,
		defaultURL: strings.TrimSpace(defaultURL),
		refresher:  refresher,
		logger:     logger.Named("fixture_sync"),
		now:        time.Now,
	}
}

// SyncFixtures upserts the schedule: rounds, kickoff times and team names.
func (s *FixtureSyncService) SyncFixtures(ctx context.Context, apiURL string) (SyncSummary, error) {
	return s.sync(ctx, apiURL, SyncModeSchedule)
}

// SyncScores writes final scores and completion state onto known fixtures.
func (s *FixtureSyncService) SyncScores(ctx context.Context, apiURL string) (SyncSummary, error) {
	return s.sync(ctx, apiURL, SyncModeScores)
}

func (s *FixtureSyncService) sync(ctx context.Context, apiURL string, mode SyncMode) (summary SyncSummary, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureSyncService.sync", attribute.String("sync.mode", string(mode)))
	defer func() { finishSpan(span, err) }()

	sourceURL := strings.TrimSpace(apiURL)
	if sourceURL == "" {
		sourceURL = s.defaultURL
	}
	if sourceURL == "" {
		return SyncSummary{}, fmt.Errorf("%w: feed url is required", ErrInvalidInput)
	}

	summary = SyncSummary{Mode: mode}
	batch, err := s.feed.FetchMatches(ctx, sourceURL)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("%w: fetch fixture feed: %w", ErrDependencyUnavailable, err)
	}
	summary.Pages = batch.Pages
	summary.Skipped = batch.Skipped
	summary.Truncated = batch.Truncated
	if batch.Truncated {
		s.logger.WarnContext(ctx, "fixture feed truncated at page cap", "mode", mode, "pages", batch.Pages)
	}

	err = withinUnitOfWork(ctx, s.units, func(unit uow.UnitOfWork) error {
		existing, err := unit.Fixtures().List(ctx)
		if err != nil {
			return fmt.Errorf("list fixtures: %w", err)
		}

		var applyErr error
		switch mode {
		case SyncModeScores:
			applyErr = s.applyScores(ctx, unit.Fixtures(), existing, batch.Matches, &summary)
		default:
			applyErr = s.applySchedule(ctx, unit.Fixtures(), existing, batch.Matches, &summary)
		}
		return applyErr
	})
	if err != nil {
		return SyncSummary{}, err
	}

	s.logger.InfoContext(ctx, "fixture sync finished",
		"mode", mode,
		"added", summary.Added,
		"updated", summary.Updated,
		"seen", summary.Seen,
		"not_found", summary.NotFound,
		"skipped", summary.Skipped,
		"pages", summary.Pages,
	)

	if s.refresher != nil && summary.Added+summary.Updated > 0 {
		if _, refreshErr := s.refresher.RefreshAll(ctx); refreshErr != nil {
			s.logger.WarnContext(ctx, "league refresh after fixture sync failed", "mode", mode, "error", refreshErr)
		}
	}

	return summary, nil
}

// scheduleIndex finds existing fixtures by round+teams, teams+date and
// teams alone, using normalized team names.
type scheduleIndex struct {
	byRound map[string]*fixture.Fixture
	byDate  map[string]*fixture.Fixture
	byPair  map[string]*fixture.Fixture
}

func newScheduleIndex(items []fixture.Fixture) *scheduleIndex {
	idx := &scheduleIndex{
		byRound: make(map[string]*fixture.Fixture, len(items)),
		byDate:  make(map[string]*fixture.Fixture, len(items)),
		byPair:  make(map[string]*fixture.Fixture, len(items)),
	}
	for i := range items {
		idx.add(&items[i])
	}
	return idx
}

func pairKey(home, away string) string {
	return fixture.NormalizeTeamName(home) + "|" + fixture.NormalizeTeamName(away)
}

func (idx *scheduleIndex) add(f *fixture.Fixture) {
	pair := pairKey(f.HomeTeam, f.AwayTeam)
	if f.Round != nil {
		key := fmt.Sprintf("%d|%s", *f.Round, pair)
		if _, ok := idx.byRound[key]; !ok {
			idx.byRound[key] = f
		}
	}
	if f.KickoffAt != nil {
		key := f.KickoffAt.UTC().Format(time.DateOnly) + "|" + pair
		if _, ok := idx.byDate[key]; !ok {
			idx.byDate[key] = f
		}
	}
	if _, ok := idx.byPair[pair]; !ok {
		idx.byPair[pair] = f
	}
}

func (idx *scheduleIndex) find(m ExternalMatch) *fixture.Fixture {
	pair := pairKey(m.HomeTeam, m.AwayTeam)
	if m.Round != nil {
		if f, ok := idx.byRound[fmt.Sprintf("%d|%s", *m.Round, pair)]; ok {
			return f
		}
	}
	if m.KickoffAt != nil {
		if f, ok := idx.byDate[m.KickoffAt.UTC().Format(time.DateOnly)+"|"+pair]; ok {
			return f
		}
	}
	return idx.byPair[pair]
}

func (s *FixtureSyncService) applySchedule(ctx context.Context, repo fixture.Repository, existing []fixture.Fixture, matches []ExternalMatch, summary *SyncSummary) error {
	idx := newScheduleIndex(existing)
	now := s.now().UTC()

	for _, m := range matches {
		summary.Seen++

		current := idx.find(m)
		if current == nil {
			id, err := s.idGen.NewID()
			if err != nil {
				return fmt.Errorf("generate fixture id: %w", err)
			}
			created := &fixture.Fixture{
				ID:        id,
				Round:     copyInt(m.Round),
				KickoffAt: utcTime(m.KickoffAt),
				HomeTeam:  m.HomeTeam,
				AwayTeam:  m.AwayTeam,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.Insert(ctx, *created); err != nil {
				return fmt.Errorf("insert fixture %s v %s: %w", m.HomeTeam, m.AwayTeam, err)
			}
			idx.add(created)
			summary.Added++
			continue
		}

		next := *current
		if m.Round != nil && !sameInt(next.Round, m.Round) {
			next.Round = copyInt(m.Round)
		}
		if m.KickoffAt != nil && !sameTime(next.KickoffAt, m.KickoffAt) {
			next.KickoffAt = utcTime(m.KickoffAt)
		}
		next.HomeTeam = m.HomeTeam
		next.AwayTeam = m.AwayTeam
		if !scheduleChanged(*current, next) {
			continue
		}

		next.UpdatedAt = now
		if err := repo.Update(ctx, next); err != nil {
			return fmt.Errorf("update fixture %s: %w", next.ID, err)
		}
		*current = next
		idx.add(current)
		summary.Updated++
	}
	return nil
}

func scheduleChanged(a, b fixture.Fixture) bool {
	return !sameInt(a.Round, b.Round) ||
		!sameTime(a.KickoffAt, b.KickoffAt) ||
		a.HomeTeam != b.HomeTeam ||
		a.AwayTeam != b.AwayTeam
}

// scoreIndex finds fixtures by exact team names, then case-insensitively.
type scoreIndex struct {
	exact map[string][]*fixture.Fixture
	fold  map[string][]*fixture.Fixture
}

func newScoreIndex(items []fixture.Fixture) *scoreIndex {
	idx := &scoreIndex{
		exact: make(map[string][]*fixture.Fixture, len(items)),
		fold:  make(map[string][]*fixture.Fixture, len(items)),
	}
	for i := range items {
		f := &items[i]
		exactKey := f.HomeTeam + "|" + f.AwayTeam
		foldKey := strings.ToLower(exactKey)
		idx.exact[exactKey] = append(idx.exact[exactKey], f)
		idx.fold[foldKey] = append(idx.fold[foldKey], f)
	}
	return idx
}

func (idx *scoreIndex) find(m ExternalMatch) *fixture.Fixture {
	exactKey := m.HomeTeam + "|" + m.AwayTeam
	if candidates := idx.exact[exactKey]; len(candidates) > 0 {
		return pickByRound(candidates, m.Round)
	}
	if candidates := idx.fold[strings.ToLower(exactKey)]; len(candidates) > 0 {
		return pickByRound(candidates, m.Round)
	}
	return nil
}

func pickByRound(candidates []*fixture.Fixture, round *int) *fixture.Fixture {
	if round != nil {
		for _, f := range candidates {
			if sameInt(f.Round, round) {
				return f
			}
		}
	}
	return candidates[0]
}

func (s *FixtureSyncService) applyScores(ctx context.Context, repo fixture.Repository, existing []fixture.Fixture, matches []ExternalMatch, summary *SyncSummary) error {
	idx := newScoreIndex(existing)
	now := s.now().UTC()

	for _, m := range matches {
		summary.Seen++

		current := idx.find(m)
		if current == nil {
			summary.NotFound++
			continue
		}

		next := *current
		switch {
		case m.Completed:
			next.Completed = true
			if m.HomeScore != nil && m.AwayScore != nil {
				next.HomeScore = copyInt(m.HomeScore)
				next.AwayScore = copyInt(m.AwayScore)
			}
		case current.Completed:
			// Upstream withdrew the result, e.g. a postponement correction.
			next.Completed = false
			next.HomeScore = nil
			next.AwayScore = nil
		default:
			continue
		}

		if next.Completed == current.Completed && sameInt(next.HomeScore, current.HomeScore) && sameInt(next.AwayScore, current.AwayScore) {
			continue
		}

		next.UpdatedAt = now
		if err := repo.Update(ctx, next); err != nil {
			return fmt.Errorf("update fixture score %s: %w", next.ID, err)
		}
		*current = next
		summary.Updated++
	}
	return nil
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func utcTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := v.UTC()
	return &out
}
