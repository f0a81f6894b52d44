package fixturefeed

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/usecase"
)

var digitsRegex = regexp.MustCompile(`\d+`)

// extractor pulls one typed value out of a raw feed record.
type extractor[T any] func(item map[string]any) (T, bool)

// firstOf returns the value of the first extractor that succeeds.
func firstOf[T any](item map[string]any, chain []extractor[T]) (T, bool) {
	for _, extract := range chain {
		if v, ok := extract(item); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

var (
	homeNameChain = []extractor[string]{
		stringAt("HomeTeam"),
		stringAt("homeTeam", "name"),
		stringAt("homeTeam"),
		stringAt("home_team"),
		stringAt("homeTeamName"),
		stringAt("home", "name"),
		stringAt("teams", "home", "name"),
	}
	awayNameChain = []extractor[string]{
		stringAt("AwayTeam"),
		stringAt("awayTeam", "name"),
		stringAt("awayTeam"),
		stringAt("away_team"),
		stringAt("awayTeamName"),
		stringAt("away", "name"),
		stringAt("teams", "away", "name"),
	}
	roundChain = []extractor[int]{
		roundAt("RoundNumber"),
		roundAt("roundNumber"),
		roundAt("round"),
		roundAt("matchday"),
		roundAt("matchDay"),
		roundAt("gameweek"),
		roundAt("week"),
		roundAt("round", "number"),
		roundAt("round", "name"),
	}
	kickoffChain = []extractor[time.Time]{
		kickoffAt("DateUtc"),
		kickoffAt("dateUtc"),
		kickoffAt("utcDate"),
		kickoffAt("kickoff"),
		kickoffAt("kickoffAt"),
		kickoffAt("kickoff_time"),
		kickoffAt("startingAt"),
		kickoffAt("starting_at"),
		kickoffAt("date"),
		kickoffAt("fixture", "date"),
	}
	finalScoreChain = []extractor[scorePair]{
		scoreBlockAt("score", "fullTime"),
		scoreBlockAt("score", "fulltime"),
		scoreBlockAt("finalScore"),
		scoreBlockAt("result"),
		scoreBlockAt("scores", "final"),
	}
	homeScoreChain = []extractor[int]{
		intAt("HomeTeamScore"),
		intAt("homeTeamScore"),
		intAt("homeScore"),
		intAt("home_score"),
		intAt("goals", "home"),
		func(item map[string]any) (int, bool) {
			s, ok := firstOf(item, finalScoreChain)
			return s.home, ok
		},
	}
	awayScoreChain = []extractor[int]{
		intAt("AwayTeamScore"),
		intAt("awayTeamScore"),
		intAt("awayScore"),
		intAt("away_score"),
		intAt("goals", "away"),
		func(item map[string]any) (int, bool) {
			s, ok := firstOf(item, finalScoreChain)
			return s.away, ok
		},
	}
	completedFlagChain = []extractor[bool]{
		boolAt("completed"),
		boolAt("isCompleted"),
		boolAt("is_completed"),
		boolAt("finished"),
		boolAt("status", "completed"),
		boolAt("status", "finished"),
		boolAt("fixture", "completed"),
	}
	statusChain = []extractor[string]{
		stringAt("period"),
		stringAt("status"),
		stringAt("resultType"),
		stringAt("result_type"),
		stringAt("status", "short"),
		stringAt("status", "type"),
		stringAt("state", "short_name"),
	}
)

// extractMatch maps one raw record to an ExternalMatch. Records without
// both team names are rejected.
func extractMatch(item map[string]any) (usecase.ExternalMatch, bool) {
	home, ok := firstOf(item, homeNameChain)
	if !ok {
		return usecase.ExternalMatch{}, false
	}
	away, ok := firstOf(item, awayNameChain)
	if !ok {
		return usecase.ExternalMatch{}, false
	}

	out := usecase.ExternalMatch{
		HomeTeam:  home,
		AwayTeam:  away,
		Completed: isCompleted(item),
	}
	if round, ok := firstOf(item, roundChain); ok {
		out.Round = &round
	}
	if kickoff, ok := firstOf(item, kickoffChain); ok {
		out.KickoffAt = &kickoff
	}
	if hs, ok := firstOf(item, homeScoreChain); ok {
		out.HomeScore = &hs
	}
	if as, ok := firstOf(item, awayScoreChain); ok {
		out.AwayScore = &as
	}
	return out, true
}

// isCompleted trusts an explicit flag first, then any status field in the
// full-time vocabulary, then the presence of a final score block.
func isCompleted(item map[string]any) bool {
	if flag, ok := firstOf(item, completedFlagChain); ok {
		return flag
	}
	for _, extract := range statusChain {
		if status, ok := extract(item); ok && fixture.IsCompletedStatus(status) {
			return true
		}
	}
	_, ok := firstOf(item, finalScoreChain)
	return ok
}

func lookup(item map[string]any, path []string) (any, bool) {
	var cur any = item
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func stringAt(path ...string) extractor[string] {
	return func(item map[string]any) (string, bool) {
		raw, ok := lookup(item, path)
		if !ok {
			return "", false
		}
		value, ok := raw.(string)
		if !ok {
			return "", false
		}
		value = strings.TrimSpace(value)
		return value, value != ""
	}
}

func intAt(path ...string) extractor[int] {
	return func(item map[string]any) (int, bool) {
		raw, ok := lookup(item, path)
		if !ok {
			return 0, false
		}
		return toInt(raw)
	}
}

// roundAt also accepts labels such as "Round 12" or "Matchday 3".
func roundAt(path ...string) extractor[int] {
	return func(item map[string]any) (int, bool) {
		raw, ok := lookup(item, path)
		if !ok {
			return 0, false
		}
		if v, ok := toInt(raw); ok {
			return v, v > 0
		}
		label, ok := raw.(string)
		if !ok {
			return 0, false
		}
		digits := digitsRegex.FindString(label)
		if digits == "" {
			return 0, false
		}
		v, err := strconv.Atoi(digits)
		if err != nil || v <= 0 {
			return 0, false
		}
		return v, true
	}
}

func boolAt(path ...string) extractor[bool] {
	return func(item map[string]any) (bool, bool) {
		raw, ok := lookup(item, path)
		if !ok {
			return false, false
		}
		value, ok := raw.(bool)
		return value, ok
	}
}

func kickoffAt(path ...string) extractor[time.Time] {
	return func(item map[string]any) (time.Time, bool) {
		raw, ok := lookup(item, path)
		if !ok {
			return time.Time{}, false
		}
		switch typed := raw.(type) {
		case float64:
			if typed != math.Trunc(typed) {
				return time.Time{}, false
			}
			return epochToTime(int64(typed)), true
		case int64:
			return epochToTime(typed), true
		case int:
			return epochToTime(int64(typed)), true
		case string:
			return ParseKickoff(typed)
		}
		return time.Time{}, false
	}
}

type scorePair struct {
	home int
	away int
}

func scoreBlockAt(path ...string) extractor[scorePair] {
	return func(item map[string]any) (scorePair, bool) {
		raw, ok := lookup(item, path)
		if !ok {
			return scorePair{}, false
		}
		block, ok := raw.(map[string]any)
		if !ok {
			return scorePair{}, false
		}
		home, hok := firstOf(block, []extractor[int]{intAt("home"), intAt("homeTeam"), intAt("home_score")})
		away, aok := firstOf(block, []extractor[int]{intAt("away"), intAt("awayTeam"), intAt("away_score")})
		if !hok || !aok {
			return scorePair{}, false
		}
		return scorePair{home: home, away: away}, true
	}
}

func toInt(raw any) (int, bool) {
	switch typed := raw.(type) {
	case float64:
		if typed != math.Trunc(typed) {
			return 0, false
		}
		return int(typed), true
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case string:
		v, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
