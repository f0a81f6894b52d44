package leaderboard

import (
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/score-predictor/internal/domain/fixture"
	"github.com/riskibarqy/score-predictor/internal/domain/league"
	"github.com/riskibarqy/score-predictor/internal/domain/prediction"
	"github.com/riskibarqy/score-predictor/internal/domain/scoring"
)

// Input is everything needed to rank one league.
type Input struct {
	League      league.League
	Members     []league.Membership
	Fixtures    []fixture.Fixture
	Predictions []prediction.Prediction
	WeekWinners []league.WeekWinner
	Now         time.Time
}

type Standing struct {
	Rank        int
	UserID      string
	DisplayName string
	Role        league.Role
	Wins        int
	Draws       int
	Losses      int
	Points      int
	Played      int
	WeeksWon    int
}

type Result struct {
	LeagueID     string
	Scope        league.Scope
	CurrentRound *int
	Standings    []Standing
	// NewWeekWinners are rows for completed rounds that had none yet.
	NewWeekWinners []league.WeekWinner
	// Syncs bring stored predictions in line with their resolved fixtures.
	Syncs []prediction.Sync
	// Unresolved counts predictions whose teams matched no fixture.
	Unresolved int
}

// Compute ranks the active members of in.League. It has no side effects;
// the caller persists NewWeekWinners and Syncs.
func Compute(in Input) Result {
	scope := league.NormalizeScope(string(in.League.Scope))
	out := Result{LeagueID: in.League.ID, Scope: scope}

	members := make([]league.Membership, 0, len(in.Members))
	memberSet := make(map[string]struct{}, len(in.Members))
	for _, m := range in.Members {
		if !m.Active() {
			continue
		}
		if _, dup := memberSet[m.UserID]; dup {
			continue
		}
		memberSet[m.UserID] = struct{}{}
		members = append(members, m)
	}

	idx := fixture.NewIndex(in.Fixtures)
	picks := make(picksByUser, len(members))
	memberPreds := make([]prediction.Prediction, 0, len(in.Predictions))
	for _, p := range in.Predictions {
		if _, ok := memberSet[p.UserID]; ok {
			memberPreds = append(memberPreds, p)
		}
	}
	resolved, unresolved := prediction.ResolveAll(idx, memberPreds)
	out.Unresolved = len(unresolved)
	for _, r := range resolved {
		if !r.Superseded {
			picks.add(r.Prediction, r.Fixture)
		}
	}
	out.Syncs = prediction.Syncs(resolved)

	rounds := groupRounds(in.Fixtures, in.League.CreatedAt)
	out.CurrentRound = rounds.current()

	winners := weekWinnerTally(in.WeekWinners)
	for _, round := range rounds.order {
		if winners.recorded(round) || !rounds.complete(round) {
			continue
		}
		fresh := rounds.winners(round, members, picks)
		for i := range fresh {
			fresh[i].LeagueID = in.League.ID
			fresh[i].CreatedAt = in.Now
		}
		out.NewWeekWinners = append(out.NewWeekWinners, fresh...)
		winners.add(fresh)
	}

	out.Standings = make([]Standing, 0, len(members))
	for _, m := range members {
		s := Standing{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Role:        m.Role,
			WeeksWon:    winners.byUser[m.UserID],
		}

		var record scoring.Record
		var points int
		switch scope {
		case league.ScopeWeekly:
			if out.CurrentRound != nil {
				record, _ = rounds.record(*out.CurrentRound, m.UserID, picks)
			}
			points = record.Points()
		default:
			record = rounds.season(m.UserID, picks)
			points = record.Points()
			if m.Backfill != nil {
				record = record.Plus(m.Backfill.Record())
				points += m.Backfill.TotalPoints()
			}
		}

		s.Wins, s.Draws, s.Losses = record.Wins, record.Draws, record.Losses
		s.Points = points
		s.Played = record.Played()
		out.Standings = append(out.Standings, s)
	}

	Sort(out.Standings)
	return out
}

// Sort orders standings by points, fewest losses, most wins, most draws,
// then display name, and assigns shared ranks to equal records.
func Sort(items []Standing) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Draws != b.Draws {
			return a.Draws > b.Draws
		}
		an, bn := strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)
		if an != bn {
			return an < bn
		}
		return a.UserID < b.UserID
	})

	for i := range items {
		if i > 0 && sameRecord(items[i-1], items[i]) {
			items[i].Rank = items[i-1].Rank
			continue
		}
		items[i].Rank = i + 1
	}
}

func sameRecord(a, b Standing) bool {
	return a.Points == b.Points && a.Losses == b.Losses && a.Wins == b.Wins && a.Draws == b.Draws
}

// picksByUser holds the live prediction of each user per fixture.
type picksByUser map[string]map[string]prediction.Prediction

func (p picksByUser) add(pred prediction.Prediction, f fixture.Fixture) {
	byFixture, ok := p[pred.UserID]
	if !ok {
		byFixture = make(map[string]prediction.Prediction)
		p[pred.UserID] = byFixture
	}
	byFixture[f.ID] = pred
}

func (p picksByUser) get(userID, fixtureID string) (prediction.Prediction, bool) {
	pred, ok := p[userID][fixtureID]
	return pred, ok
}

// roundSet groups fixtures by round. all holds every fixture in a round;
// scored holds the subset inside the league horizon, which is what counts.
type roundSet struct {
	order   []int
	all     map[int][]fixture.Fixture
	scored  map[int][]fixture.Fixture
	noRound []fixture.Fixture
}

func groupRounds(fixtures []fixture.Fixture, horizon time.Time) roundSet {
	rs := roundSet{
		all:    make(map[int][]fixture.Fixture),
		scored: make(map[int][]fixture.Fixture),
	}
	for _, f := range fixtures {
		round, ok := f.RoundValue()
		if !ok {
			if f.OnOrAfter(horizon) {
				rs.noRound = append(rs.noRound, f)
			}
			continue
		}
		if _, seen := rs.all[round]; !seen {
			rs.order = append(rs.order, round)
		}
		rs.all[round] = append(rs.all[round], f)
		if f.OnOrAfter(horizon) {
			rs.scored[round] = append(rs.scored[round], f)
		}
	}
	sort.Ints(rs.order)
	return rs
}

func (rs roundSet) complete(round int) bool {
	fixtures := rs.all[round]
	if len(fixtures) == 0 {
		return false
	}
	for _, f := range fixtures {
		if !f.IsResolved() {
			return false
		}
	}
	return true
}

// current is the smallest round that is not complete, else the last round.
func (rs roundSet) current() *int {
	if len(rs.order) == 0 {
		return nil
	}
	for _, round := range rs.order {
		if !rs.complete(round) {
			r := round
			return &r
		}
	}
	last := rs.order[len(rs.order)-1]
	return &last
}

// record tallies one member's round. A member who picked anything in the
// round takes a loss for every scored fixture they skipped.
func (rs roundSet) record(round int, userID string, picks picksByUser) (scoring.Record, bool) {
	return tally(rs.scored[round], userID, picks, true)
}

func (rs roundSet) season(userID string, picks picksByUser) scoring.Record {
	var total scoring.Record
	for _, round := range rs.order {
		r, _ := rs.record(round, userID, picks)
		total = total.Plus(r)
	}
	loose, _ := tally(rs.noRound, userID, picks, false)
	return total.Plus(loose)
}

// winners returns every active member on the top points of round. Members
// without a pick score zero and can share the top spot; a round nobody
// predicted has no winner.
func (rs roundSet) winners(round int, members []league.Membership, picks picksByUser) []league.WeekWinner {
	points := make([]int, len(members))
	best, anyPick := 0, false
	for i, m := range members {
		r, participated := rs.record(round, m.UserID, picks)
		anyPick = anyPick || participated
		points[i] = r.Points()
		if points[i] > best {
			best = points[i]
		}
	}
	if !anyPick {
		return nil
	}

	var out []league.WeekWinner
	for i, m := range members {
		if points[i] == best {
			out = append(out, league.WeekWinner{Round: round, UserID: m.UserID, Points: best})
		}
	}
	return out
}

func tally(fixtures []fixture.Fixture, userID string, picks picksByUser, penalizeMissed bool) (scoring.Record, bool) {
	participated := false
	for _, f := range fixtures {
		if _, ok := picks.get(userID, f.ID); ok {
			participated = true
			break
		}
	}

	var r scoring.Record
	for _, f := range fixtures {
		if !f.HasFinalScore() {
			continue
		}
		pred, ok := picks.get(userID, f.ID)
		if !ok {
			if participated && penalizeMissed {
				r.Losses++
			}
			continue
		}
		outcome, _ := prediction.Evaluate(pred, f)
		r.Add(outcome)
	}
	return r, participated
}

type winnerTally struct {
	rounds map[int]struct{}
	byUser map[string]int
}

func weekWinnerTally(rows []league.WeekWinner) winnerTally {
	t := winnerTally{
		rounds: make(map[int]struct{}),
		byUser: make(map[string]int),
	}
	t.add(rows)
	return t
}

func (t winnerTally) add(rows []league.WeekWinner) {
	type winnerKey struct {
		round  int
		userID string
	}
	seen := make(map[winnerKey]struct{}, len(rows))
	for _, w := range rows {
		key := winnerKey{round: w.Round, userID: w.UserID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		t.rounds[w.Round] = struct{}{}
		t.byUser[w.UserID]++
	}
}

func (t winnerTally) recorded(round int) bool {
	_, ok := t.rounds[round]
	return ok
}
