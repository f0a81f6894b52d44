package fixture

import "strings"

// MatchLevel is the cascade stage that resolved a team-name pair.
type MatchLevel int

const (
	MatchNone MatchLevel = iota
	MatchExact
	MatchCaseInsensitive
	MatchNormalized
	MatchAlias
)

func (l MatchLevel) String() string {
	switch l {
	case MatchExact:
		return "exact"
	case MatchCaseInsensitive:
		return "case_insensitive"
	case MatchNormalized:
		return "normalized"
	case MatchAlias:
		return "alias"
	default:
		return "none"
	}
}

// NeedsResync reports whether stored names should be rewritten to the
// fixture's canonical names so the next lookup hits the exact stage.
func (l MatchLevel) NeedsResync() bool {
	return l == MatchCaseInsensitive || l == MatchNormalized || l == MatchAlias
}

var nameReplacer = strings.NewReplacer(
	"&", " and ",
	".", "",
	"'", "",
	"’", "",
	"-", " ",
)

// NormalizeTeamName lowercases, maps "&" to "and", strips dots and
// apostrophes, turns hyphens into spaces and collapses whitespace.
func NormalizeTeamName(name string) string {
	name = nameReplacer.Replace(strings.ToLower(name))
	return strings.Join(strings.Fields(name), " ")
}

// teamAliases maps normalized nicknames to normalized canonical names.
var teamAliases = map[string]string{
	"spurs":                "tottenham hotspur",
	"tottenham":            "tottenham hotspur",
	"tottenham hotspurs":   "tottenham hotspur",
	"man utd":              "manchester united",
	"man united":           "manchester united",
	"man u":                "manchester united",
	"manchester utd":       "manchester united",
	"man city":             "manchester city",
	"wolves":               "wolverhampton wanderers",
	"wolverhampton":        "wolverhampton wanderers",
	"brighton":             "brighton and hove albion",
	"newcastle":            "newcastle united",
	"newcastle utd":        "newcastle united",
	"west ham":             "west ham united",
	"nottm forest":         "nottingham forest",
	"nottingham":           "nottingham forest",
	"notts forest":         "nottingham forest",
	"forest":               "nottingham forest",
	"leicester":            "leicester city",
	"leeds":                "leeds united",
	"villa":                "aston villa",
	"palace":               "crystal palace",
	"sheff utd":            "sheffield united",
	"sheffield utd":        "sheffield united",
	"bournemouth":          "afc bournemouth",
	"ipswich":              "ipswich town",
	"luton":                "luton town",
	"norwich":              "norwich city",
	"west brom":            "west bromwich albion",
	"qpr":                  "queens park rangers",
	"huddersfield":         "huddersfield town",
	"cardiff":              "cardiff city",
	"swansea":              "swansea city",
	"stoke":                "stoke city",
	"hull":                 "hull city",
	"brighton hove albion": "brighton and hove albion",
}

// CanonicalTeamName normalizes name, drops a trailing "fc" and resolves
// known aliases.
func CanonicalTeamName(name string) string {
	normalized := strings.TrimSuffix(NormalizeTeamName(name), " fc")
	if canonical, ok := teamAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

type pairKey struct {
	home string
	away string
}

// Index resolves team-name pairs to fixtures through the match cascade.
// When several fixtures share a key the first one added wins.
type Index struct {
	fixtures []Fixture
	byID     map[string]int
	stages   [4]map[pairKey]int
}

var stageKeys = [4]func(string) string{
	func(s string) string { return s },
	strings.ToLower,
	NormalizeTeamName,
	CanonicalTeamName,
}

var stageLevels = [4]MatchLevel{MatchExact, MatchCaseInsensitive, MatchNormalized, MatchAlias}

func NewIndex(fixtures []Fixture) *Index {
	idx := &Index{
		fixtures: fixtures,
		byID:     make(map[string]int, len(fixtures)),
	}
	for stage := range idx.stages {
		idx.stages[stage] = make(map[pairKey]int, len(fixtures))
	}

	for i, f := range fixtures {
		if f.ID != "" {
			if _, ok := idx.byID[f.ID]; !ok {
				idx.byID[f.ID] = i
			}
		}
		for stage, keyFn := range stageKeys {
			key := pairKey{home: keyFn(f.HomeTeam), away: keyFn(f.AwayTeam)}
			if _, ok := idx.stages[stage][key]; !ok {
				idx.stages[stage][key] = i
			}
		}
	}

	return idx
}

// Match returns the fixture for home/away, trying exact, case-insensitive,
// normalized and alias keys in that order. Both sides must match at the
// same stage.
func (idx *Index) Match(home, away string) (Fixture, MatchLevel, bool) {
	if idx == nil || strings.TrimSpace(home) == "" || strings.TrimSpace(away) == "" {
		return Fixture{}, MatchNone, false
	}
	for stage, keyFn := range stageKeys {
		if i, ok := idx.stages[stage][pairKey{home: keyFn(home), away: keyFn(away)}]; ok {
			return idx.fixtures[i], stageLevels[stage], true
		}
	}
	return Fixture{}, MatchNone, false
}

func (idx *Index) ByID(fixtureID string) (Fixture, bool) {
	if idx == nil || fixtureID == "" {
		return Fixture{}, false
	}
	i, ok := idx.byID[fixtureID]
	if !ok {
		return Fixture{}, false
	}
	return idx.fixtures[i], true
}

// Match is a one-shot lookup over fixtures.
func Match(fixtures []Fixture, home, away string) (Fixture, bool) {
	f, _, ok := NewIndex(fixtures).Match(home, away)
	return f, ok
}
