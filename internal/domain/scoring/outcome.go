package scoring

// Outcome is the result of comparing a predicted score with the actual one.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "Win"
	OutcomeDraw Outcome = "Draw"
	OutcomeLoss Outcome = "Loss"
)

const (
	PointsWin  = 3
	PointsDraw = 1
	PointsLoss = 0
)

func (o Outcome) Valid() bool {
	return o == OutcomeWin || o == OutcomeDraw || o == OutcomeLoss
}

func (o Outcome) Points() int {
	switch o {
	case OutcomeWin:
		return PointsWin
	case OutcomeDraw:
		return PointsDraw
	default:
		return PointsLoss
	}
}

// ParseOutcome accepts stored labels case-insensitively; unknown labels are none.
func ParseOutcome(v string) Outcome {
	switch v {
	case "Win", "win", "WIN":
		return OutcomeWin
	case "Draw", "draw", "DRAW":
		return OutcomeDraw
	case "Loss", "loss", "LOSS":
		return OutcomeLoss
	default:
		return OutcomeNone
	}
}

// WinnerClass is which side a score pair favors.
type WinnerClass int

const (
	WinnerDraw WinnerClass = iota
	WinnerHome
	WinnerAway
)

func ClassOf(home, away int) WinnerClass {
	switch {
	case home > away:
		return WinnerHome
	case away > home:
		return WinnerAway
	default:
		return WinnerDraw
	}
}

// Evaluate scores a prediction: an exact score is a Win, the right winner
// class with the wrong score is a Draw, anything else is a Loss.
func Evaluate(predictedHome, predictedAway, actualHome, actualAway int) Outcome {
	if predictedHome == actualHome && predictedAway == actualAway {
		return OutcomeWin
	}
	if ClassOf(predictedHome, predictedAway) == ClassOf(actualHome, actualAway) {
		return OutcomeDraw
	}
	return OutcomeLoss
}

// Record is a win/draw/loss tally.
type Record struct {
	Wins   int
	Draws  int
	Losses int
}

func (r *Record) Add(o Outcome) {
	switch o {
	case OutcomeWin:
		r.Wins++
	case OutcomeDraw:
		r.Draws++
	case OutcomeLoss:
		r.Losses++
	}
}

func (r Record) Plus(other Record) Record {
	return Record{
		Wins:   r.Wins + other.Wins,
		Draws:  r.Draws + other.Draws,
		Losses: r.Losses + other.Losses,
	}
}

func (r Record) Points() int {
	return r.Wins*PointsWin + r.Draws*PointsDraw + r.Losses*PointsLoss
}

func (r Record) Played() int {
	return r.Wins + r.Draws + r.Losses
}
