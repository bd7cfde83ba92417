package components

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/nilsimda/tennis-elo/elo"
	"github.com/nilsimda/tennis-elo/models"
)

// PlayerPicker is the search box and player select for one side of the matchup.
type PlayerPicker struct {
	Label      string
	SearchName string
	SelectName string
	Query      string
	Options    []string
	Selected   string
	Rating     float64
	HasRating  bool
}

type CalculatorView struct {
	Circuit models.Circuit
	Surface models.Surface
	Margin  int
	Player1 PlayerPicker
	Player2 PlayerPicker
	Matchup *elo.Matchup
	Error   string
}

var hundred = decimal.NewFromInt(100)

// notAvailable is shown for NaN and infinite values, which decimal cannot hold.
const notAvailable = "n/a"

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FormatPercent renders a probability as a percentage with two decimals.
func FormatPercent(p float64) string {
	if !finite(p) {
		return notAvailable
	}
	return decimal.NewFromFloat(p).Mul(hundred).StringFixed(2) + "%"
}

// FormatOdds renders decimal odds with two decimals. A zero probability
// prices at +Inf, shown as ∞.
func FormatOdds(o float64) string {
	if math.IsInf(o, 1) {
		return "∞"
	}
	if !finite(o) {
		return notAvailable
	}
	return decimal.NewFromFloat(o).StringFixed(2)
}

func FormatRating(r float64) string {
	if !finite(r) {
		return notAvailable
	}
	return decimal.NewFromFloat(r).String()
}

func CourtImage(s models.Surface) string {
	return "/assets/img/" + string(s) + "-court.svg"
}

func outcome(favoured bool) string {
	if favoured {
		return "favourite"
	}
	return "underdog"
}
