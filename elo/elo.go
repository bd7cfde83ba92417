package elo

import (
	"encoding/json"
	"math"

	"github.com/nilsimda/tennis-elo/models"
)

// WinProbability returns the probability that a player rated ratingA beats
// a player rated ratingB. Non-finite ratings are not validated.
func WinProbability(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// MarginAdjustedOdds converts a win probability into decimal odds reduced by
// a bookmaker margin given in percent.
func MarginAdjustedOdds(probability float64, marginPercent int) float64 {
	return (1 / probability) * (1 - float64(marginPercent)/100)
}

// Side is one player's half of a priced matchup.
type Side struct {
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Probability float64 `json:"probability"`
	Odds        float64 `json:"odds"`
}

// MarshalJSON writes NaN and infinite numbers as null, which encoding/json
// otherwise rejects. A zero probability prices at +Inf odds.
func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name        string   `json:"name"`
		Rating      *float64 `json:"rating"`
		Probability *float64 `json:"probability"`
		Odds        *float64 `json:"odds"`
	}{
		Name:        s.Name,
		Rating:      finiteOrNil(s.Rating),
		Probability: finiteOrNil(s.Probability),
		Odds:        finiteOrNil(s.Odds),
	})
}

func finiteOrNil(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

type Matchup struct {
	Surface models.Surface `json:"surface"`
	Margin  int            `json:"margin"`
	Player1 Side           `json:"player1"`
	Player2 Side           `json:"player2"`
}

// NewMatchup prices a match between two players on a surface.
func NewMatchup(p1, p2 models.PlayerRating, surface models.Surface, margin int) Matchup {
	r1, r2 := p1.Rating(surface), p2.Rating(surface)
	prob1 := WinProbability(r1, r2)
	prob2 := WinProbability(r2, r1)

	return Matchup{
		Surface: surface,
		Margin:  margin,
		Player1: Side{Name: p1.Name, Rating: r1, Probability: prob1, Odds: MarginAdjustedOdds(prob1, margin)},
		Player2: Side{Name: p2.Name, Rating: r2, Probability: prob2, Odds: MarginAdjustedOdds(prob2, margin)},
	}
}

// Player1Favoured reports whether player 1 is strictly more likely to win.
// Even matchups count player 2 as the favourite.
func (m Matchup) Player1Favoured() bool {
	return m.Player1.Probability > m.Player2.Probability
}
