package components

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilsimda/tennis-elo/elo"
	"github.com/nilsimda/tennis-elo/models"
)

func TestFormatting(t *testing.T) {
	assert.Equal(t, "50.00%", FormatPercent(0.5))
	assert.Equal(t, "75.97%", FormatPercent(elo.WinProbability(1600, 1400)))
	assert.Equal(t, "1.80", FormatOdds(elo.MarginAdjustedOdds(0.5, 10)))
	assert.Equal(t, "2168.2", FormatRating(2168.2))
	assert.Equal(t, "/assets/img/clay-court.svg", CourtImage(models.Clay))
}

func TestCalculator_EscapesNames(t *testing.T) {
	a := models.PlayerRating{Name: `<script>alert("x")</script>`, Hard: 1500}
	b := models.PlayerRating{Name: "B", Hard: 1500}
	m := elo.NewMatchup(a, b, models.Hard, 0)

	var buf bytes.Buffer
	err := Calculator(CalculatorView{
		Circuit: models.WTA,
		Surface: models.Hard,
		Player1: PlayerPicker{Label: "Player 1", SearchName: "q1", SelectName: "player1", Options: []string{a.Name}, Selected: a.Name},
		Player2: PlayerPicker{Label: "Player 2", SearchName: "q2", SelectName: "player2", Options: []string{b.Name}, Selected: b.Name},
		Matchup: &m,
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, `<option value="wta" selected>WTA Ratings</option>`)
	assert.Contains(t, html, `data-outcome="underdog"`)
	assert.Contains(t, html, "Odds: 2.00")
}

func TestCalculator_NoMatchup(t *testing.T) {
	var buf bytes.Buffer
	err := Calculator(CalculatorView{Circuit: models.ATP, Surface: models.Clay, Error: "could not fetch ATP Ratings"}).
		Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `<p class="error">could not fetch ATP Ratings</p>`)
	assert.Contains(t, html, `<option value="clay" selected>Clay</option>`)
	assert.Contains(t, html, `<option value="0" selected>0</option>`)
	assert.NotContains(t, html, "Win Probability")
}

func TestFormatting_NonFinite(t *testing.T) {
	assert.Equal(t, "∞", FormatOdds(elo.MarginAdjustedOdds(0, 5)))
	assert.Equal(t, "n/a", FormatOdds(math.NaN()))
	assert.Equal(t, "n/a", FormatOdds(math.Inf(-1)))
	assert.Equal(t, "n/a", FormatPercent(math.NaN()))
	assert.Equal(t, "n/a", FormatRating(math.Inf(1)))
	assert.Equal(t, "0.00%", FormatPercent(elo.WinProbability(1500, 200000)))
}
