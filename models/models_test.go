package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSurface(t *testing.T) {
	for _, in := range []string{"hard", "Hard", " HARD "} {
		s, err := ParseSurface(in)
		require.NoError(t, err)
		assert.Equal(t, Hard, s)
	}

	s, err := ParseSurface("clay")
	require.NoError(t, err)
	assert.Equal(t, "cElo", s.Column())

	_, err = ParseSurface("carpet")
	assert.ErrorIs(t, err, ErrUnknownSurface)
}

func TestParseCircuit(t *testing.T) {
	c, err := ParseCircuit("WTA")
	require.NoError(t, err)
	assert.Equal(t, WTA, c)
	assert.Equal(t, "WTA Ratings", c.Title())

	_, err = ParseCircuit("itf")
	assert.ErrorIs(t, err, ErrUnknownCircuit)
}

func TestPlayerRating_Rating(t *testing.T) {
	p := PlayerRating{Name: "Jannik Sinner", Hard: 2200, Clay: 2050, Grass: 2000}

	assert.Equal(t, 2200.0, p.Rating(Hard))
	assert.Equal(t, 2050.0, p.Rating(Clay))
	assert.Equal(t, 2000.0, p.Rating(Grass))
}

func TestParseMargin(t *testing.T) {
	m, err := ParseMargin("")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	m, err = ParseMargin("14")
	require.NoError(t, err)
	assert.Equal(t, 14, m)

	for _, in := range []string{"15", "-1", "five"} {
		_, err := ParseMargin(in)
		assert.ErrorIs(t, err, ErrInvalidMargin, in)
	}
}

func TestMargins(t *testing.T) {
	margins := Margins()
	require.Len(t, margins, 15)
	assert.Equal(t, 0, margins[0])
	assert.Equal(t, 14, margins[14])
}
