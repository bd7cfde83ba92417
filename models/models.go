package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownSurface = errors.New("unknown surface")
	ErrUnknownCircuit = errors.New("unknown circuit")
	ErrInvalidMargin  = errors.New("invalid margin")
)

// Surface selects which rating of a PlayerRating is used for a matchup.
type Surface string

const (
	Hard  Surface = "hard"
	Clay  Surface = "clay"
	Grass Surface = "grass"
)

// Surfaces returns all surfaces in display order.
func Surfaces() []Surface {
	return []Surface{Hard, Clay, Grass}
}

func ParseSurface(s string) (Surface, error) {
	switch Surface(strings.ToLower(strings.TrimSpace(s))) {
	case Hard:
		return Hard, nil
	case Clay:
		return Clay, nil
	case Grass:
		return Grass, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSurface, s)
}

// Column is the header of the surface rating column on the ratings page.
func (s Surface) Column() string {
	switch s {
	case Clay:
		return "cElo"
	case Grass:
		return "gElo"
	default:
		return "hElo"
	}
}

func (s Surface) Title() string {
	switch s {
	case Clay:
		return "Clay"
	case Grass:
		return "Grass"
	default:
		return "Hard"
	}
}

// Circuit is a professional tour with its own ratings table.
type Circuit string

const (
	ATP Circuit = "atp"
	WTA Circuit = "wta"
)

func Circuits() []Circuit {
	return []Circuit{ATP, WTA}
}

func ParseCircuit(s string) (Circuit, error) {
	switch Circuit(strings.ToLower(strings.TrimSpace(s))) {
	case ATP:
		return ATP, nil
	case WTA:
		return WTA, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCircuit, s)
}

func (c Circuit) Title() string {
	if c == WTA {
		return "WTA Ratings"
	}
	return "ATP Ratings"
}

// PlayerRating is one row of a fetched ratings table.
type PlayerRating struct {
	Name  string
	Rank  int
	Elo   float64
	Hard  float64
	Clay  float64
	Grass float64
}

// Rating returns the player's rating on the given surface.
func (p PlayerRating) Rating(s Surface) float64 {
	switch s {
	case Clay:
		return p.Clay
	case Grass:
		return p.Grass
	default:
		return p.Hard
	}
}

// Bookmaker margin bounds, in percent.
const (
	MinMargin = 0
	MaxMargin = 14
)

func ValidMargin(m int) bool {
	return m >= MinMargin && m <= MaxMargin
}

// Margins lists every selectable margin.
func Margins() []int {
	margins := make([]int, 0, MaxMargin-MinMargin+1)
	for m := MinMargin; m <= MaxMargin; m++ {
		margins = append(margins, m)
	}
	return margins
}

// ParseMargin parses a margin percentage. An empty string is a zero margin.
func ParseMargin(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MinMargin, nil
	}
	m, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMargin, s)
	}
	if !ValidMargin(m) {
		return 0, fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidMargin, m, MinMargin, MaxMargin)
	}
	return m, nil
}
