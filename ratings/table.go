package ratings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nilsimda/tennis-elo/models"
)

var ErrPlayerNotFound = errors.New("player not found")

// Table is a fetched ratings table. It is read-only once built.
type Table struct {
	players []models.PlayerRating
	index   map[string]int
	skipped int
}

// NewTable builds a table from rows in page order. Rows with an empty name
// are dropped and repeated names keep their first row.
func NewTable(players []models.PlayerRating) *Table {
	t := &Table{index: make(map[string]int, len(players))}
	for _, p := range players {
		t.add(p)
	}
	return t
}

func (t *Table) add(p models.PlayerRating) {
	p.Name = normalizeName(p.Name)
	if p.Name == "" {
		return
	}
	if _, ok := t.index[p.Name]; ok {
		return
	}
	t.index[p.Name] = len(t.players)
	t.players = append(t.players, p)
}

func (t *Table) Len() int {
	return len(t.players)
}

// Skipped is the number of rows dropped because a rating did not parse.
func (t *Table) Skipped() int {
	return t.skipped
}

func (t *Table) Players() []models.PlayerRating {
	out := make([]models.PlayerRating, len(t.players))
	copy(out, t.players)
	return out
}

func (t *Table) Names() []string {
	names := make([]string, len(t.players))
	for i, p := range t.players {
		names[i] = p.Name
	}
	return names
}

func (t *Table) Lookup(name string) (models.PlayerRating, error) {
	i, ok := t.index[normalizeName(name)]
	if !ok {
		return models.PlayerRating{}, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	return t.players[i], nil
}

// Search returns the names containing query, case-insensitively, in table
// order. An empty query matches every player.
func (t *Table) Search(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return t.Names()
	}

	var names []string
	for _, p := range t.players {
		if strings.Contains(strings.ToLower(p.Name), query) {
			names = append(names, p.Name)
		}
	}
	return names
}

// normalizeName replaces non-breaking spaces and collapses runs of whitespace.
func normalizeName(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
