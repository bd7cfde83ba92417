package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nilsimda/tennis-elo/components"
	"github.com/nilsimda/tennis-elo/elo"
	"github.com/nilsimda/tennis-elo/metrics"
	"github.com/nilsimda/tennis-elo/models"
	"github.com/nilsimda/tennis-elo/ratings"
)

type server struct {
	provider ratings.Provider
	logger   *slog.Logger
}

func newServer(provider ratings.Provider, logger *slog.Logger) *server {
	return &server{provider: provider, logger: logger}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /assets/{pathname...}", http.FileServer(http.FS(assets)))

	mux.HandleFunc("GET /{$}", s.getIndex)
	mux.HandleFunc("GET /calculator", s.getCalculator)
	mux.HandleFunc("GET /api/players", s.getPlayers)
	mux.HandleFunc("GET /api/matchup", s.getMatchup)
	mux.HandleFunc("GET /health", s.getHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.logRequests(mux)
}

func (s *server) getIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/calculator", http.StatusSeeOther)
}

func (s *server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) getCalculator(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := components.CalculatorView{
		Circuit: models.ATP,
		Surface: models.Hard,
		Player1: components.PlayerPicker{Label: "Player 1", SearchName: "q1", SelectName: "player1", Query: q.Get("q1")},
		Player2: components.PlayerPicker{Label: "Player 2", SearchName: "q2", SelectName: "player2", Query: q.Get("q2")},
	}

	var problems []string
	if v := q.Get("circuit"); v != "" {
		if c, err := models.ParseCircuit(v); err != nil {
			problems = append(problems, err.Error())
		} else {
			view.Circuit = c
		}
	}
	if v := q.Get("surface"); v != "" {
		if surface, err := models.ParseSurface(v); err != nil {
			problems = append(problems, err.Error())
		} else {
			view.Surface = surface
		}
	}
	if m, err := models.ParseMargin(q.Get("margin")); err != nil {
		problems = append(problems, err.Error())
	} else {
		view.Margin = m
	}

	status := http.StatusOK
	table, err := s.provider.Fetch(r.Context(), view.Circuit)
	if err != nil {
		s.logger.Error("Failed to fetch ratings", "circuit", view.Circuit, "error", err)
		problems = append(problems, "could not fetch "+view.Circuit.Title())
		status = http.StatusBadGateway
	} else {
		p1, ok1 := pick(table, &view.Player1, q.Get("player1"), view.Surface)
		p2, ok2 := pick(table, &view.Player2, q.Get("player2"), view.Surface)
		if ok1 && ok2 {
			m := elo.NewMatchup(p1, p2, view.Surface, view.Margin)
			metrics.MatchupsPriced.WithLabelValues(string(view.Surface)).Inc()
			view.Matchup = &m
		}
	}
	view.Error = strings.Join(problems, "; ")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := components.Calculator(view).Render(r.Context(), w); err != nil {
		s.logger.Error("Failed to render calculator", "error", err)
	}
}

// pick fills a player picker from the search query and requested name. A
// request that no longer matches the search falls back to the first match.
func pick(table *ratings.Table, p *components.PlayerPicker, requested string, surface models.Surface) (models.PlayerRating, bool) {
	p.Options = table.Search(p.Query)
	if len(p.Options) == 0 {
		return models.PlayerRating{}, false
	}

	p.Selected = p.Options[0]
	if slices.Contains(p.Options, requested) {
		p.Selected = requested
	}

	player, err := table.Lookup(p.Selected)
	if err != nil {
		return models.PlayerRating{}, false
	}
	p.Rating = player.Rating(surface)
	p.HasRating = true
	return player, true
}

type playerResponse struct {
	Name  string  `json:"name"`
	Rank  int     `json:"rank,omitempty"`
	Elo   float64 `json:"elo,omitempty"`
	Hard  float64 `json:"hard"`
	Clay  float64 `json:"clay"`
	Grass float64 `json:"grass"`
}

type playersResponse struct {
	Circuit models.Circuit   `json:"circuit"`
	Players []playerResponse `json:"players"`
}

func (s *server) getPlayers(w http.ResponseWriter, r *http.Request) {
	circuit, err := models.ParseCircuit(valueOr(r.URL.Query().Get("circuit"), string(models.ATP)))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	table, err := s.provider.Fetch(r.Context(), circuit)
	if err != nil {
		s.logger.Error("Failed to fetch ratings", "circuit", circuit, "error", err)
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	resp := playersResponse{Circuit: circuit, Players: []playerResponse{}}
	for _, name := range table.Search(r.URL.Query().Get("q")) {
		p, err := table.Lookup(name)
		if err != nil {
			continue
		}
		resp.Players = append(resp.Players, playerResponse{
			Name: p.Name, Rank: p.Rank, Elo: p.Elo, Hard: p.Hard, Clay: p.Clay, Grass: p.Grass,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type matchupResponse struct {
	Circuit models.Circuit `json:"circuit"`
	elo.Matchup
}

func (s *server) getMatchup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	circuit, err := models.ParseCircuit(valueOr(q.Get("circuit"), string(models.ATP)))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	surface, err := models.ParseSurface(valueOr(q.Get("surface"), string(models.Hard)))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	margin, err := models.ParseMargin(q.Get("margin"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	name1, name2 := q.Get("player1"), q.Get("player2")
	if name1 == "" || name2 == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("player1 and player2 are required"))
		return
	}

	table, err := s.provider.Fetch(r.Context(), circuit)
	if err != nil {
		s.logger.Error("Failed to fetch ratings", "circuit", circuit, "error", err)
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	p1, err := table.Lookup(name1)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	p2, err := table.Lookup(name2)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	m := elo.NewMatchup(p1, p2, surface, margin)
	metrics.MatchupsPriced.WithLabelValues(string(surface)).Inc()
	s.writeJSON(w, http.StatusOK, matchupResponse{Circuit: circuit, Matchup: m})
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// writeJSON encodes v before writing the status so an encoding failure can
// still be reported as a 500.
func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.logger.Info("Request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
		)
	})
}
