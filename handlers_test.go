package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilsimda/tennis-elo/models"
	"github.com/nilsimda/tennis-elo/ratings"
)

type fakeProvider struct {
	tables map[models.Circuit]*ratings.Table
	err    error
}

func (f *fakeProvider) Fetch(ctx context.Context, circuit models.Circuit) (*ratings.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tables[circuit], nil
}

func newTestServer(t *testing.T, provider ratings.Provider) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(newServer(provider, logger).routes())
	t.Cleanup(srv.Close)
	return srv
}

func sampleProvider() *fakeProvider {
	return &fakeProvider{tables: map[models.Circuit]*ratings.Table{
		models.ATP: ratings.NewTable([]models.PlayerRating{
			{Name: "Player A", Rank: 1, Elo: 1850, Hard: 1800, Clay: 1600, Grass: 1700},
			{Name: "Player B", Rank: 2, Elo: 1750, Hard: 1700, Clay: 1600, Grass: 1900},
			{Name: "Other C", Rank: 3, Elo: 1500, Hard: 1500, Clay: 1500, Grass: 1500},
		}),
		models.WTA: ratings.NewTable(nil),
	}}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestIndexRedirects(t *testing.T) {
	srv := newTestServer(t, sampleProvider())

	resp, _ := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/calculator", resp.Header.Get("Location"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestGetMatchup(t *testing.T) {
	srv := newTestServer(t, sampleProvider())

	resp, body := get(t, srv.URL+"/api/matchup?circuit=atp&surface=hard&player1=Player+A&player2=Player+B&margin=5")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var got struct {
		Circuit string `json:"circuit"`
		Surface string `json:"surface"`
		Margin  int    `json:"margin"`
		Player1 struct {
			Name        string  `json:"name"`
			Rating      float64 `json:"rating"`
			Probability float64 `json:"probability"`
			Odds        float64 `json:"odds"`
		} `json:"player1"`
		Player2 struct {
			Probability float64 `json:"probability"`
			Odds        float64 `json:"odds"`
		} `json:"player2"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))

	assert.Equal(t, "atp", got.Circuit)
	assert.Equal(t, "hard", got.Surface)
	assert.Equal(t, 5, got.Margin)
	assert.Equal(t, "Player A", got.Player1.Name)
	assert.Equal(t, 1800.0, got.Player1.Rating)
	assert.InDelta(t, 0.6401, got.Player1.Probability, 1e-4)
	assert.InDelta(t, 1.484, got.Player1.Odds, 1e-3)
	assert.InDelta(t, 0.3599, got.Player2.Probability, 1e-4)
	assert.InDelta(t, 2.639, got.Player2.Odds, 1e-3)
}

func TestGetMatchup_BadRequests(t *testing.T) {
	srv := newTestServer(t, sampleProvider())

	for _, query := range []string{
		"player1=Player+A&player2=Player+B&margin=15",
		"player1=Player+A&player2=Player+B&surface=carpet",
		"player1=Player+A&player2=Player+B&circuit=itf",
		"player1=Player+A",
	} {
		resp, body := get(t, srv.URL+"/api/matchup?"+query)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
		assert.Contains(t, body, `"error"`, query)
	}
}

func TestGetMatchup_UnknownPlayer(t *testing.T) {
	srv := newTestServer(t, sampleProvider())

	resp, body := get(t, srv.URL+"/api/matchup?player1=Player+A&player2=Nobody")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "player not found")
}

func TestGetMatchup_ProviderFailure(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{err: errors.New("boom")})

	resp, _ := get(t, srv.URL+"/api/matchup?player1=Player+A&player2=Player+B")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGetPlayers(t *testing.T) {
	srv := newTestServer(t, sampleProvider())

	resp, body := get(t, srv.URL+"/api/players?q=player")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got playersResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, models.ATP, got.Circuit)
	require.Len(t, got.Players, 2)
	assert.Equal(t, "Player A", got.Players[0].Name)
	assert.Equal(t, 1600.0, got.Players[0].Clay)

	resp, body = get(t, srv.URL+"/api/players?circuit=wta")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"circuit":"wta","players":[]}`, body)
}

func TestGetCalculator(t *testing.T) {
	srv := newTestServer(t, sampleProvider())

	resp, body := get(t, srv.URL+"/calculator?circuit=atp&surface=hard&player1=Player+A&player2=Player+B&margin=5")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, body, "Current ATP Ratings Elo Ratings fetched successfully!")
	assert.Contains(t, body, `<option value="Player B" selected>`)
	assert.Contains(t, body, "Elo Rating: <strong>1800</strong>")
	assert.Contains(t, body, "64.01%")
	assert.Contains(t, body, "35.99%")
	assert.Contains(t, body, "Odds: 1.48")
	assert.Contains(t, body, "Odds: 2.64")
	assert.Contains(t, body, `data-outcome="favourite"><strong>Player A</strong>`)
	assert.Contains(t, body, "/assets/img/hard-court.svg")
}

func TestGetCalculator_SearchFallsBackToFirstMatch(t *testing.T) {
	srv := newTestServer(t, sampleProvider())

	_, body := get(t, srv.URL+"/calculator?q1=other&player1=Player+A&player2=Player+B&surface=grass")

	assert.Contains(t, body, `<option value="Other C" selected>`)
	assert.NotContains(t, body, `<option value="Player A" selected>`)
	assert.Contains(t, body, "/assets/img/grass-court.svg")
}

func TestGetCalculator_InvalidParams(t *testing.T) {
	srv := newTestServer(t, sampleProvider())

	resp, body := get(t, srv.URL+"/calculator?margin=20&surface=carpet")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `class="error"`)
	assert.Contains(t, body, "invalid margin")
	assert.Contains(t, body, "unknown surface")
}

func TestGetCalculator_ProviderFailure(t *testing.T) {
	srv := newTestServer(t, &fakeProvider{err: errors.New("boom")})

	resp, body := get(t, srv.URL+"/calculator")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "could not fetch ATP Ratings")
	assert.NotContains(t, body, "Match Odds")
}

func TestAssetsAndHealth(t *testing.T) {
	srv := newTestServer(t, sampleProvider())

	resp, _ := get(t, srv.URL+"/assets/css/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, body = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "go_goroutines")
}

func lopsidedProvider() *fakeProvider {
	return &fakeProvider{tables: map[models.Circuit]*ratings.Table{
		models.ATP: ratings.NewTable([]models.PlayerRating{
			{Name: "Big", Hard: 200000},
			{Name: "Small", Hard: 1500},
		}),
	}}
}

func TestGetCalculator_CertainOutcome(t *testing.T) {
	srv := newTestServer(t, lopsidedProvider())

	resp, body := get(t, srv.URL+"/calculator?player1=Big&player2=Small&margin=0")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, body, "Elo Rating: <strong>200000</strong>")
	assert.Contains(t, body, "has a 100.00% chance")
	assert.Contains(t, body, "has a 0.00% chance")
	assert.Contains(t, body, "Odds: 1.00")
	assert.Contains(t, body, "Odds: ∞")
}

func TestGetMatchup_CertainOutcome(t *testing.T) {
	srv := newTestServer(t, lopsidedProvider())

	resp, body := get(t, srv.URL+"/api/matchup?player1=Big&player2=Small&margin=5")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{
		"circuit": "atp",
		"surface": "hard",
		"margin": 5,
		"player1": {"name": "Big", "rating": 200000, "probability": 1, "odds": 0.95},
		"player2": {"name": "Small", "rating": 1500, "probability": 0, "odds": null}
	}`, body)
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	s := newServer(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()

	s.writeJSON(rec, http.StatusOK, map[string]float64{"odds": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
}
