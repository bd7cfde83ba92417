package ratings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nilsimda/tennis-elo/metrics"
	"github.com/nilsimda/tennis-elo/models"
)

var ErrMissingColumn = errors.New("ratings table missing column")

// DefaultURLs are the tennisabstract.com Elo reports for each circuit.
var DefaultURLs = map[models.Circuit]string{
	models.ATP: "https://tennisabstract.com/reports/atp_elo_ratings.html",
	models.WTA: "https://tennisabstract.com/reports/wta_elo_ratings.html",
}

// Provider supplies a fresh ratings table for a circuit.
type Provider interface {
	Fetch(ctx context.Context, circuit models.Circuit) (*Table, error)
}

// StatusError is returned when the ratings page answers with a non-200 status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status code for %s: %d", e.URL, e.Code)
}

type Options struct {
	URLs       map[models.Circuit]string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	UserAgent  string
	Logger     *slog.Logger
}

// Scraper fetches ratings pages over HTTP and reads the second table on the page.
type Scraper struct {
	httpClient *http.Client
	urls       map[models.Circuit]string
	retries    int
	retryDelay time.Duration
	userAgent  string
	logger     *slog.Logger
}

func NewScraper(opts Options) *Scraper {
	urls := make(map[models.Circuit]string, len(DefaultURLs))
	for c, u := range DefaultURLs {
		urls[c] = u
	}
	for c, u := range opts.URLs {
		if u != "" {
			urls[c] = u
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scraper{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSHandshakeTimeout: 10 * time.Second,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConns:        10,
			},
		},
		urls:       urls,
		retries:    max(opts.Retries, 0),
		retryDelay: opts.RetryDelay,
		userAgent:  opts.UserAgent,
		logger:     logger,
	}
}

func (s *Scraper) Fetch(ctx context.Context, circuit models.Circuit) (*Table, error) {
	url, ok := s.urls[circuit]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownCircuit, circuit)
	}

	start := time.Now()
	table, err := s.fetch(ctx, url)
	metrics.RatingsFetchDuration.WithLabelValues(string(circuit)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RatingsFetches.WithLabelValues(string(circuit), "error").Inc()
		return nil, fmt.Errorf("fetch %s ratings: %w", circuit, err)
	}
	metrics.RatingsFetches.WithLabelValues(string(circuit), "ok").Inc()

	if table.Skipped() > 0 {
		metrics.RatingsSkippedRows.WithLabelValues(string(circuit)).Add(float64(table.Skipped()))
		s.logger.Warn("Skipped unparseable rating rows", "circuit", circuit, "skipped", table.Skipped())
	}
	s.logger.Info("Fetched ratings", "circuit", circuit, "players", table.Len(), "elapsed", time.Since(start))
	return table, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (*Table, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(s.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		table, retry, err := s.fetchOnce(ctx, url)
		if err == nil {
			return table, nil
		}
		lastErr = err
		if !retry {
			break
		}
		s.logger.Warn("Ratings fetch failed", "url", url, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

// fetchOnce reports whether a failed attempt is worth retrying.
func (s *Scraper) fetchOnce(ctx context.Context, url string) (*Table, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= http.StatusInternalServerError, &StatusError{URL: url, Code: resp.StatusCode}
	}

	table, err := Parse(resp.Body)
	return table, false, err
}

// Parse reads a ratings page. Pages with fewer than two tables yield an
// empty table.
func Parse(r io.Reader) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tables := doc.Find("table")
	if tables.Length() < 2 {
		return NewTable(nil), nil
	}
	return parseTable(tables.Eq(1))
}

type columns struct {
	player, rank, elo int
	hard, clay, grass int
}

func parseTable(table *goquery.Selection) (*Table, error) {
	rows := table.Find("tr")

	headerRow := 0
	rows.EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if tr.Children().Filter("th").Length() > 0 {
			headerRow = i
			return false
		}
		return true
	})

	header := make(map[string]int)
	cells(rows.Eq(headerRow)).Each(func(i int, cell *goquery.Selection) {
		key := strings.ToLower(normalizeName(cell.Text()))
		if _, ok := header[key]; !ok {
			header[key] = i
		}
	})

	col := func(name string) int {
		if i, ok := header[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}
	cols := columns{
		player: col("Player"),
		rank:   col("Elo Rank"),
		elo:    col("Elo"),
		hard:   col(models.Hard.Column()),
		clay:   col(models.Clay.Column()),
		grass:  col(models.Grass.Column()),
	}
	for _, required := range []struct {
		name  string
		index int
	}{
		{"Player", cols.player},
		{models.Hard.Column(), cols.hard},
		{models.Clay.Column(), cols.clay},
		{models.Grass.Column(), cols.grass},
	} {
		if required.index < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required.name)
		}
	}

	t := NewTable(nil)
	rows.Each(func(i int, tr *goquery.Selection) {
		if i <= headerRow {
			return
		}
		row := cells(tr)
		name := normalizeName(row.Eq(cols.player).Text())
		if name == "" {
			return
		}

		p, ok := parseRow(row, cols)
		if !ok {
			t.skipped++
			return
		}
		p.Name = name
		t.add(p)
	})
	return t, nil
}

func parseRow(row *goquery.Selection, cols columns) (models.PlayerRating, bool) {
	var p models.PlayerRating
	var err error

	if p.Hard, err = parseNumber(row, cols.hard); err != nil {
		return p, false
	}
	if p.Clay, err = parseNumber(row, cols.clay); err != nil {
		return p, false
	}
	if p.Grass, err = parseNumber(row, cols.grass); err != nil {
		return p, false
	}

	// Optional columns stay zero when absent or blank.
	if cols.elo >= 0 {
		p.Elo, _ = parseNumber(row, cols.elo)
	}
	if cols.rank >= 0 {
		rank, _ := parseNumber(row, cols.rank)
		p.Rank = int(rank)
	}
	return p, true
}

func parseNumber(row *goquery.Selection, i int) (float64, error) {
	if i >= row.Length() {
		return 0, fmt.Errorf("column %d out of range", i)
	}
	f, err := strconv.ParseFloat(normalizeName(row.Eq(i).Text()), 64)
	if err != nil {
		return 0, err
	}
	// ParseFloat accepts "NaN" and "Inf", which no rating can be.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("column %d: non-finite rating %v", i, f)
	}
	return f, nil
}

func cells(tr *goquery.Selection) *goquery.Selection {
	return tr.Children().Filter("th, td")
}
