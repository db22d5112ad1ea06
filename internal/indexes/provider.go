// Package indexes fetches monthly monetary-correction series (TR, IPCA,
// CDI) from the Banco Central SGS open-data API and resolves them into the
// lookup tables the engines consume. The fetch completes before a simulation
// starts; on failure the caller passes a nil series to the engine and the
// correction degrades to a no-op.
package indexes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brfinance/finsim/pkg/constants"
	"github.com/brfinance/finsim/pkg/datetime"
	"github.com/brfinance/finsim/pkg/schedule"
	"go.uber.org/zap"
)

// DefaultBaseURL is the Banco Central SGS API endpoint.
const DefaultBaseURL = "https://api.bcb.gov.br"

// sgsDateLayout is the day-month-year format used by the SGS API.
const sgsDateLayout = "02/01/2006"

// seriesCodes maps the correction-index names accepted in configuration to
// SGS series codes (monthly series).
var seriesCodes = map[string]int{
	"tr":   226,
	"ipca": 433,
	"cdi":  4391,
}

// Provider fetches and caches correction-index series.
type Provider struct {
	baseURL string
	client  *http.Client
	cache   Cache
	logger  *zap.Logger
}

// NewProvider creates a provider. An empty baseURL falls back to the public
// SGS endpoint; a nil cache falls back to an in-memory one.
func NewProvider(logger *zap.Logger, baseURL string, cache Cache) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		cache:   cache,
		logger:  logger,
	}
}

// KnownSeries reports whether a correction-index name is supported.
func KnownSeries(name string) bool {
	_, ok := seriesCodes[strings.ToLower(name)]
	return ok
}

type sgsObservation struct {
	Date  string `json:"data"`
	Value string `json:"valor"`
}

// Series fetches the named monthly series covering termMonths periods from
// startDate (YYYY-MM), returning year-month keys mapped to decimal
// fractions. Cached responses are served without a network round trip.
func (p *Provider) Series(ctx context.Context, name, startDate string, termMonths int) (schedule.IndexSeries, error) {
	code, ok := seriesCodes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown correction index %q", name)
	}
	if startDate == "" {
		return nil, fmt.Errorf("correction index %q requires a start date", name)
	}

	endDate, err := datetime.OffsetDate(startDate, datetime.DateTimeLayout, termMonths)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}

	cacheKey := fmt.Sprintf("sgs:%d:%s:%s", code, startDate, endDate)
	if cached, ok := p.cache.Get(cacheKey); ok {
		var series schedule.IndexSeries
		if err := json.Unmarshal([]byte(cached), &series); err == nil {
			p.logger.Debug(fmt.Sprintf("serving series %s from cache", name),
				zap.String("op", "indexes.Series"),
			)
			return series, nil
		}
		// A corrupt cache entry falls through to a fresh fetch.
	}

	series, err := p.fetch(ctx, code, startDate, endDate)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(series); err == nil {
		if err := p.cache.Set(cacheKey, string(encoded)); err != nil {
			p.logger.Warn("failed to cache index series",
				zap.String("op", "indexes.Series"),
				zap.String("series", name),
				zap.Error(err),
			)
		}
	}

	return series, nil
}

func (p *Provider) fetch(ctx context.Context, code int, startDate, endDate string) (schedule.IndexSeries, error) {
	startT, err := time.Parse(datetime.DateTimeLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	endT, err := time.Parse(datetime.DateTimeLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}

	url := fmt.Sprintf("%s/dados/serie/bcdata.sgs.%d/dados?formato=json&dataInicial=%s&dataFinal=%s",
		p.baseURL, code, startT.Format(sgsDateLayout), endT.Format(sgsDateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build SGS request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SGS request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SGS request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.DefaultMaxRequestSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read SGS response: %w", err)
	}

	var observations []sgsObservation
	if err := json.Unmarshal(body, &observations); err != nil {
		return nil, fmt.Errorf("failed to decode SGS response: %w", err)
	}

	series := make(schedule.IndexSeries, len(observations))
	for _, obs := range observations {
		obsDate, err := time.Parse(sgsDateLayout, obs.Date)
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		// SGS quotes monthly variation in percent.
		series[obsDate.Format(datetime.DateTimeLayout)] = value / constants.PercentageMultiplier
	}

	return series, nil
}
