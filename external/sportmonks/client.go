package sportmonks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/matchtv/tvsync/internal/domain/broadcast"
	"github.com/matchtv/tvsync/internal/domain/rawdata"
	"github.com/matchtv/tvsync/internal/platform/logging"
	"github.com/matchtv/tvsync/internal/platform/resilience"
	"github.com/matchtv/tvsync/internal/usecase"
)

const (
	defaultBaseURL             = "https://api.sportmonks.com/v3/football"
	defaultIncludeLeague       = "currentSeason"
	defaultIncludeRoundFixture = "fixtures.participants;fixtures.scores;fixtures.state;fixtures.tvstations.tvstation"
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errSportMonksTransient = crerr.New("sportmonks transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the SportMonks v3 football API. It implements
// usecase.FixtureFeedProvider.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	calls          atomic.Int64
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// APICalls reports the number of upstream requests made by this client.
func (c *Client) APICalls() int {
	return int(c.calls.Load())
}

// FetchCurrentSeason resolves the running season of an external league.
func (c *Client) FetchCurrentSeason(ctx context.Context, leagueID int64) (usecase.ExternalSeason, []rawdata.Payload, error) {
	if leagueID <= 0 {
		return usecase.ExternalSeason{}, nil, fmt.Errorf("league id must be greater than zero")
	}

	path := fmt.Sprintf("/leagues/%d", leagueID)
	query := map[string]string{"include": defaultIncludeLeague}

	var envelope leagueEnvelope
	raw, err := c.doJSON(ctx, path, query, &envelope)
	if err != nil {
		return usecase.ExternalSeason{}, nil, fmt.Errorf("fetch league league_id=%d: %w", leagueID, err)
	}
	payloads := []rawdata.Payload{buildAPIPayload(path, query, raw)}

	if !envelope.Data.CurrentSeason.Set || envelope.Data.CurrentSeason.Data.ID <= 0 {
		return usecase.ExternalSeason{}, payloads, fmt.Errorf("league %d has no current season", leagueID)
	}
	season := envelope.Data.CurrentSeason.Data
	return usecase.ExternalSeason{
		ExternalID:       season.ID,
		ExternalLeagueID: leagueID,
		Name:             strings.TrimSpace(season.Name),
		IsCurrent:        true,
	}, payloads, nil
}

// FetchSeasonRounds lists every round of a season as the provider names them.
func (c *Client) FetchSeasonRounds(ctx context.Context, seasonID int64) ([]usecase.ExternalRound, []rawdata.Payload, error) {
	if seasonID <= 0 {
		return nil, nil, fmt.Errorf("season id must be greater than zero")
	}

	path := fmt.Sprintf("/rounds/seasons/%d", seasonID)

	var envelope roundsEnvelope
	raw, err := c.doJSON(ctx, path, nil, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch rounds season_id=%d: %w", seasonID, err)
	}
	payloads := []rawdata.Payload{buildAPIPayload(path, nil, raw)}

	rounds := make([]usecase.ExternalRound, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if item.ID <= 0 {
			continue
		}
		rounds = append(rounds, usecase.ExternalRound{
			ExternalID: item.ID,
			Name:       strings.TrimSpace(item.Name),
		})
	}
	return rounds, payloads, nil
}

// FetchRoundFixtures returns one round's fixtures with participants, scores,
// match state and TV stations hydrated in a single request.
func (c *Client) FetchRoundFixtures(ctx context.Context, roundID int64) ([]usecase.ExternalFixture, []rawdata.Payload, error) {
	if roundID <= 0 {
		return nil, nil, fmt.Errorf("round id must be greater than zero")
	}

	path := fmt.Sprintf("/rounds/%d", roundID)
	query := map[string]string{"include": defaultIncludeRoundFixture}

	var envelope roundDetailEnvelope
	raw, err := c.doJSON(ctx, path, query, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch round round_id=%d: %w", roundID, err)
	}
	payloads := []rawdata.Payload{buildAPIPayload(path, query, raw)}

	round := usecase.ExternalRound{
		ExternalID: envelope.Data.ID,
		Name:       strings.TrimSpace(envelope.Data.Name),
	}
	fixtures := make([]usecase.ExternalFixture, 0, len(envelope.Data.Fixtures))
	for _, item := range envelope.Data.Fixtures {
		if item.ID <= 0 {
			continue
		}
		fixtures = append(fixtures, mapFixtureDetails(item, round))
	}
	return fixtures, payloads, nil
}

func mapFixtureDetails(item fixtureDetails, round usecase.ExternalRound) usecase.ExternalFixture {
	homeName, awayName, homeID, awayID := resolveFixtureParticipants(item.Participants)
	out := usecase.ExternalFixture{
		ExternalID:         item.ID,
		Round:              round,
		HomeTeamExternalID: homeID,
		HomeTeamName:       homeName,
		AwayTeamExternalID: awayID,
		AwayTeamName:       awayName,
		Status:             mapFixtureStatus(item.StateID, item.ResultInfo),
	}
	if parsed := parseProviderDateTime(item.StartingAt); parsed != nil {
		out.KickoffAt = *parsed
	}
	out.HomeScore, out.AwayScore = resolveFixtureScores(item.Scores, item.Participants)

	// A nil tvstations block means the include was absent or the provider has
	// no TV data yet; only a present block may drive broadcast replacement.
	if item.TVStations != nil {
		out.HasTVStations = true
		out.TVStations = make([]broadcast.Station, 0, len(*item.TVStations))
		for _, ts := range *item.TVStations {
			station := mapTVStation(ts)
			if station.ExternalID > 0 {
				out.TVStations = append(out.TVStations, station)
			}
		}
	}
	return out
}

func mapTVStation(item fixtureTVStationItem) broadcast.Station {
	station := broadcast.Station{
		ExternalID: item.TVStationID,
		CountryID:  item.CountryID,
	}
	if item.TVStation.Set {
		if station.ExternalID <= 0 {
			station.ExternalID = item.TVStation.Data.ID
		}
		station.Name = strings.TrimSpace(item.TVStation.Data.Name)
		station.Type = strings.TrimSpace(item.TVStation.Data.Type)
	}
	if station.Name == "" {
		station.Name = strings.TrimSpace(item.Name)
	}
	return station
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: sport data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isSportMonksCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		c.calls.Add(1)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errSportMonksTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errSportMonksTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: provider status=%d body=%s", errSportMonksTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	value = apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
	return value
}

func buildAPIPayload(path string, query map[string]string, raw []byte) rawdata.Payload {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	entityKey := strings.TrimSpace(path)
	if encoded := values.Encode(); encoded != "" {
		entityKey += "?" + encoded
	}
	sum := sha256.Sum256(raw)
	now := time.Now().UTC()
	return rawdata.Payload{
		Source:      "sportmonks",
		EntityType:  "api_response",
		EntityKey:   entityKey,
		PayloadJSON: string(raw),
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   &now,
	}
}

func isSportMonksCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errSportMonksTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
