package sportmonks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matchtv/tvsync/internal/platform/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		BaseURL: server.URL,
		Token:   "test-token",
		Logger:  logging.NewNop(),
	})
}

func TestClient_FetchCurrentSeason(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/leagues/8") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{"id":8,"name":"Premier League","currentseason":{"id":25583,"name":"2025/2026","is_current":true}}}`))
	})

	season, payloads, err := client.FetchCurrentSeason(context.Background(), 8)
	if err != nil {
		t.Fatalf("FetchCurrentSeason error: %v", err)
	}
	if season.ExternalID != 25583 || season.Name != "2025/2026" {
		t.Fatalf("unexpected season: %+v", season)
	}
	if season.ExternalLeagueID != 8 {
		t.Fatalf("expected league id 8, got=%d", season.ExternalLeagueID)
	}
	if len(payloads) != 1 || payloads[0].PayloadHash == "" {
		t.Fatalf("expected one hashed payload, got=%+v", payloads)
	}
	if client.APICalls() != 1 {
		t.Fatalf("expected 1 api call, got=%d", client.APICalls())
	}
}

func TestClient_FetchCurrentSeason_MissingSeason(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":8,"name":"Premier League","currentseason":null}}`))
	})

	_, _, err := client.FetchCurrentSeason(context.Background(), 8)
	if err == nil {
		t.Fatalf("expected error for league without current season")
	}
}

func TestClient_FetchSeasonRounds(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":339273,"name":"Matchweek 1"},{"id":339274,"name":"Matchweek 2"},{"id":0,"name":"ignored"}]}`))
	})

	rounds, _, err := client.FetchSeasonRounds(context.Background(), 25583)
	if err != nil {
		t.Fatalf("FetchSeasonRounds error: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("expected 2 rounds, got=%d", len(rounds))
	}
	if rounds[0].ExternalID != 339273 || rounds[0].Name != "Matchweek 1" {
		t.Fatalf("unexpected first round: %+v", rounds[0])
	}
}

func TestClient_FetchRoundFixtures(t *testing.T) {
	t.Parallel()

	body := `{"data":{"id":339273,"name":"Matchweek 21","fixtures":[{
		"id":9001,
		"starting_at":"2026-01-10 15:00:00",
		"state_id":5,
		"participants":[
			{"id":1,"name":"Arsenal","meta":{"location":"home"}},
			{"id":2,"name":"Chelsea","meta":{"location":"away"}}
		],
		"scores":[
			{"participant_id":1,"description":"CURRENT","score":{"goals":2}},
			{"participant_id":2,"description":"CURRENT","score":{"goals":1}},
			{"participant_id":1,"description":"1ST_HALF","score":{"goals":0}}
		],
		"tvstations":[
			{"tvstation_id":101,"country_id":462,"tvstation":{"id":101,"name":"Sky Sports Main Event","type":"tv"}}
		]
	}]}}`
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	fixtures, _, err := client.FetchRoundFixtures(context.Background(), 339273)
	if err != nil {
		t.Fatalf("FetchRoundFixtures error: %v", err)
	}
	if len(fixtures) != 1 {
		t.Fatalf("expected 1 fixture, got=%d", len(fixtures))
	}

	fx := fixtures[0]
	if fx.ExternalID != 9001 {
		t.Fatalf("unexpected external id: %d", fx.ExternalID)
	}
	if fx.Round.ExternalID != 339273 || fx.Round.Name != "Matchweek 21" {
		t.Fatalf("round must echo the provider: %+v", fx.Round)
	}
	if fx.HomeTeamName != "Arsenal" || fx.AwayTeamName != "Chelsea" {
		t.Fatalf("unexpected participants: %+v", fx)
	}
	if fx.Status != "FINISHED" {
		t.Fatalf("state 5 must map to FINISHED, got=%s", fx.Status)
	}
	if fx.HomeScore == nil || *fx.HomeScore != 2 || fx.AwayScore == nil || *fx.AwayScore != 1 {
		t.Fatalf("CURRENT score must win over half-time split: %+v", fx)
	}
	if !fx.HasTVStations || len(fx.TVStations) != 1 {
		t.Fatalf("expected tv stations present: %+v", fx)
	}
	if fx.TVStations[0].Name != "Sky Sports Main Event" || fx.TVStations[0].CountryID != 462 {
		t.Fatalf("unexpected station: %+v", fx.TVStations[0])
	}
	if fx.KickoffAt.IsZero() {
		t.Fatalf("expected parsed kickoff time")
	}
}

func TestClient_FetchRoundFixtures_MissingTVBlock(t *testing.T) {
	t.Parallel()

	body := `{"data":{"id":1,"name":"Matchweek 1","fixtures":[{
		"id":9002,
		"starting_at":"2026-01-10 15:00:00",
		"state_id":1,
		"participants":[
			{"id":1,"name":"Arsenal","meta":{"location":"home"}},
			{"id":2,"name":"Chelsea","meta":{"location":"away"}}
		]
	}]}}`
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	fixtures, _, err := client.FetchRoundFixtures(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchRoundFixtures error: %v", err)
	}
	if fixtures[0].HasTVStations {
		t.Fatalf("absent tvstations block must not count as present")
	}
	if fixtures[0].HomeScore != nil {
		t.Fatalf("no scores delivered, expected nil")
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"Matchweek 1"}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Token:      "test-token",
		MaxRetries: 2,
		Logger:     logging.NewNop(),
	})

	rounds, _, err := client.FetchSeasonRounds(context.Background(), 25583)
	if err != nil {
		t.Fatalf("FetchSeasonRounds error: %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("expected 1 round after retry, got=%d", len(rounds))
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got=%d", attempts)
	}
}

func TestClient_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Token:      "test-token",
		MaxRetries: 3,
		Logger:     logging.NewNop(),
	})

	_, _, err := client.FetchSeasonRounds(context.Background(), 25583)
	if err == nil {
		t.Fatalf("expected error for 403")
	}
	if attempts != 1 {
		t.Fatalf("403 must not be retried, got=%d attempts", attempts)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(`Get "https://example.com?api_token=secret123": timeout`, "secret123")
	if strings.Contains(got, "secret123") {
		t.Fatalf("token leaked: %s", got)
	}
}

func TestMapFixtureStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		stateID    int64
		resultInfo string
		want       string
	}{
		{1, "", "SCHEDULED"},
		{3, "", "LIVE"},
		{5, "", "FINISHED"},
		{10, "", "POSTPONED"},
		{11, "", "CANCELLED"},
		{0, "Game Postponed", "POSTPONED"},
		{0, "Full Time result", "FINISHED"},
		{0, "", "SCHEDULED"},
	}
	for _, tc := range cases {
		if got := mapFixtureStatus(tc.stateID, tc.resultInfo); got != tc.want {
			t.Fatalf("mapFixtureStatus(%d, %q)=%s want=%s", tc.stateID, tc.resultInfo, got, tc.want)
		}
	}
}

func TestNumericScore_SkipsNonNumericCandidates(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		item   fixtureScoreItem
		want   int
		wantOK bool
	}{
		{
			name:   "bool goals falls through to data",
			item:   fixtureScoreItem{Goals: true, Data: map[string]any{"goals": float64(2)}},
			want:   2,
			wantOK: true,
		},
		{
			name:   "object candidate falls through to score total",
			item:   fixtureScoreItem{Goals: map[string]any{"home": 1}, Score: map[string]any{"total": float64(3)}},
			want:   3,
			wantOK: true,
		},
		{
			name:   "unparsable string is not a score of zero",
			item:   fixtureScoreItem{Goals: "n/a"},
			wantOK: false,
		},
		{
			name:   "numeric string parses",
			item:   fixtureScoreItem{Goals: "1"},
			want:   1,
			wantOK: true,
		},
	}
	for _, tc := range cases {
		got, ok := tc.item.numericScore()
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("%s: numericScore()=(%d,%t) want=(%d,%t)", tc.name, got, ok, tc.want, tc.wantOK)
		}
	}
}
