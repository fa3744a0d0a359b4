package sportmonks

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
)

type leagueEnvelope struct {
	Data leagueDetails `json:"data"`
}

type leagueDetails struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	CurrentSeason relation[seasonRef] `json:"currentseason"`
}

type seasonRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
}

type roundsEnvelope struct {
	Data []roundItem `json:"data"`
}

type roundItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type roundDetailEnvelope struct {
	Data roundDetails `json:"data"`
}

type roundDetails struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Fixtures []fixtureDetails `json:"fixtures"`
}

type fixtureDetails struct {
	ID           int64                `json:"id"`
	StartingAt   string               `json:"starting_at"`
	StateID      int64                `json:"state_id"`
	ResultInfo   string               `json:"result_info"`
	Participants []fixtureParticipant `json:"participants"`
	Scores       []fixtureScoreItem   `json:"scores"`
	State        relation[stateRef]   `json:"state"`
	// Pointer distinguishes an absent tvstations block from an empty one.
	TVStations *[]fixtureTVStationItem `json:"tvstations"`
}

type stateRef struct {
	ID        int64  `json:"id"`
	State     string `json:"state"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type fixtureParticipant struct {
	ID   int64                  `json:"id"`
	Name string                 `json:"name"`
	Meta fixtureParticipantMeta `json:"meta"`
}

type fixtureParticipantMeta struct {
	Location string `json:"location"`
}

type fixtureScoreItem struct {
	ParticipantID int64          `json:"participant_id"`
	Description   string         `json:"description"`
	Score         map[string]any `json:"score"`
	Data          map[string]any `json:"data"`
	Goals         any            `json:"goals"`
}

type fixtureTVStationItem struct {
	TVStationID int64                  `json:"tvstation_id"`
	CountryID   int64                  `json:"country_id"`
	Name        string                 `json:"name"`
	TVStation   relation[tvStationRef] `json:"tvstation"`
}

type tvStationRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// relation handles the provider's habit of delivering related entities either
// wrapped in {"data": ...} or inline.
type relation[T any] struct {
	Data T
	Set  bool
}

func (r *relation[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Set = false
		return nil
	}

	var wrapped struct {
		Data *T `json:"data"`
	}
	if err := sonic.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Data != nil {
		r.Data = *wrapped.Data
		r.Set = true
		return nil
	}

	var direct T
	if err := sonic.Unmarshal(trimmed, &direct); err != nil {
		return err
	}
	r.Data = direct
	r.Set = true
	return nil
}

func parseProviderDateTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
		time.RFC3339,
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

func resolveFixtureParticipants(participants []fixtureParticipant) (string, string, int64, int64) {
	var homeName, awayName string
	var homeID, awayID int64
	for _, item := range participants {
		switch strings.ToLower(strings.TrimSpace(item.Meta.Location)) {
		case "home":
			homeName = strings.TrimSpace(item.Name)
			homeID = item.ID
		case "away":
			awayName = strings.TrimSpace(item.Name)
			awayID = item.ID
		}
	}
	return homeName, awayName, homeID, awayID
}

// resolveFixtureScores prefers the most authoritative score description the
// provider offers (CURRENT over half-time splits).
func resolveFixtureScores(scores []fixtureScoreItem, participants []fixtureParticipant) (*int, *int) {
	if len(scores) == 0 {
		return nil, nil
	}

	var homeParticipantID int64
	var awayParticipantID int64
	for _, item := range participants {
		switch strings.ToLower(strings.TrimSpace(item.Meta.Location)) {
		case "home":
			homeParticipantID = item.ID
		case "away":
			awayParticipantID = item.ID
		}
	}

	bestWeight := 0
	homeValues := map[int]int{}
	awayValues := map[int]int{}
	for _, score := range scores {
		value, ok := score.numericScore()
		if !ok {
			continue
		}

		weight := scoreDescriptionWeight(score.Description)
		if weight == 0 {
			weight = 1
		}
		if weight > bestWeight {
			bestWeight = weight
			homeValues = map[int]int{}
			awayValues = map[int]int{}
		}
		if weight < bestWeight {
			continue
		}

		if score.ParticipantID == homeParticipantID && homeParticipantID > 0 {
			homeValues[weight] = value
		}
		if score.ParticipantID == awayParticipantID && awayParticipantID > 0 {
			awayValues[weight] = value
		}
	}

	var home *int
	if value, ok := homeValues[bestWeight]; ok {
		home = &value
	}
	var away *int
	if value, ok := awayValues[bestWeight]; ok {
		away = &value
	}
	return home, away
}

func scoreDescriptionWeight(raw string) int {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CURRENT":
		return 5
	case "FT", "FULLTIME", "FULL TIME":
		return 4
	case "AET", "PENALTIES", "PEN":
		return 4
	case "2ND_HALF", "2ND HALF":
		return 3
	case "1ST_HALF", "1ST HALF", "HT", "HALFTIME":
		return 2
	default:
		return 0
	}
}

func (f fixtureScoreItem) numericScore() (int, bool) {
	for _, candidate := range []any{
		f.Goals,
		lookupMapValue(f.Data, "goals"),
		lookupMapValue(f.Data, "value"),
		lookupMapValue(f.Score, "goals"),
		lookupMapValue(f.Score, "value"),
		lookupMapValue(f.Score, "total"),
	} {
		if candidate == nil {
			continue
		}
		value, ok := asFloat64(candidate)
		if !ok {
			continue
		}
		if score := int(value); score >= 0 {
			return score, true
		}
	}
	return 0, false
}

func mapFixtureStatus(stateID int64, resultInfo string) string {
	switch stateID {
	case 2, 3, 4, 6, 7, 8, 9:
		return "LIVE"
	case 5, 13, 14:
		return "FINISHED"
	case 10:
		return "POSTPONED"
	case 11, 12:
		return "CANCELLED"
	case 1:
		return "SCHEDULED"
	}

	info := strings.ToLower(strings.TrimSpace(resultInfo))
	switch {
	case strings.Contains(info, "postpon"):
		return "POSTPONED"
	case strings.Contains(info, "cancel"), strings.Contains(info, "abandon"):
		return "CANCELLED"
	case strings.Contains(info, "live"), strings.Contains(info, "in play"), strings.Contains(info, "half"):
		return "LIVE"
	case strings.Contains(info, "finish"), strings.Contains(info, "full time"), strings.Contains(info, "aet"), strings.Contains(info, "pen"):
		return "FINISHED"
	default:
		return "SCHEDULED"
	}
}

func lookupMapValue(src map[string]any, key string) any {
	if src == nil {
		return nil
	}
	return src[key]
}

func asFloat64(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
