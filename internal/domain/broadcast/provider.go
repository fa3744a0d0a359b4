package broadcast

import "strings"

// ProviderID identifies a canonical broadcaster brand. The empty value means
// "unmapped".
type ProviderID string

const (
	ProviderSkySports     ProviderID = "sky-sports"
	ProviderTNTSports     ProviderID = "tnt-sports"
	ProviderAmazonPrime   ProviderID = "amazon-prime"
	ProviderBBC           ProviderID = "bbc"
	ProviderITV           ProviderID = "itv"
	ProviderPremierSports ProviderID = "premier-sports"
)

// Provider is a broadcaster brand used for display grouping and priority
// selection. Lower Rank wins.
type Provider struct {
	ID   ProviderID
	Name string
	Rank int
}

// DefaultProviders is the fixed priority table. Not synced from upstream.
func DefaultProviders() []Provider {
	return []Provider{
		{ID: ProviderSkySports, Name: "Sky Sports", Rank: 1},
		{ID: ProviderTNTSports, Name: "TNT Sports", Rank: 2},
		{ID: ProviderAmazonPrime, Name: "Amazon Prime Video", Rank: 3},
		{ID: ProviderBBC, Name: "BBC", Rank: 4},
		{ID: ProviderITV, Name: "ITV", Rank: 5},
		{ID: ProviderPremierSports, Name: "Premier Sports", Rank: 6},
	}
}

// DefaultKeywordProviders maps case-insensitive channel-name tokens to
// provider brands. Checked in longest-token-first order by the classifier so
// "tnt sports" wins over a bare "sports".
func DefaultKeywordProviders() map[string]ProviderID {
	return map[string]ProviderID{
		"sky sports":     ProviderSkySports,
		"sky ultra":      ProviderSkySports,
		"tnt sports":     ProviderTNTSports,
		"bt sport":       ProviderTNTSports,
		"amazon":         ProviderAmazonPrime,
		"prime video":    ProviderAmazonPrime,
		"bbc":            ProviderBBC,
		"itv":            ProviderITV,
		"premier sports": ProviderPremierSports,
	}
}

// MatchKeyword reports the provider whose token appears in the channel name,
// preferring longer tokens over shorter ones.
func MatchKeyword(keywords map[string]ProviderID, channelName string) ProviderID {
	name := strings.ToLower(strings.TrimSpace(channelName))
	if name == "" || len(keywords) == 0 {
		return ""
	}

	best := ""
	for token := range keywords {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" || !strings.Contains(name, token) {
			continue
		}
		if len(token) > len(best) {
			best = token
		}
	}
	if best == "" {
		return ""
	}
	return keywords[best]
}
