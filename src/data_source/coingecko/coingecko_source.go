package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crypto-observer/src/helpers"
	"crypto-observer/src/interfaces"
	"crypto-observer/src/logger"
	"crypto-observer/src/models"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// -----------------------------------------------------------------------------
// CoinGeckoSource has the richest field coverage of the shipped providers
// (supply figures, rank, image, 24h high/low), which is why the default
// config registers it first.
// -----------------------------------------------------------------------------

type CoinGeckoSource struct {
	SourceConfig models.MProviderConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
}

// -----------------------------------------------------------------------------

func NewCoinGeckoSource(cfg models.MProviderConfig, netMgr interfaces.INetworkManager) *CoinGeckoSource {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &CoinGeckoSource{
		SourceConfig: cfg,
		Network:      netMgr,
		Logger:       logger.NewLogger("", "CoinGeckoSource-"+cfg.Name),
		baseURL:      baseURL,
	}
}

// -----------------------------------------------------------------------------

func (s *CoinGeckoSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func (s *CoinGeckoSource) headers() map[string]string {
	if s.SourceConfig.APIKey == "" {
		return nil
	}
	return map[string]string{"x-cg-demo-api-key": s.SourceConfig.APIKey}
}

// -----------------------------------------------------------------------------

type searchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Symbol        string `json:"symbol"`
		MarketCapRank int    `json:"market_cap_rank"`
		Large         string `json:"large"`
	} `json:"coins"`
}

// -----------------------------------------------------------------------------

// ResolveIdentity looks the query up via /search and maps the best match.
func (s *CoinGeckoSource) ResolveIdentity(ctx context.Context, query string) (models.MIdentity, error) {
	url := fmt.Sprintf("%s/search", s.baseURL)
	body, err := s.Network.Get(ctx, url, map[string]string{"query": query}, s.headers())
	if err != nil {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: err}
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("json unmarshal failed: %w", err)}
	}

	if len(resp.Coins) == 0 {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("no match for %q", query)}
	}

	// Results are relevance-ordered; take the best match.
	coin := resp.Coins[0]

	identity := models.MIdentity{
		ID:     coin.ID,
		Symbol: strings.ToLower(coin.Symbol),
		Name:   coin.Name,
		ProviderIDs: map[string]string{
			s.Name(): coin.ID,
		},
	}
	identity.AddAlias(strings.ToLower(coin.Name))
	identity.AddAlias(coin.ID)

	s.Logger.Debug("Resolved %q -> %s", query, coin.ID)
	return identity, nil
}

// -----------------------------------------------------------------------------

type coinResponse struct {
	ID            string `json:"id"`
	MarketCapRank int    `json:"market_cap_rank"`
	Image         struct {
		Large string `json:"large"`
	} `json:"image"`
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		MarketCap                map[string]float64 `json:"market_cap"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		High24h                  map[string]float64 `json:"high_24h"`
		Low24h                   map[string]float64 `json:"low_24h"`
		PriceChangePercentage24h *float64           `json:"price_change_percentage_24h"`
		CirculatingSupply        *float64           `json:"circulating_supply"`
		TotalSupply              *float64           `json:"total_supply"` // null for some assets
		MaxSupply                *float64           `json:"max_supply"`   // null for uncapped assets
	} `json:"market_data"`
	LastUpdated string `json:"last_updated"`
}

// -----------------------------------------------------------------------------

// FetchData fetches /coins/{id} and maps the USD market data.
func (s *CoinGeckoSource) FetchData(ctx context.Context, identity models.MIdentity) (models.MPartialRecord, error) {
	id := identity.ProviderIDs[s.Name()]
	if id == "" {
		// This provider did not resolve the asset; its native id space is
		// unknown, so guessing by symbol would risk the wrong coin.
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("no native id for %s", identity.ID)}
	}

	url := fmt.Sprintf("%s/coins/%s", s.baseURL, id)
	params := map[string]string{
		"localization":   "false",
		"tickers":        "false",
		"market_data":    "true",
		"community_data": "false",
		"developer_data": "false",
	}

	body, err := s.Network.Get(ctx, url, params, s.headers())
	if err != nil {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: err}
	}

	var resp coinResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("json unmarshal failed: %w", err)}
	}

	record := models.MPartialRecord{
		Source:            s.Name(),
		PercentChange24h:  resp.MarketData.PriceChangePercentage24h,
		CirculatingSupply: resp.MarketData.CirculatingSupply,
		TotalSupply:       resp.MarketData.TotalSupply,
		MaxSupply:         resp.MarketData.MaxSupply,
	}

	if v, ok := resp.MarketData.CurrentPrice["usd"]; ok {
		record.Price = ptr(v)
	}
	if v, ok := resp.MarketData.MarketCap["usd"]; ok {
		record.MarketCap = ptr(v)
	}
	if v, ok := resp.MarketData.TotalVolume["usd"]; ok {
		record.Volume24h = ptr(v)
	}
	if v, ok := resp.MarketData.High24h["usd"]; ok {
		record.High24h = ptr(v)
	}
	if v, ok := resp.MarketData.Low24h["usd"]; ok {
		record.Low24h = ptr(v)
	}
	if resp.MarketCapRank > 0 {
		rank := resp.MarketCapRank
		record.Rank = &rank
	}
	if resp.Image.Large != "" {
		img := resp.Image.Large
		record.ImageURL = &img
	}
	if ts, err := time.Parse(time.RFC3339, resp.LastUpdated); err == nil {
		unix := ts.Unix()
		record.LastUpdated = &unix
	}

	if record.Price == nil {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("no usd price for %s", id)}
	}

	return record, nil
}

// -----------------------------------------------------------------------------

func ptr(v float64) *float64 {
	return &v
}
