package coinpaprika

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

const defaultBaseURL = "https://api.coinpaprika.com/v1"

// -----------------------------------------------------------------------------
// CoinPaprikaSource covers prices, supplies and rank but carries no image
// and no 24h high/low, so those fields stay nil in its partial records.
// -----------------------------------------------------------------------------

type CoinPaprikaSource struct {
	SourceConfig models.MProviderConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
}

// -----------------------------------------------------------------------------

func NewCoinPaprikaSource(cfg models.MProviderConfig, netMgr interfaces.INetworkManager) *CoinPaprikaSource {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &CoinPaprikaSource{
		SourceConfig: cfg,
		Network:      netMgr,
		Logger:       logger.NewLogger("", "CoinPaprikaSource-"+cfg.Name),
		baseURL:      baseURL,
	}
}

// -----------------------------------------------------------------------------

func (s *CoinPaprikaSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

type searchResponse struct {
	Currencies []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
		Rank   int    `json:"rank"`
	} `json:"currencies"`
}

// -----------------------------------------------------------------------------

// ResolveIdentity searches /search restricted to currencies.
func (s *CoinPaprikaSource) ResolveIdentity(ctx context.Context, query string) (models.MIdentity, error) {
	url := fmt.Sprintf("%s/search", s.baseURL)
	params := map[string]string{
		"q":     query,
		"c":     "currencies",
		"limit": "1",
	}

	body, err := s.Network.Get(ctx, url, params, nil)
	if err != nil {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: err}
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("json unmarshal failed: %w", err)}
	}

	if len(resp.Currencies) == 0 {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("no match for %q", query)}
	}

	currency := resp.Currencies[0]

	identity := models.MIdentity{
		ID:     currency.ID,
		Symbol: strings.ToLower(currency.Symbol),
		Name:   currency.Name,
		ProviderIDs: map[string]string{
			s.Name(): currency.ID,
		},
	}
	identity.AddAlias(strings.ToLower(currency.Name))
	identity.AddAlias(currency.ID)

	s.Logger.Debug("Resolved %q -> %s", query, currency.ID)
	return identity, nil
}

// -----------------------------------------------------------------------------

type tickerResponse struct {
	ID                string   `json:"id"`
	Rank              int      `json:"rank"`
	CirculatingSupply *float64 `json:"circulating_supply"`
	TotalSupply       *float64 `json:"total_supply"`
	MaxSupply         *float64 `json:"max_supply"` // 0 means uncapped on this API
	LastUpdated       string   `json:"last_updated"`
	Quotes            struct {
		USD struct {
			Price            *float64 `json:"price"`
			Volume24h        *float64 `json:"volume_24h"`
			MarketCap        *float64 `json:"market_cap"`
			PercentChange24h *float64 `json:"percent_change_24h"`
		} `json:"USD"`
	} `json:"quotes"`
}

// -----------------------------------------------------------------------------

// FetchData fetches /tickers/{id} and maps the USD quote.
func (s *CoinPaprikaSource) FetchData(ctx context.Context, identity models.MIdentity) (models.MPartialRecord, error) {
	id := identity.ProviderIDs[s.Name()]
	if id == "" {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("no native id for %s", identity.ID)}
	}

	url := fmt.Sprintf("%s/tickers/%s", s.baseURL, id)
	body, err := s.Network.Get(ctx, url, nil, nil)
	if err != nil {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: err}
	}

	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("json unmarshal failed: %w", err)}
	}

	record := models.MPartialRecord{
		Source:            s.Name(),
		Price:             resp.Quotes.USD.Price,
		Volume24h:         resp.Quotes.USD.Volume24h,
		MarketCap:         resp.Quotes.USD.MarketCap,
		PercentChange24h:  resp.Quotes.USD.PercentChange24h,
		CirculatingSupply: resp.CirculatingSupply,
		TotalSupply:       resp.TotalSupply,
	}

	// The API reports max_supply as 0 for uncapped assets; keep nil there so
	// the merge does not mask a real cap from another provider.
	if resp.MaxSupply != nil && *resp.MaxSupply > 0 {
		record.MaxSupply = resp.MaxSupply
	}
	if resp.Rank > 0 {
		rank := resp.Rank
		record.Rank = &rank
	}
	if ts, err := time.Parse(time.RFC3339, resp.LastUpdated); err == nil {
		unix := ts.Unix()
		record.LastUpdated = &unix
	}

	if record.Price == nil {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("no usd quote for %s", id)}
	}

	return record, nil
}
