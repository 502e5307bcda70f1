package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"crypto-observer/src/helpers"
	"crypto-observer/src/interfaces"
	"crypto-observer/src/logger"
	"crypto-observer/src/models"
)

const (
	defaultBaseURL = "https://api.binance.com"
	quoteAsset     = "USDT"
)

// -----------------------------------------------------------------------------
// BinanceSource only speaks trading symbols, not coin names: it can confirm
// "btc" trades as BTCUSDT but cannot search for "bitcoin". Resolution
// therefore abstains on anything that does not look like a ticker symbol,
// and the exchange data it returns is price/volume only (no supplies, no
// rank, no image).
// -----------------------------------------------------------------------------

type BinanceSource struct {
	SourceConfig models.MProviderConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
}

// -----------------------------------------------------------------------------

func NewBinanceSource(cfg models.MProviderConfig, netMgr interfaces.INetworkManager) *BinanceSource {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &BinanceSource{
		SourceConfig: cfg,
		Network:      netMgr,
		Logger:       logger.NewLogger("", "BinanceSource-"+cfg.Name),
		baseURL:      baseURL,
	}
}

// -----------------------------------------------------------------------------

func (s *BinanceSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func looksLikeSymbol(query string) bool {
	if len(query) < 2 || len(query) > 10 {
		return false
	}
	for _, r := range query {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------

type exchangeInfoResponse struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		Status     string `json:"status"`
		BaseAsset  string `json:"baseAsset"`
		QuoteAsset string `json:"quoteAsset"`
	} `json:"symbols"`
}

// -----------------------------------------------------------------------------

// ResolveIdentity checks whether <QUERY>USDT is a listed trading pair.
func (s *BinanceSource) ResolveIdentity(ctx context.Context, query string) (models.MIdentity, error) {
	if !looksLikeSymbol(query) {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("%q is not a ticker symbol", query)}
	}

	pair := strings.ToUpper(query) + quoteAsset
	url := fmt.Sprintf("%s/api/v3/exchangeInfo", s.baseURL)
	body, err := s.Network.Get(ctx, url, map[string]string{"symbol": pair}, nil)
	if err != nil {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: err}
	}

	var resp exchangeInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("json unmarshal failed: %w", err)}
	}

	if len(resp.Symbols) == 0 || resp.Symbols[0].Status != "TRADING" {
		return models.MIdentity{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("no trading pair %s", pair)}
	}

	base := strings.ToLower(resp.Symbols[0].BaseAsset)

	identity := models.MIdentity{
		ID:     base,
		Symbol: base,
		Name:   resp.Symbols[0].BaseAsset,
		ProviderIDs: map[string]string{
			s.Name(): resp.Symbols[0].Symbol,
		},
	}
	identity.AddAlias(base)

	s.Logger.Debug("Resolved %q -> %s", query, resp.Symbols[0].Symbol)
	return identity, nil
}

// -----------------------------------------------------------------------------

type ticker24hResponse struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	QuoteVolume        string `json:"quoteVolume"`
	PriceChangePercent string `json:"priceChangePercent"`
	CloseTime          int64  `json:"closeTime"` // ms
}

// -----------------------------------------------------------------------------

// FetchData fetches the rolling 24h ticker for the resolved pair. When the
// asset was resolved by another provider the pair is derived from the
// canonical symbol, so Binance can still contribute exchange data.
func (s *BinanceSource) FetchData(ctx context.Context, identity models.MIdentity) (models.MPartialRecord, error) {
	pair := identity.ProviderIDs[s.Name()]
	if pair == "" {
		if identity.Symbol == "" {
			return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("no symbol for %s", identity.ID)}
		}
		pair = strings.ToUpper(identity.Symbol) + quoteAsset
	}

	url := fmt.Sprintf("%s/api/v3/ticker/24hr", s.baseURL)
	body, err := s.Network.Get(ctx, url, map[string]string{"symbol": pair}, nil)
	if err != nil {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: err}
	}

	var resp ticker24hResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("json unmarshal failed: %w", err)}
	}

	record := models.MPartialRecord{
		Source:           s.Name(),
		Price:            parseFloat(resp.LastPrice),
		High24h:          parseFloat(resp.HighPrice),
		Low24h:           parseFloat(resp.LowPrice),
		Volume24h:        parseFloat(resp.QuoteVolume),
		PercentChange24h: parseFloat(resp.PriceChangePercent),
	}
	if resp.CloseTime > 0 {
		unix := resp.CloseTime / 1000
		record.LastUpdated = &unix
	}

	if record.Price == nil {
		return models.MPartialRecord{}, &helpers.ProviderAbstentionError{Provider: s.Name(), Cause: fmt.Errorf("no last price for %s", pair)}
	}

	return record, nil
}

// -----------------------------------------------------------------------------

// parseFloat maps the API's string-encoded numbers, returning nil for
// anything unparseable so the merge skips the field.
func parseFloat(raw string) *float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
