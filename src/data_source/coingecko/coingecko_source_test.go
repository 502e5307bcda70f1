package coingecko

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-observer/src/helpers"
	"crypto-observer/src/models"
)

// -----------------------------------------------------------------------------

type stubNetwork struct {
	lastURL     string
	lastParams  map[string]string
	lastHeaders map[string]string
	response    []byte
	err         error
}

func (s *stubNetwork) Get(_ context.Context, url string, params map[string]string, headers map[string]string) ([]byte, error) {
	s.lastURL = url
	s.lastParams = params
	s.lastHeaders = headers
	return s.response, s.err
}

func (s *stubNetwork) Post(context.Context, string, []byte) ([]byte, error) {
	return nil, errors.New("not used")
}

func newTestSource(net *stubNetwork) *CoinGeckoSource {
	return NewCoinGeckoSource(models.MProviderConfig{
		Name: "coingecko",
		Type: "coingecko",
	}, net)
}

// -----------------------------------------------------------------------------

func TestResolveIdentityTakesBestMatch(t *testing.T) {
	net := &stubNetwork{response: []byte(`{
		"coins": [
			{"id": "bitcoin", "name": "Bitcoin", "symbol": "BTC", "market_cap_rank": 1, "large": "https://img/btc.png"},
			{"id": "bitcoin-cash", "name": "Bitcoin Cash", "symbol": "BCH", "market_cap_rank": 20}
		]
	}`)}
	source := newTestSource(net)

	identity, err := source.ResolveIdentity(context.Background(), "btc")
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", identity.ID)
	assert.Equal(t, "btc", identity.Symbol)
	assert.Equal(t, "Bitcoin", identity.Name)
	assert.Equal(t, "bitcoin", identity.ProviderIDs["coingecko"])
	assert.Contains(t, identity.Aliases, "bitcoin")
	assert.True(t, strings.HasSuffix(net.lastURL, "/search"))
	assert.Equal(t, "btc", net.lastParams["query"])
}

func TestResolveIdentityAbstainsOnNoMatch(t *testing.T) {
	net := &stubNetwork{response: []byte(`{"coins": []}`)}
	source := newTestSource(net)

	_, err := source.ResolveIdentity(context.Background(), "nope")
	assert.True(t, helpers.IsAbstention(err))
}

func TestResolveIdentityAbstainsOnTransportFailure(t *testing.T) {
	net := &stubNetwork{err: errors.New("timeout")}
	source := newTestSource(net)

	_, err := source.ResolveIdentity(context.Background(), "btc")
	assert.True(t, helpers.IsAbstention(err), "transport failures must not escape as raw errors")
}

// -----------------------------------------------------------------------------

func TestFetchDataMapsUSDMarketData(t *testing.T) {
	net := &stubNetwork{response: []byte(`{
		"id": "bitcoin",
		"market_cap_rank": 1,
		"image": {"large": "https://img/btc.png"},
		"market_data": {
			"current_price": {"usd": 50000.5, "eur": 46000},
			"market_cap": {"usd": 950000000000},
			"total_volume": {"usd": 30000000000},
			"high_24h": {"usd": 51000},
			"low_24h": {"usd": 49000},
			"price_change_percentage_24h": -1.25,
			"circulating_supply": 19500000,
			"total_supply": 21000000,
			"max_supply": 21000000
		},
		"last_updated": "2026-08-28T12:00:00Z"
	}`)}
	source := newTestSource(net)

	identity := models.MIdentity{
		ID:          "bitcoin",
		Symbol:      "btc",
		ProviderIDs: map[string]string{"coingecko": "bitcoin"},
	}

	record, err := source.FetchData(context.Background(), identity)
	require.NoError(t, err)

	assert.Equal(t, "coingecko", record.Source)
	require.NotNil(t, record.Price)
	assert.Equal(t, 50000.5, *record.Price)
	require.NotNil(t, record.MarketCap)
	assert.Equal(t, 9.5e11, *record.MarketCap)
	require.NotNil(t, record.PercentChange24h)
	assert.Equal(t, -1.25, *record.PercentChange24h)
	require.NotNil(t, record.Rank)
	assert.Equal(t, 1, *record.Rank)
	require.NotNil(t, record.ImageURL)
	assert.Equal(t, "https://img/btc.png", *record.ImageURL)
	require.NotNil(t, record.LastUpdated)
	assert.Equal(t, int64(1787918400), *record.LastUpdated)
	assert.True(t, strings.HasSuffix(net.lastURL, "/coins/bitcoin"))
}

func TestFetchDataAbstainsWithoutNativeID(t *testing.T) {
	net := &stubNetwork{}
	source := newTestSource(net)

	_, err := source.FetchData(context.Background(), models.MIdentity{ID: "bitcoin", Symbol: "btc"})
	assert.True(t, helpers.IsAbstention(err))
	assert.Empty(t, net.lastURL, "no request without a native id")
}

func TestFetchDataAbstainsWithoutUSDPrice(t *testing.T) {
	net := &stubNetwork{response: []byte(`{
		"id": "obscurecoin",
		"market_data": {"current_price": {"eur": 1.0}}
	}`)}
	source := newTestSource(net)

	identity := models.MIdentity{
		ID:          "obscurecoin",
		ProviderIDs: map[string]string{"coingecko": "obscurecoin"},
	}

	_, err := source.FetchData(context.Background(), identity)
	assert.True(t, helpers.IsAbstention(err))
}

func TestAPIKeyHeaderOnlyWhenConfigured(t *testing.T) {
	net := &stubNetwork{response: []byte(`{"coins": [{"id": "bitcoin", "name": "Bitcoin", "symbol": "BTC"}]}`)}
	source := NewCoinGeckoSource(models.MProviderConfig{
		Name:   "coingecko",
		APIKey: "demo-key",
	}, net)

	_, err := source.ResolveIdentity(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, "demo-key", net.lastHeaders["x-cg-demo-api-key"])
}
