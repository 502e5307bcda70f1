package binance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-observer/src/helpers"
	"crypto-observer/src/models"
)

// -----------------------------------------------------------------------------

type stubNetwork struct {
	lastURL    string
	lastParams map[string]string
	response   []byte
	err        error
}

func (s *stubNetwork) Get(_ context.Context, url string, params map[string]string, _ map[string]string) ([]byte, error) {
	s.lastURL = url
	s.lastParams = params
	return s.response, s.err
}

func (s *stubNetwork) Post(context.Context, string, []byte) ([]byte, error) {
	return nil, errors.New("not used")
}

func newTestSource(net *stubNetwork) *BinanceSource {
	return NewBinanceSource(models.MProviderConfig{Name: "binance", Type: "binance"}, net)
}

// -----------------------------------------------------------------------------

func TestLooksLikeSymbol(t *testing.T) {
	assert.True(t, looksLikeSymbol("btc"))
	assert.True(t, looksLikeSymbol("1inch"))
	assert.False(t, looksLikeSymbol("b"), "too short")
	assert.False(t, looksLikeSymbol("somelongname"), "too long")
	assert.False(t, looksLikeSymbol("bitcoin cash"), "spaces")
	assert.False(t, looksLikeSymbol("BTC"), "queries arrive lowercased")
}

func TestResolveIdentityAbstainsOnCoinNames(t *testing.T) {
	net := &stubNetwork{}
	source := newTestSource(net)

	_, err := source.ResolveIdentity(context.Background(), "bitcoin cash")
	assert.True(t, helpers.IsAbstention(err))
	assert.Empty(t, net.lastURL, "non-symbol queries never hit the exchange")
}

func TestResolveIdentityConfirmsTradingPair(t *testing.T) {
	net := &stubNetwork{response: []byte(`{
		"symbols": [{"symbol": "BTCUSDT", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "USDT"}]
	}`)}
	source := newTestSource(net)

	identity, err := source.ResolveIdentity(context.Background(), "btc")
	require.NoError(t, err)
	assert.Equal(t, "btc", identity.ID)
	assert.Equal(t, "BTCUSDT", identity.ProviderIDs["binance"])
	assert.Equal(t, "BTCUSDT", net.lastParams["symbol"])
}

func TestResolveIdentityAbstainsOnHaltedPair(t *testing.T) {
	net := &stubNetwork{response: []byte(`{
		"symbols": [{"symbol": "XYZUSDT", "status": "BREAK", "baseAsset": "XYZ", "quoteAsset": "USDT"}]
	}`)}
	source := newTestSource(net)

	_, err := source.ResolveIdentity(context.Background(), "xyz")
	assert.True(t, helpers.IsAbstention(err))
}

// -----------------------------------------------------------------------------

func TestFetchDataParsesStringNumbers(t *testing.T) {
	net := &stubNetwork{response: []byte(`{
		"symbol": "BTCUSDT",
		"lastPrice": "50000.50",
		"highPrice": "51000.00",
		"lowPrice": "49000.00",
		"quoteVolume": "30000000000.0",
		"priceChangePercent": "-1.250",
		"closeTime": 1787918400123
	}`)}
	source := newTestSource(net)

	identity := models.MIdentity{
		ID:          "btc",
		Symbol:      "btc",
		ProviderIDs: map[string]string{"binance": "BTCUSDT"},
	}

	record, err := source.FetchData(context.Background(), identity)
	require.NoError(t, err)

	require.NotNil(t, record.Price)
	assert.Equal(t, 50000.50, *record.Price)
	require.NotNil(t, record.PercentChange24h)
	assert.Equal(t, -1.25, *record.PercentChange24h)
	require.NotNil(t, record.LastUpdated)
	assert.Equal(t, int64(1787918400), *record.LastUpdated, "close time arrives in milliseconds")
	assert.Nil(t, record.MarketCap, "exchange tickers carry no market cap")
}

func TestFetchDataDerivesPairFromCanonicalSymbol(t *testing.T) {
	net := &stubNetwork{response: []byte(`{
		"symbol": "ETHUSDT",
		"lastPrice": "3000.0"
	}`)}
	source := newTestSource(net)

	// Resolved by another provider: no native pair for binance.
	identity := models.MIdentity{ID: "ethereum", Symbol: "eth"}

	record, err := source.FetchData(context.Background(), identity)
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", net.lastParams["symbol"])
	require.NotNil(t, record.Price)
	assert.Equal(t, 3000.0, *record.Price)
}

func TestFetchDataAbstainsWithoutPrice(t *testing.T) {
	net := &stubNetwork{response: []byte(`{"symbol": "BTCUSDT", "lastPrice": ""}`)}
	source := newTestSource(net)

	identity := models.MIdentity{ProviderIDs: map[string]string{"binance": "BTCUSDT"}}
	_, err := source.FetchData(context.Background(), identity)
	assert.True(t, helpers.IsAbstention(err))
}
