package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-observer/src/models"
)

// -----------------------------------------------------------------------------

type stubNetwork struct {
	lastURL  string
	lastBody []byte
	response []byte
	err      error
}

func (s *stubNetwork) Get(context.Context, string, map[string]string, map[string]string) ([]byte, error) {
	return nil, errors.New("not used")
}

func (s *stubNetwork) Post(_ context.Context, url string, body []byte) ([]byte, error) {
	s.lastURL = url
	s.lastBody = body
	return s.response, s.err
}

func testConfig() models.MOllamaConfig {
	return models.MOllamaConfig{
		BaseURL:        "http://localhost:11434",
		Model:          "llama3.2",
		TimeoutSeconds: 5,
		Temperature:    0.7,
		MaxTokens:      256,
	}
}

// -----------------------------------------------------------------------------

func TestGenerateSendsNonStreamingRequest(t *testing.T) {
	net := &stubNetwork{response: []byte(`{"response":"Markets are calm.","done":true}`)}
	client := NewOllamaClient(testConfig(), net)

	answer, err := client.Generate(context.Background(), "say something")
	require.NoError(t, err)
	assert.Equal(t, "Markets are calm.", answer)
	assert.Equal(t, "http://localhost:11434/api/generate", net.lastURL)

	var req map[string]interface{}
	require.NoError(t, json.Unmarshal(net.lastBody, &req))
	assert.Equal(t, "llama3.2", req["model"])
	assert.Equal(t, "say something", req["prompt"])
	assert.Equal(t, false, req["stream"])
}

func TestGenerateTrimsWhitespace(t *testing.T) {
	net := &stubNetwork{response: []byte(`{"response":"\n  answer  \n","done":true}`)}
	client := NewOllamaClient(testConfig(), net)

	answer, err := client.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)
}

func TestGenerateRejectsEmptyResponse(t *testing.T) {
	net := &stubNetwork{response: []byte(`{"response":"","done":true}`)}
	client := NewOllamaClient(testConfig(), net)

	_, err := client.Generate(context.Background(), "p")
	assert.Error(t, err)
}

func TestGeneratePropagatesTransportFailure(t *testing.T) {
	net := &stubNetwork{err: errors.New("connection refused")}
	client := NewOllamaClient(testConfig(), net)

	_, err := client.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

// -----------------------------------------------------------------------------

func TestBuildMarketPromptIncludesAvailableFields(t *testing.T) {
	price := 50000.1234
	change := -2.5
	rec := models.MAggregatedRecord{
		Identity:         models.MIdentity{Name: "Bitcoin", Symbol: "btc"},
		Price:            &price,
		PercentChange24h: &change,
	}

	prompt := BuildMarketPrompt(rec)
	assert.Contains(t, prompt, "Bitcoin (BTC)")
	assert.Contains(t, prompt, "$50000.1234")
	assert.Contains(t, prompt, "-2.50%")
	assert.NotContains(t, prompt, "Market cap", "absent fields stay out of the prompt")
	assert.Contains(t, prompt, "No financial advice")
}
