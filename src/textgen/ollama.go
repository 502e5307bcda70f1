package textgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crypto-observer/src/interfaces"
	"crypto-observer/src/logger"
	"crypto-observer/src/models"
)

// -----------------------------------------------------------------------------
// OllamaClient talks to a local Ollama daemon over its /api/generate
// endpoint. Generation is slow on CPU-only hosts, so the per-call timeout
// comes from config and defaults to two minutes.
// -----------------------------------------------------------------------------

type OllamaClient struct {
	Config  models.MOllamaConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewOllamaClient(cfg models.MOllamaConfig, netMgr interfaces.INetworkManager) *OllamaClient {
	return &OllamaClient{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger("", "OllamaClient"),
	}
}

// -----------------------------------------------------------------------------

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// -----------------------------------------------------------------------------

// Generate sends the prompt and returns the completed (non-streamed) answer.
func (o *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	timeout := time.Duration(o.Config.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := generateRequest{
		Model:  o.Config.Model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": o.Config.Temperature,
			"num_predict": o.Config.MaxTokens,
		},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", o.Config.BaseURL)
	start := time.Now()
	body, err := o.Network.Post(ctx, url, payload)
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("ollama response unmarshal failed: %w", err)
	}

	answer := strings.TrimSpace(resp.Response)
	if answer == "" {
		return "", fmt.Errorf("ollama returned an empty response for model %s", o.Config.Model)
	}

	o.Logger.Debug("Generated %d chars in %.1fs", len(answer), time.Since(start).Seconds())
	return answer, nil
}

// -----------------------------------------------------------------------------

// BuildMarketPrompt renders an aggregated record into a compact prompt asking
// for a short market commentary.
func BuildMarketPrompt(record models.MAggregatedRecord) string {
	var sb strings.Builder
	sb.WriteString("You are a concise crypto market analyst.\n")
	sb.WriteString(fmt.Sprintf("Asset: %s (%s)\n", record.Identity.Name, strings.ToUpper(record.Identity.Symbol)))
	if record.Price != nil {
		sb.WriteString(fmt.Sprintf("Price: $%.4f\n", *record.Price))
	}
	if record.PercentChange24h != nil {
		sb.WriteString(fmt.Sprintf("24h change: %.2f%%\n", *record.PercentChange24h))
	}
	if record.MarketCap != nil {
		sb.WriteString(fmt.Sprintf("Market cap: $%.0f\n", *record.MarketCap))
	}
	if record.Volume24h != nil {
		sb.WriteString(fmt.Sprintf("24h volume: $%.0f\n", *record.Volume24h))
	}
	if record.High24h != nil && record.Low24h != nil {
		sb.WriteString(fmt.Sprintf("24h range: $%.4f - $%.4f\n", *record.Low24h, *record.High24h))
	}
	sb.WriteString("Write 2-3 sentences of commentary on this data. No financial advice.")
	return sb.String()
}
