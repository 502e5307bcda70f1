package models

// -----------------------------------------------------------------------------
// Server State Structure pushed to websocket clients
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type      string                       `json:"type"` // "INITIAL" or "UPDATE"
	Records   map[string]MAggregatedRecord `json:"records"`
	Timestamp int64                        `json:"timestamp"`
	Metrics   MRefreshMetrics              `json:"refresh_metrics"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"`
}
