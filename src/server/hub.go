package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"crypto-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientCount.Store(int64(len(s.clients)))
			// Send initial state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				client.send <- s.latestState
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.clientCount.Store(int64(len(s.clients)))
			}

		case message := <-s.broadcast:
			// Update state and broadcast
			s.stateMutex.Lock()
			s.latestState = message
			s.stateMutex.Unlock()

			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.clientCount.Store(int64(len(s.clients)))
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateAllDatas merges a refresh snapshot into the held state. Records for
// symbols absent from the update are kept, so a partially failed cycle does
// not blank out the dashboard.
func (s *FastAPIServer) UpdateAllDatas(data *models.MLatestData) {
	if data == nil {
		return
	}

	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	if s.latestState.Records == nil {
		s.latestState.Records = make(map[string]models.MAggregatedRecord)
	}
	for sym, rec := range data.Records {
		s.latestState.Records[sym] = rec
	}

	s.latestState.Timestamp = data.Timestamp
	s.latestState.Metrics = data.Metrics
	s.latestState.Type = "UPDATE"
}

// -----------------------------------------------------------------------------

// Broadcast enqueues a snapshot for the Hub loop.
func (s *FastAPIServer) Broadcast(message *models.MLatestData) {
	if message == nil {
		return
	}

	// Non-blocking is handled by the buffered channel sized in the
	// constructor; with 256 slots blocking is rare.
	s.broadcast <- message
}

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

// SetLatestState - Thread-safe state update
func (s *FastAPIServer) SetLatestState(state *models.MLatestData) {
	s.stateMutex.Lock()
	state.Type = "UPDATE"
	s.latestState = state
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MLatestData, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *FastAPIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	s.stateMutex.RLock()
	response := s.subscribeResponse(cmd.Symbols)
	s.stateMutex.RUnlock()

	// Use select to avoid blocking if client's send buffer is full
	select {
	case client.send <- response:
	default:
		// Client buffer full; the broadcast path prunes slow clients,
		// for direct responses we just drop.
	}
}

// -----------------------------------------------------------------------------
// Response Filtering
// -----------------------------------------------------------------------------

// subscribeResponse filters the held state down to the requested symbols.
// An empty symbol list means everything.
func (s *FastAPIServer) subscribeResponse(symbols []string) *models.MLatestData {
	filtered := make(map[string]models.MAggregatedRecord)

	if len(symbols) == 0 {
		for sym, rec := range s.latestState.Records {
			filtered[sym] = rec
		}
	} else {
		for _, sym := range symbols {
			key := strings.ToLower(sym)
			if rec, exists := s.latestState.Records[key]; exists {
				filtered[key] = rec
			}
		}
	}

	return &models.MLatestData{
		Type:      "INITIAL",
		Records:   filtered,
		Timestamp: s.latestState.Timestamp,
		Metrics:   s.latestState.Metrics,
	}
}
