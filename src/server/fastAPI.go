package server

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"crypto-observer/src/data_source"
	"crypto-observer/src/interfaces"
	"crypto-observer/src/logger"
	"crypto-observer/src/models"
	"crypto-observer/src/textgen"
	"crypto-observer/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// FastAPIServer
// -----------------------------------------------------------------------------

type FastAPIServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	Aggregator *datasource.Aggregator
	History    *utils.HistoryStore
	TextGen    interfaces.ITextGenerator // nil when the insight endpoint is disabled
	engine     *gin.Engine

	// WebSocket clients. The map belongs to the hub loop; everyone else
	// reads the connection count through the atomic counter.
	clients     map[*Client]struct{}
	clientCount atomic.Int64
	broadcast   chan *models.MLatestData // Strongly typed and Buffered Queue
	register    chan *Client
	unregister  chan *Client

	// Local cache
	latestState *models.MLatestData
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFastAPIServer(cfg *models.MConfig, agg *datasource.Aggregator, history *utils.HistoryStore, gen interfaces.ITextGenerator, log *logger.Logger) *FastAPIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FastAPIServer{
		Config:     cfg,
		Logger:     log,
		Aggregator: agg,
		History:    history,
		TextGen:    gen,
		engine:     gin.Default(),
		clients:    make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		// Queue size of 256 ensures we can handle bursts of updates
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latestState: &models.MLatestData{
			Type:      "INITIAL",
			Records:   make(map[string]models.MAggregatedRecord),
			Timestamp: 0,
			Metrics:   models.MRefreshMetrics{},
		},
	}

	// Request id first so every log line downstream can carry it
	s.engine.Use(func(c *gin.Context) {
		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	})

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/coins/:query", s.getCoin)
	s.engine.GET("/api/history/:symbol", s.getHistory)
	s.engine.GET("/api/insight/:query", s.getInsight)
	s.engine.GET("/api/cache/stats", s.getCacheStats)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *FastAPIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) Stop() error {
	// Clean shutdown
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

// getCoin aggregates one asset across all providers.
// ?refresh=true bypasses the caches.
func (s *FastAPIServer) getCoin(c *gin.Context) {
	query := c.Param("query")
	forceRefresh := c.Query("refresh") == "true"

	record, err := s.Aggregator.GetAggregatedData(c.Request.Context(), query, forceRefresh)
	if err != nil {
		abortWithAggregationError(c, err)
		return
	}

	c.JSON(200, record)
}

// -----------------------------------------------------------------------------

// getHistory returns buffered chart points for a symbol.
// ?limit=N caps the response to the N most recent points.
func (s *FastAPIServer) getHistory(c *gin.Context) {
	symbol := strings.ToLower(c.Param("symbol"))

	points := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			points = n
		}
	}

	if !s.History.HasSymbol(symbol) {
		c.JSON(404, gin.H{"error": fmt.Sprintf("no history for symbol %q", symbol)})
		return
	}

	c.JSON(200, gin.H{
		"symbol": symbol,
		"points": s.History.GetHistory(symbol, points),
	})
}

// -----------------------------------------------------------------------------

// getInsight aggregates the asset, then asks the text generator for a short
// commentary on the merged record.
func (s *FastAPIServer) getInsight(c *gin.Context) {
	if s.TextGen == nil {
		c.JSON(503, gin.H{"error": "text generation is not configured"})
		return
	}

	query := c.Param("query")
	record, err := s.Aggregator.GetAggregatedData(c.Request.Context(), query, false)
	if err != nil {
		abortWithAggregationError(c, err)
		return
	}

	insight, err := s.TextGen.Generate(c.Request.Context(), textgen.BuildMarketPrompt(record))
	if err != nil {
		s.Logger.Error("Insight generation failed for %q: %v", query, err)
		c.JSON(502, gin.H{"error": "text generation failed"})
		return
	}

	c.JSON(200, gin.H{
		"query":   record.QueryKey,
		"symbol":  record.Identity.Symbol,
		"insight": insight,
		"record":  record,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getCacheStats(c *gin.Context) {
	c.JSON(200, s.Aggregator.Stats())
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getConfig(c *gin.Context) {
	providers := make([]string, 0, len(s.Aggregator.Providers()))
	for _, p := range s.Aggregator.Providers() {
		providers = append(providers, p.Name())
	}

	c.JSON(200, gin.H{
		"providers":        providers,
		"watchlist":        s.Config.Watchlist.Symbols,
		"refresh_interval": s.Config.Watchlist.RefreshIntervalSeconds,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	connections := s.clientCount.Load()

	s.stateMutex.RLock()
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": timestamp,
		"uptime":        time.Now().UTC().Unix() - startedAt,
	})
}

// -----------------------------------------------------------------------------

var startedAt = time.Now().UTC().Unix()

// Methods moved to hub.go to follow Single Responsibility Principle
