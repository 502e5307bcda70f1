package utils

import (
	"runtime"
	"runtime/debug"
	"sync"

	"crypto-observer/src/logger"
	"crypto-observer/src/models"
)

// -----------------------------------------------------------------------------
// HistoryStore keeps per-symbol ring buffers of price points for the chart
// endpoints and the websocket backlog.
// -----------------------------------------------------------------------------

type HistoryStore struct {
	Buffers     map[string]*RingBuffer
	MaxMemoryMB int
	MaxPoints   int
	Logger      *logger.Logger
	mu          sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewHistoryStore(maxMemoryMB, maxPoints int) *HistoryStore {
	return &HistoryStore{
		Buffers:     make(map[string]*RingBuffer),
		MaxMemoryMB: maxMemoryMB,
		MaxPoints:   maxPoints,
		Logger:      logger.NewLogger("", "HistoryStore"),
	}
}

// -----------------------------------------------------------------------------

// AddPoint appends a point to the symbol's buffer, creating it on first use.
func (hs *HistoryStore) AddPoint(symbol string, point models.MPricePoint) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if _, ok := hs.Buffers[symbol]; !ok {
		hs.Buffers[symbol] = NewRingBuffer(hs.MaxPoints)
	}

	hs.Buffers[symbol].Append(point)

	// Periodic memory check
	if hs.Buffers[symbol].Size()%100 == 0 {
		hs.CheckMemoryLimits()
	}
}

// -----------------------------------------------------------------------------

// GetHistory returns up to n recent points for a symbol, oldest first.
// n <= 0 means the full buffer.
func (hs *HistoryStore) GetHistory(symbol string, n int) []models.MPricePoint {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	buffer, ok := hs.Buffers[symbol]
	if !ok || buffer.Size() == 0 {
		return []models.MPricePoint{}
	}

	var points []models.MPricePoint
	if n <= 0 {
		points = buffer.GetAll()
	} else {
		points = buffer.GetLatest(n)
	}

	for i := range points {
		points[i].Symbol = symbol
	}
	return points
}

// -----------------------------------------------------------------------------

// Latest returns the most recent point per symbol.
func (hs *HistoryStore) Latest() map[string]models.MPricePoint {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	result := make(map[string]models.MPricePoint)
	for sym, buffer := range hs.Buffers {
		if buffer.Size() == 0 {
			continue
		}
		latest := buffer.GetLatest(1)
		if len(latest) > 0 {
			latest[0].Symbol = sym
			result[sym] = latest[0]
		}
	}
	return result
}

// -----------------------------------------------------------------------------

// CheckMemoryLimits halves buffer capacities when the process heap exceeds
// the configured limit. Caller must hold the write lock.
func (hs *HistoryStore) CheckMemoryLimits() {
	currentMemory := hs.GetProcessMemoryMB()

	if currentMemory > float64(hs.MaxMemoryMB) {
		hs.Logger.Info("Memory usage %.1fMB exceeds limit %dMB. Cleaning up.",
			currentMemory, hs.MaxMemoryMB)

		for symbol := range hs.Buffers {
			buffer := hs.Buffers[symbol]
			if buffer.Capacity() > 100 {
				newCapacity := buffer.Capacity() / 2
				if newCapacity < 50 {
					newCapacity = 50
				}
				buffer.Resize(newCapacity)
			}
		}

		// Force garbage collection
		runtime.GC()
		debug.FreeOSMemory()
	}
}

// -----------------------------------------------------------------------------

// GetProcessMemoryMB gets current process memory usage in MB
func (hs *HistoryStore) GetProcessMemoryMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// HeapAlloc is the closest cheap proxy for resident data size
	return float64(m.HeapAlloc) / 1024 / 1024
}

// -----------------------------------------------------------------------------

// Cleanup clears all buffers.
func (hs *HistoryStore) Cleanup() {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	hs.Buffers = make(map[string]*RingBuffer)
	runtime.GC()
	debug.FreeOSMemory()
}

// -----------------------------------------------------------------------------

// HasSymbol checks if symbol exists
func (hs *HistoryStore) HasSymbol(symbol string) bool {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	_, ok := hs.Buffers[symbol]
	return ok
}

// -----------------------------------------------------------------------------

// SymbolCount returns number of symbols with data
func (hs *HistoryStore) SymbolCount() int {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	return len(hs.Buffers)
}
