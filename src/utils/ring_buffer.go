package utils

import (
	"time"

	"crypto-observer/src/models"
)

// Ring buffer feature layout (columns of the packed float rows).
const (
	RB_IDX_TIMESTAMP = 0
	RB_IDX_PRICE     = 1
	RB_IDX_VOLUME    = 2
	RB_IDX_PCT       = 3

	RB_NUM_FEATURES = 4
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of price points, packed as
// float rows to keep per-point overhead flat. True ring buffer - no
// implicit resizing.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	// Data storage as 2D slice (rows x features)
	data     [][RB_NUM_FEATURES]float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	return &RingBuffer{
		data:     make([][RB_NUM_FEATURES]float64, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Append adds a price point, overwriting the oldest row when full.
func (rb *RingBuffer) Append(point models.MPricePoint) {
	rb.data[rb.index] = [RB_NUM_FEATURES]float64{
		float64(point.Timestamp),
		point.Price,
		point.Volume,
		point.PercentChange,
	}

	rb.index = (rb.index + 1) % rb.capacity

	// Update size (never exceeds capacity)
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// unpack rebuilds a price point from a packed row. The symbol is not stored
// per row; callers that need it set it on the result.
func unpack(row [RB_NUM_FEATURES]float64) models.MPricePoint {
	ts := int64(row[RB_IDX_TIMESTAMP])
	return models.MPricePoint{
		Timestamp:     ts,
		Price:         row[RB_IDX_PRICE],
		Volume:        row[RB_IDX_VOLUME],
		PercentChange: row[RB_IDX_PCT],
		CreatedAt:     time.Unix(ts, 0).UTC(),
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n most recent points, oldest first.
func (rb *RingBuffer) GetLatest(n int) []models.MPricePoint {
	if rb.size == 0 || n <= 0 {
		return []models.MPricePoint{}
	}

	count := n
	if n > rb.size {
		count = rb.size
	}

	result := make([]models.MPricePoint, count)

	// Latest data is at index-1
	startIdx := (rb.index - count + rb.capacity) % rb.capacity

	for i := 0; i < count; i++ {
		idx := (startIdx + i) % rb.capacity
		result[i] = unpack(rb.data[idx])
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all data in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll() []models.MPricePoint {
	if rb.size == 0 {
		return []models.MPricePoint{}
	}

	result := make([]models.MPricePoint, rb.size)

	// Oldest element: wrap-around when full, index 0 otherwise
	var startIdx int
	if rb.size == rb.capacity {
		startIdx = rb.index
	} else {
		startIdx = 0
	}

	for i := 0; i < rb.size; i++ {
		idx := (startIdx + i) % rb.capacity
		result[i] = unpack(rb.data[idx])
	}

	return result
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// -----------------------------------------------------------------------------

// Resize changes the capacity of the buffer.
// If newCapacity < size, oldest data is dropped.
func (rb *RingBuffer) Resize(newCapacity int) {
	if newCapacity <= 0 {
		return
	}
	if newCapacity == rb.capacity {
		return
	}

	newData := make([][RB_NUM_FEATURES]float64, newCapacity)

	// Keep the newest 'count' rows
	count := rb.size
	if count > newCapacity {
		count = newCapacity
	}

	startIdx := (rb.index - count + rb.capacity) % rb.capacity

	for i := 0; i < count; i++ {
		idx := (startIdx + i) % rb.capacity
		newData[i] = rb.data[idx]
	}

	rb.data = newData
	rb.capacity = newCapacity
	rb.size = count
	rb.index = count % newCapacity
}

// -----------------------------------------------------------------------------

// IsFull returns whether buffer is full
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}
