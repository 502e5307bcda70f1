package interfaces

import "crypto-observer/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defining the interface for sharing data with external systems (Server/Push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes data to all connected websocket listeners.
	Broadcast(payload *models.MLatestData)

	// -----------------------------------------------------------------------------
	// UpdateAllDatas merges new records into the internal state without broadcasting.
	UpdateAllDatas(data *models.MLatestData)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
