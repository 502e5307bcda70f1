package models

// -----------------------------------------------------------------------------
// Observability snapshots for the cache inspection endpoint and the control plane.
// -----------------------------------------------------------------------------

type MCacheStats struct {
	IdentityEntries int                       `json:"identity_entries"`
	ResultEntries   int                       `json:"result_entries"`
	InFlightKeys    []string                  `json:"in_flight_keys"`
	Breakers        map[string]MBreakerStatus `json:"breakers"`
}

// -----------------------------------------------------------------------------

// MBreakerStatus is the externally visible state of one provider's circuit breaker.
type MBreakerStatus struct {
	State           string `json:"state"` // "closed", "open", "half-open"
	Failures        int    `json:"failures"`
	Successes       int    `json:"successes"`
	LastFailureUnix int64  `json:"last_failure_unix"`
}
