package grpc_control

import (
	"context"
	"fmt"

	"crypto-observer/src/config"
	datasource "crypto-observer/src/data_source"
	"crypto-observer/src/logger"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ControlService implements the CryptoObserverControlServer interface
type ControlService struct {
	UnimplementedCryptoObserverControlServer
	Config     *config.Config
	Aggregator *datasource.Aggregator
	Refresher  *datasource.Refresher
	ConfigPath string
	Logger     *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(
	cfg *config.Config,
	agg *datasource.Aggregator,
	refresher *datasource.Refresher,
	cfgPath string,
	log *logger.Logger,
) *ControlService {
	return &ControlService{
		Config:     cfg,
		Aggregator: agg,
		Refresher:  refresher,
		ConfigPath: cfgPath,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListProviders(ctx context.Context, req *Empty) (*ListProvidersResponse, error) {
	return &ListProvidersResponse{Providers: s.providerStatuses()}, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStats(ctx context.Context, req *Empty) (*StatsResponse, error) {
	stats := s.Aggregator.Stats()

	return &StatsResponse{
		IdentityEntries: int32(stats.IdentityEntries),
		ResultEntries:   int32(stats.ResultEntries),
		InflightKeys:    stats.InFlightKeys,
		Providers:       s.providerStatuses(),
	}, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) EvictCache(ctx context.Context, req *EvictRequest) (*ControlResponse, error) {
	if req.Query == "" {
		s.Aggregator.EvictAll()
		s.Logger.Info("gRPC: Evicted all cache entries")
		return &ControlResponse{Success: true, Message: "Evicted all cache entries"}, nil
	}

	s.Aggregator.EvictQuery(req.Query)
	s.Logger.Info("gRPC: Evicted cache entries for %q", req.Query)
	return &ControlResponse{Success: true, Message: fmt.Sprintf("Evicted cache entries for %q", req.Query)}, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) Refresh(ctx context.Context, req *RefreshRequest) (*ControlResponse, error) {
	if req.Query == "" {
		metrics := s.Refresher.RefreshOnce(ctx)
		return &ControlResponse{
			Success: true,
			Message: fmt.Sprintf("Watchlist cycle: %d refreshed, %d failed", metrics.RefreshedSymbols, metrics.FailedSymbols),
		}, nil
	}

	record, err := s.Aggregator.GetAggregatedData(ctx, req.Query, true)
	if err != nil {
		return &ControlResponse{
			Success: false,
			Message: fmt.Sprintf("Refresh failed: %v", err),
		}, nil
	}

	return &ControlResponse{
		Success: true,
		Message: fmt.Sprintf("Refreshed %q from %d providers", record.QueryKey, len(record.Sources)),
	}, nil
}

// -----------------------------------------------------------------------------

// UpdateWatchlist swaps the refreshed symbol set and persists the new list.
func (s *ControlService) UpdateWatchlist(ctx context.Context, req *UpdateWatchlistRequest) (*ControlResponse, error) {
	if len(req.Symbols) == 0 {
		return nil, status.Error(codes.InvalidArgument, "symbols list cannot be empty")
	}

	s.Refresher.UpdateSymbols(req.Symbols)

	// Update Config Persistence
	s.Config.Watchlist.Symbols = req.Symbols
	if err := s.Config.Save(s.ConfigPath); err != nil {
		s.Logger.Error("gRPC: Failed to persist watchlist: %v", err)
		return &ControlResponse{
			Success: false,
			Message: fmt.Sprintf("Watchlist updated in memory but not persisted: %v", err),
		}, nil
	}

	s.Logger.Info("gRPC: UpdateWatchlist success. Count: %d", len(req.Symbols))
	return &ControlResponse{
		Success: true,
		Message: fmt.Sprintf("Watchlist updated with %d symbols", len(req.Symbols)),
	}, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) providerStatuses() []*ProviderStatus {
	states := s.Aggregator.Stats().Breakers

	var statuses []*ProviderStatus
	for _, p := range s.Aggregator.Providers() {
		ps := &ProviderStatus{
			Name:         p.Name(),
			BreakerState: "closed", // No recorded calls yet
		}
		if st, ok := states[p.Name()]; ok {
			ps.BreakerState = st.State
			ps.Failures = int32(st.Failures)
			ps.Successes = int32(st.Successes)
			ps.LastFailureUnix = st.LastFailureUnix
		}
		statuses = append(statuses, ps)
	}
	return statuses
}
