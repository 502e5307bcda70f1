// Message types for control.proto, maintained by hand in the legacy
// generated style. Keep field numbers in sync with the proto file.

package grpc_control

import (
	proto "github.com/golang/protobuf/proto"
)

// -----------------------------------------------------------------------------

type Empty struct{}

func (m *Empty) Reset()         { *m = Empty{} }
func (m *Empty) String() string { return proto.CompactTextString(m) }
func (*Empty) ProtoMessage()    {}

// -----------------------------------------------------------------------------

type ProviderStatus struct {
	Name            string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	BreakerState    string `protobuf:"bytes,2,opt,name=breaker_state,json=breakerState,proto3" json:"breaker_state,omitempty"`
	Failures        int32  `protobuf:"varint,3,opt,name=failures,proto3" json:"failures,omitempty"`
	Successes       int32  `protobuf:"varint,4,opt,name=successes,proto3" json:"successes,omitempty"`
	LastFailureUnix int64  `protobuf:"varint,5,opt,name=last_failure_unix,json=lastFailureUnix,proto3" json:"last_failure_unix,omitempty"`
}

func (m *ProviderStatus) Reset()         { *m = ProviderStatus{} }
func (m *ProviderStatus) String() string { return proto.CompactTextString(m) }
func (*ProviderStatus) ProtoMessage()    {}

func (m *ProviderStatus) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

func (m *ProviderStatus) GetBreakerState() string {
	if m != nil {
		return m.BreakerState
	}
	return ""
}

// -----------------------------------------------------------------------------

type ListProvidersResponse struct {
	Providers []*ProviderStatus `protobuf:"bytes,1,rep,name=providers,proto3" json:"providers,omitempty"`
}

func (m *ListProvidersResponse) Reset()         { *m = ListProvidersResponse{} }
func (m *ListProvidersResponse) String() string { return proto.CompactTextString(m) }
func (*ListProvidersResponse) ProtoMessage()    {}

func (m *ListProvidersResponse) GetProviders() []*ProviderStatus {
	if m != nil {
		return m.Providers
	}
	return nil
}

// -----------------------------------------------------------------------------

type StatsResponse struct {
	IdentityEntries int32             `protobuf:"varint,1,opt,name=identity_entries,json=identityEntries,proto3" json:"identity_entries,omitempty"`
	ResultEntries   int32             `protobuf:"varint,2,opt,name=result_entries,json=resultEntries,proto3" json:"result_entries,omitempty"`
	InflightKeys    []string          `protobuf:"bytes,3,rep,name=inflight_keys,json=inflightKeys,proto3" json:"inflight_keys,omitempty"`
	Providers       []*ProviderStatus `protobuf:"bytes,4,rep,name=providers,proto3" json:"providers,omitempty"`
}

func (m *StatsResponse) Reset()         { *m = StatsResponse{} }
func (m *StatsResponse) String() string { return proto.CompactTextString(m) }
func (*StatsResponse) ProtoMessage()    {}

// -----------------------------------------------------------------------------

type EvictRequest struct {
	Query string `protobuf:"bytes,1,opt,name=query,proto3" json:"query,omitempty"`
}

func (m *EvictRequest) Reset()         { *m = EvictRequest{} }
func (m *EvictRequest) String() string { return proto.CompactTextString(m) }
func (*EvictRequest) ProtoMessage()    {}

func (m *EvictRequest) GetQuery() string {
	if m != nil {
		return m.Query
	}
	return ""
}

// -----------------------------------------------------------------------------

type RefreshRequest struct {
	Query string `protobuf:"bytes,1,opt,name=query,proto3" json:"query,omitempty"`
}

func (m *RefreshRequest) Reset()         { *m = RefreshRequest{} }
func (m *RefreshRequest) String() string { return proto.CompactTextString(m) }
func (*RefreshRequest) ProtoMessage()    {}

func (m *RefreshRequest) GetQuery() string {
	if m != nil {
		return m.Query
	}
	return ""
}

// -----------------------------------------------------------------------------

type UpdateWatchlistRequest struct {
	Symbols []string `protobuf:"bytes,1,rep,name=symbols,proto3" json:"symbols,omitempty"`
}

func (m *UpdateWatchlistRequest) Reset()         { *m = UpdateWatchlistRequest{} }
func (m *UpdateWatchlistRequest) String() string { return proto.CompactTextString(m) }
func (*UpdateWatchlistRequest) ProtoMessage()    {}

func (m *UpdateWatchlistRequest) GetSymbols() []string {
	if m != nil {
		return m.Symbols
	}
	return nil
}

// -----------------------------------------------------------------------------

type ControlResponse struct {
	Success bool   `protobuf:"varint,1,opt,name=success,proto3" json:"success,omitempty"`
	Message string `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *ControlResponse) Reset()         { *m = ControlResponse{} }
func (m *ControlResponse) String() string { return proto.CompactTextString(m) }
func (*ControlResponse) ProtoMessage()    {}

func (m *ControlResponse) GetSuccess() bool {
	if m != nil {
		return m.Success
	}
	return false
}

func (m *ControlResponse) GetMessage() string {
	if m != nil {
		return m.Message
	}
	return ""
}
