// Service plumbing for control.proto in the legacy generated style:
// server interface, registration, handlers and a thin client.

package grpc_control

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

// -----------------------------------------------------------------------------

// CryptoObserverControlServer is the server API for CryptoObserverControl.
type CryptoObserverControlServer interface {
	ListProviders(context.Context, *Empty) (*ListProvidersResponse, error)
	GetStats(context.Context, *Empty) (*StatsResponse, error)
	EvictCache(context.Context, *EvictRequest) (*ControlResponse, error)
	Refresh(context.Context, *RefreshRequest) (*ControlResponse, error)
	UpdateWatchlist(context.Context, *UpdateWatchlistRequest) (*ControlResponse, error)
}

// -----------------------------------------------------------------------------

// UnimplementedCryptoObserverControlServer can be embedded for forward
// compatible implementations.
type UnimplementedCryptoObserverControlServer struct{}

func (*UnimplementedCryptoObserverControlServer) ListProviders(context.Context, *Empty) (*ListProvidersResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListProviders not implemented")
}
func (*UnimplementedCryptoObserverControlServer) GetStats(context.Context, *Empty) (*StatsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetStats not implemented")
}
func (*UnimplementedCryptoObserverControlServer) EvictCache(context.Context, *EvictRequest) (*ControlResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method EvictCache not implemented")
}
func (*UnimplementedCryptoObserverControlServer) Refresh(context.Context, *RefreshRequest) (*ControlResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Refresh not implemented")
}
func (*UnimplementedCryptoObserverControlServer) UpdateWatchlist(context.Context, *UpdateWatchlistRequest) (*ControlResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UpdateWatchlist not implemented")
}

// -----------------------------------------------------------------------------

func RegisterCryptoObserverControlServer(s *grpc.Server, srv CryptoObserverControlServer) {
	s.RegisterService(&_CryptoObserverControl_serviceDesc, srv)
}

// -----------------------------------------------------------------------------

func _CryptoObserverControl_ListProviders_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CryptoObserverControlServer).ListProviders(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/crypto_observer.CryptoObserverControl/ListProviders",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CryptoObserverControlServer).ListProviders(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _CryptoObserverControl_GetStats_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CryptoObserverControlServer).GetStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/crypto_observer.CryptoObserverControl/GetStats",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CryptoObserverControlServer).GetStats(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _CryptoObserverControl_EvictCache_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EvictRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CryptoObserverControlServer).EvictCache(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/crypto_observer.CryptoObserverControl/EvictCache",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CryptoObserverControlServer).EvictCache(ctx, req.(*EvictRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _CryptoObserverControl_Refresh_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RefreshRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CryptoObserverControlServer).Refresh(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/crypto_observer.CryptoObserverControl/Refresh",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CryptoObserverControlServer).Refresh(ctx, req.(*RefreshRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _CryptoObserverControl_UpdateWatchlist_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateWatchlistRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CryptoObserverControlServer).UpdateWatchlist(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/crypto_observer.CryptoObserverControl/UpdateWatchlist",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CryptoObserverControlServer).UpdateWatchlist(ctx, req.(*UpdateWatchlistRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// -----------------------------------------------------------------------------

var _CryptoObserverControl_serviceDesc = grpc.ServiceDesc{
	ServiceName: "crypto_observer.CryptoObserverControl",
	HandlerType: (*CryptoObserverControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListProviders",
			Handler:    _CryptoObserverControl_ListProviders_Handler,
		},
		{
			MethodName: "GetStats",
			Handler:    _CryptoObserverControl_GetStats_Handler,
		},
		{
			MethodName: "EvictCache",
			Handler:    _CryptoObserverControl_EvictCache_Handler,
		},
		{
			MethodName: "Refresh",
			Handler:    _CryptoObserverControl_Refresh_Handler,
		},
		{
			MethodName: "UpdateWatchlist",
			Handler:    _CryptoObserverControl_UpdateWatchlist_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "control.proto",
}

// -----------------------------------------------------------------------------

// CryptoObserverControlClient is the client API for CryptoObserverControl.
type CryptoObserverControlClient interface {
	ListProviders(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListProvidersResponse, error)
	GetStats(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatsResponse, error)
	EvictCache(ctx context.Context, in *EvictRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	UpdateWatchlist(ctx context.Context, in *UpdateWatchlistRequest, opts ...grpc.CallOption) (*ControlResponse, error)
}

type cryptoObserverControlClient struct {
	cc grpc.ClientConnInterface
}

func NewCryptoObserverControlClient(cc grpc.ClientConnInterface) CryptoObserverControlClient {
	return &cryptoObserverControlClient{cc}
}

func (c *cryptoObserverControlClient) ListProviders(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListProvidersResponse, error) {
	out := new(ListProvidersResponse)
	err := c.cc.Invoke(ctx, "/crypto_observer.CryptoObserverControl/ListProviders", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cryptoObserverControlClient) GetStats(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*StatsResponse, error) {
	out := new(StatsResponse)
	err := c.cc.Invoke(ctx, "/crypto_observer.CryptoObserverControl/GetStats", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cryptoObserverControlClient) EvictCache(ctx context.Context, in *EvictRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	err := c.cc.Invoke(ctx, "/crypto_observer.CryptoObserverControl/EvictCache", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cryptoObserverControlClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	err := c.cc.Invoke(ctx, "/crypto_observer.CryptoObserverControl/Refresh", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cryptoObserverControlClient) UpdateWatchlist(ctx context.Context, in *UpdateWatchlistRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	err := c.cc.Invoke(ctx, "/crypto_observer.CryptoObserverControl/UpdateWatchlist", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
