package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const masterControllerServiceName = "cluster.MasterController"

// MasterControllerServer is the server API for the MasterController service.
type MasterControllerServer interface {
	BroadcastCookie(context.Context, *BroadcastCookieRequest) (*BroadcastCookieResponse, error)
	UpdateStatus(context.Context, *UpdateStatusRequest) (*UpdateStatusResponse, error)
	GetGlobalCookies(context.Context, *GetGlobalCookiesRequest) (*GetGlobalCookiesResponse, error)
	WatchCookies(*WatchCookiesRequest, MasterController_WatchCookiesServer) error
	GetAllStatus(context.Context, *GetAllStatusRequest) (*GetAllStatusResponse, error)
}

// UnimplementedMasterControllerServer can be embedded to have forward
// compatible implementations.
type UnimplementedMasterControllerServer struct{}

func (UnimplementedMasterControllerServer) BroadcastCookie(context.Context, *BroadcastCookieRequest) (*BroadcastCookieResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BroadcastCookie not implemented")
}

func (UnimplementedMasterControllerServer) UpdateStatus(context.Context, *UpdateStatusRequest) (*UpdateStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateStatus not implemented")
}

func (UnimplementedMasterControllerServer) GetGlobalCookies(context.Context, *GetGlobalCookiesRequest) (*GetGlobalCookiesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetGlobalCookies not implemented")
}

func (UnimplementedMasterControllerServer) WatchCookies(*WatchCookiesRequest, MasterController_WatchCookiesServer) error {
	return status.Error(codes.Unimplemented, "method WatchCookies not implemented")
}

func (UnimplementedMasterControllerServer) GetAllStatus(context.Context, *GetAllStatusRequest) (*GetAllStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAllStatus not implemented")
}

// MasterController_WatchCookiesServer is the server-side stream for
// WatchCookies.
type MasterController_WatchCookiesServer interface {
	Send(*GetGlobalCookiesResponse) error
	grpc.ServerStream
}

type masterControllerWatchCookiesServer struct {
	grpc.ServerStream
}

func (x *masterControllerWatchCookiesServer) Send(m *GetGlobalCookiesResponse) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterMasterControllerServer registers srv with s.
func RegisterMasterControllerServer(s grpc.ServiceRegistrar, srv MasterControllerServer) {
	s.RegisterService(&masterControllerServiceDesc, srv)
}

func _MasterController_BroadcastCookie_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BroadcastCookieRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterControllerServer).BroadcastCookie(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: masterControllerServiceName + "/BroadcastCookie"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterControllerServer).BroadcastCookie(ctx, req.(*BroadcastCookieRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MasterController_UpdateStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(UpdateStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterControllerServer).UpdateStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: masterControllerServiceName + "/UpdateStatus"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterControllerServer).UpdateStatus(ctx, req.(*UpdateStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MasterController_GetGlobalCookies_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetGlobalCookiesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterControllerServer).GetGlobalCookies(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: masterControllerServiceName + "/GetGlobalCookies"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterControllerServer).GetGlobalCookies(ctx, req.(*GetGlobalCookiesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MasterController_GetAllStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetAllStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MasterControllerServer).GetAllStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: masterControllerServiceName + "/GetAllStatus"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MasterControllerServer).GetAllStatus(ctx, req.(*GetAllStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _MasterController_WatchCookies_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(WatchCookiesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(MasterControllerServer).WatchCookies(m, &masterControllerWatchCookiesServer{stream})
}

var masterControllerServiceDesc = grpc.ServiceDesc{
	ServiceName: masterControllerServiceName,
	HandlerType: (*MasterControllerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "BroadcastCookie", Handler: _MasterController_BroadcastCookie_Handler},
		{MethodName: "UpdateStatus", Handler: _MasterController_UpdateStatus_Handler},
		{MethodName: "GetGlobalCookies", Handler: _MasterController_GetGlobalCookies_Handler},
		{MethodName: "GetAllStatus", Handler: _MasterController_GetAllStatus_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchCookies",
			Handler:       _MasterController_WatchCookies_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "cluster.proto",
}

// MasterControllerClient is the client API for the MasterController service.
type MasterControllerClient interface {
	BroadcastCookie(ctx context.Context, in *BroadcastCookieRequest, opts ...grpc.CallOption) (*BroadcastCookieResponse, error)
	UpdateStatus(ctx context.Context, in *UpdateStatusRequest, opts ...grpc.CallOption) (*UpdateStatusResponse, error)
	GetGlobalCookies(ctx context.Context, in *GetGlobalCookiesRequest, opts ...grpc.CallOption) (*GetGlobalCookiesResponse, error)
	WatchCookies(ctx context.Context, in *WatchCookiesRequest, opts ...grpc.CallOption) (MasterController_WatchCookiesClient, error)
	GetAllStatus(ctx context.Context, in *GetAllStatusRequest, opts ...grpc.CallOption) (*GetAllStatusResponse, error)
}

type masterControllerClient struct {
	cc grpc.ClientConnInterface
}

// NewMasterControllerClient returns a client bound to cc.
func NewMasterControllerClient(cc grpc.ClientConnInterface) MasterControllerClient {
	return &masterControllerClient{cc}
}

func (c *masterControllerClient) BroadcastCookie(ctx context.Context, in *BroadcastCookieRequest, opts ...grpc.CallOption) (*BroadcastCookieResponse, error) {
	out := new(BroadcastCookieResponse)
	if err := c.cc.Invoke(ctx, masterControllerServiceName+"/BroadcastCookie", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterControllerClient) UpdateStatus(ctx context.Context, in *UpdateStatusRequest, opts ...grpc.CallOption) (*UpdateStatusResponse, error) {
	out := new(UpdateStatusResponse)
	if err := c.cc.Invoke(ctx, masterControllerServiceName+"/UpdateStatus", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterControllerClient) GetGlobalCookies(ctx context.Context, in *GetGlobalCookiesRequest, opts ...grpc.CallOption) (*GetGlobalCookiesResponse, error) {
	out := new(GetGlobalCookiesResponse)
	if err := c.cc.Invoke(ctx, masterControllerServiceName+"/GetGlobalCookies", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterControllerClient) GetAllStatus(ctx context.Context, in *GetAllStatusRequest, opts ...grpc.CallOption) (*GetAllStatusResponse, error) {
	out := new(GetAllStatusResponse)
	if err := c.cc.Invoke(ctx, masterControllerServiceName+"/GetAllStatus", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *masterControllerClient) WatchCookies(ctx context.Context, in *WatchCookiesRequest, opts ...grpc.CallOption) (MasterController_WatchCookiesClient, error) {
	stream, err := c.cc.NewStream(ctx, &masterControllerServiceDesc.Streams[0], masterControllerServiceName+"/WatchCookies", opts...)
	if err != nil {
		return nil, err
	}
	x := &masterControllerWatchCookiesClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// MasterController_WatchCookiesClient is the client-side stream for
// WatchCookies.
type MasterController_WatchCookiesClient interface {
	Recv() (*GetGlobalCookiesResponse, error)
	grpc.ClientStream
}

type masterControllerWatchCookiesClient struct {
	grpc.ClientStream
}

func (x *masterControllerWatchCookiesClient) Recv() (*GetGlobalCookiesResponse, error) {
	m := new(GetGlobalCookiesResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
