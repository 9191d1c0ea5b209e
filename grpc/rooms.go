package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"arena3d/game"
)

// The room service is built from protobuf well-known types, so the service
// description below is all the wiring it needs.
const (
	serviceName = "arena.RoomService"

	listRoomsMethod  = "/arena.RoomService/ListRooms"
	getRoomMethod    = "/arena.RoomService/GetRoom"
	createRoomMethod = "/arena.RoomService/CreateRoom"
)

type RoomServiceServer interface {
	ListRooms(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetRoom(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CreateRoom(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

var RoomService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RoomServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRooms", Handler: listRoomsHandler},
		{MethodName: "GetRoom", Handler: getRoomHandler},
		{MethodName: "CreateRoom", Handler: createRoomHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arena/rooms.proto",
}

func RegisterRoomServiceServer(s grpc.ServiceRegistrar, srv RoomServiceServer) {
	s.RegisterService(&RoomService_ServiceDesc, srv)
}

func listRoomsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoomServiceServer).ListRooms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listRoomsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RoomServiceServer).ListRooms(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getRoomHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoomServiceServer).GetRoom(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getRoomMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RoomServiceServer).GetRoom(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func createRoomHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RoomServiceServer).CreateRoom(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createRoomMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RoomServiceServer).CreateRoom(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// RoomServer exposes a game.Manager over gRPC.
type RoomServer struct {
	manager *game.Manager
}

func NewRoomServer(manager *game.Manager) *RoomServer {
	return &RoomServer{manager: manager}
}

func summaryMap(s game.Summary) map[string]any {
	return map[string]any{
		"id":             s.ID,
		"implementation": s.Implementation,
		"players":        s.Players,
		"maxPlayers":     s.MaxPlayers,
		"entities":       s.Entities,
		"structures":     s.Structures,
		"tick":           s.Tick,
	}
}

func (s *RoomServer) ListRooms(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	summaries := s.manager.Summaries()
	values := make([]any, 0, len(summaries))
	for _, summary := range summaries {
		values = append(values, summaryMap(summary))
	}
	list, err := structpb.NewList(values)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode rooms: %v", err)
	}
	return list, nil
}

func (s *RoomServer) GetRoom(ctx context.Context, id *wrapperspb.StringValue) (*structpb.Struct, error) {
	room, err := s.manager.Get(id.GetValue())
	if errors.Is(err, game.ErrRoomNotFound) {
		return nil, status.Errorf(codes.NotFound, "room %q not found", id.GetValue())
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(summaryMap(room.Summary()))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode room: %v", err)
	}
	return out, nil
}

func (s *RoomServer) CreateRoom(ctx context.Context, implementation *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	room, err := s.manager.Create(implementation.GetValue())
	if errors.Is(err, game.ErrUnknownTheme) {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.String(room.ID), nil
}

// Serve listens on port until ctx is cancelled.
func Serve(ctx context.Context, port string, manager *game.Manager) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	srv := grpc.NewServer()
	RegisterRoomServiceServer(srv, NewRoomServer(manager))

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	log.Info("gRPC room service listening on ", port)
	return srv.Serve(lis)
}

type RoomServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewRoomServiceClient(cc grpc.ClientConnInterface) *RoomServiceClient {
	return &RoomServiceClient{cc: cc}
}

func (c *RoomServiceClient) ListRooms(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listRoomsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RoomServiceClient) GetRoom(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getRoomMethod, wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RoomServiceClient) CreateRoom(ctx context.Context, implementation string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, createRoomMethod, wrapperspb.String(implementation), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
