package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "msgarchive.v1.ArchiveService"

// Method names of ArchiveService.
const (
	MethodGetStatus       = "GetStatus"
	MethodListChats       = "ListChats"
	MethodGetChat         = "GetChat"
	MethodListMessages    = "ListMessages"
	MethodGetMessage      = "GetMessage"
	MethodSearchMessages  = "SearchMessages"
	MethodListAttachments = "ListAttachments"
	MethodGetAttachment   = "GetAttachment"
)

// FullMethod returns the path a client invokes for method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ArchiveServer is the server API for ArchiveService. Payloads are
// structpb.Struct values holding the JSON form of the types in this package.
type ArchiveServer interface {
	GetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListChats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetChat(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMessages(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchMessages(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAttachments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAttachment(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(ArchiveServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ArchiveServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ArchiveServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes ArchiveService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ArchiveServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc(MethodGetStatus, ArchiveServer.GetStatus),
		methodDesc(MethodListChats, ArchiveServer.ListChats),
		methodDesc(MethodGetChat, ArchiveServer.GetChat),
		methodDesc(MethodListMessages, ArchiveServer.ListMessages),
		methodDesc(MethodGetMessage, ArchiveServer.GetMessage),
		methodDesc(MethodSearchMessages, ArchiveServer.SearchMessages),
		methodDesc(MethodListAttachments, ArchiveServer.ListAttachments),
		methodDesc(MethodGetAttachment, ArchiveServer.GetAttachment),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "msgarchive/v1/archive.proto",
}

// RegisterArchiveServer registers srv on s.
func RegisterArchiveServer(s grpc.ServiceRegistrar, srv ArchiveServer) {
	s.RegisterService(&ServiceDesc, srv)
}
