package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "formfill.v1.FormFill"

// FormFillServer is the server API of formfill.v1.FormFill. Every method
// exchanges google.protobuf.Struct messages.
type FormFillServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Classify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MapTemplate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTemplates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportXLSX(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterFormFillServer registers srv on s.
func RegisterFormFillServer(s grpc.ServiceRegistrar, srv FormFillServer) {
	s.RegisterService(&FormFillServiceDesc, srv)
}

type unaryMethod func(FormFillServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FormFillServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(FormFillServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// FormFillServiceDesc describes formfill.v1.FormFill without generated stubs.
var FormFillServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*FormFillServer)(nil),
	Methods: []grpc.MethodDesc{
		handler("Extract", FormFillServer.Extract),
		handler("Classify", FormFillServer.Classify),
		handler("MapTemplate", FormFillServer.MapTemplate),
		handler("ListTemplates", FormFillServer.ListTemplates),
		handler("ExportXLSX", FormFillServer.ExportXLSX),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "formfill/v1/formfill.proto",
}
