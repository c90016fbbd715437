package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName         = "labimport.v1.LabImportService"
	ExtractReportMethod = "/" + ServiceName + "/ExtractReport"

	// LabelHeader carries the caller's free-text label as request metadata.
	LabelHeader = "x-report-label"
)

// LabImportServer extracts lab values from one PDF. The request is the raw
// PDF; the response is the extraction result encoded as a Struct.
type LabImportServer interface {
	ExtractReport(ctx context.Context, pdf *wrapperspb.BytesValue) (*structpb.Struct, error)
}

func RegisterLabImportServer(s grpc.ServiceRegistrar, srv LabImportServer) {
	s.RegisterService(&LabImportServiceDesc, srv)
}

var LabImportServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LabImportServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractReport", Handler: extractReportHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "labimport/v1/labimport.proto",
}

func extractReportHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LabImportServer).ExtractReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExtractReportMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LabImportServer).ExtractReport(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

type LabImportClient struct {
	cc grpc.ClientConnInterface
}

func NewLabImportClient(cc grpc.ClientConnInterface) *LabImportClient {
	return &LabImportClient{cc: cc}
}

func (c *LabImportClient) ExtractReport(ctx context.Context, pdf []byte, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ExtractReportMethod, wrapperspb.Bytes(pdf), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
