package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/entity"
)

// Extractor is the pipeline entry point the transports call.
type Extractor interface {
	Extract(ctx context.Context, pdf []byte, label string) entity.ExtractionResult
}

type LabImportService struct {
	proc   Extractor
	logger *slog.Logger
}

func NewLabImportService(proc Extractor, logger *slog.Logger) *LabImportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabImportService{proc: proc, logger: logger}
}

var _ LabImportServer = (*LabImportService)(nil)

func (s *LabImportService) ExtractReport(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	pdf := req.GetValue()
	if len(pdf) == 0 {
		return nil, common.InvalidArgumentError("pdf is required")
	}
	if len(pdf) > constants.MaxUploadBytes {
		return nil, common.InvalidArgumentErrorf("pdf exceeds %d bytes", constants.MaxUploadBytes)
	}
	label := labelFromMetadata(ctx)

	start := time.Now()
	res := s.proc.Extract(ctx, pdf, label)
	out, err := ResultToStruct(res)
	if err != nil {
		s.logger.Error("server.extract.encode_failed", "error", err)
		return nil, common.InternalError("encode result failed")
	}
	s.logger.Info("server.extract.ok",
		"transport", "grpc",
		"bytes", len(pdf),
		"strategy", res.Strategy,
		"values", len(res.Values),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func labelFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(LabelHeader); len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}
