package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/labreport-import/internal/entity"
)

// Job is one report file waiting for extraction.
type Job struct {
	Path        string
	Label       string
	SubmittedAt time.Time
}

// JobResult is delivered once per accepted job.
type JobResult struct {
	Job     Job
	Result  entity.ExtractionResult
	Err     error // file could not be read; Result is empty
	Elapsed time.Duration
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Extractor is the part of the pipeline the queue drives.
type Extractor interface {
	Extract(ctx context.Context, pdf []byte, label string) entity.ExtractionResult
}
