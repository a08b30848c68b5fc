package converter

import (
	"context"

	concpool "github.com/sourcegraph/conc/pool"

	"github.com/coachpo/baseconv/errs"
)

// BatchItem is the outcome of one request in a batch. Exactly one of Result
// and Err is meaningful.
type BatchItem struct {
	Index  int
	Result Result
	Err    error
}

// ConvertBatch converts every request concurrently on a bounded worker pool.
// All requests share a single configuration snapshot, and items are returned
// in request order. Requests not yet started when ctx is cancelled fail with
// the context error.
func (s *Service) ConvertBatch(ctx context.Context, reqs []Request) []BatchItem {
	out := make([]BatchItem, len(reqs))
	if len(reqs) == 0 {
		return out
	}
	cfg := s.settings.Snapshot()

	workers := cfg.Batch.Workers.Count()
	if workers <= 0 {
		workers = 1
	}
	if workers > len(reqs) {
		workers = len(reqs)
	}

	p := concpool.New().WithMaxGoroutines(workers)
	for idx := range reqs {
		i := idx
		p.Go(func() {
			out[i].Index = i
			if err := ctx.Err(); err != nil {
				out[i].Err = errs.Unavailable("convert", err)
				return
			}
			out[i].Result, out[i].Err = s.convert(ctx, cfg, SurfaceBatch, reqs[i])
		})
	}
	p.Wait()
	return out
}

// Failed counts the items that carry an error.
func Failed(items []BatchItem) int {
	n := 0
	for _, item := range items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

// ErrorCode reports the envelope code for a failed item, or "" on success.
func (b BatchItem) ErrorCode() errs.Code {
	if b.Err == nil {
		return ""
	}
	return errs.CodeOf(b.Err)
}
