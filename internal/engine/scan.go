package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/rsmerge/internal/clock"
	"github.com/danieljhkim/rsmerge/internal/unsafescan"
)

// ScanUnsafe reports unsafe fns and unsafe blocks for every source.
func (e *Engine) ScanUnsafe(ctx context.Context, req *ScanRequest) (*ScanResult, error) {
	start := e.clock.Now()

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	reports, err := unsafescan.ScanFiles(ctx, req.Sources, jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sources: %w", err)
	}
	for name, rep := range reports {
		e.logger.Debug("scanned", "file", name,
			"internal_unsafe_fns", len(rep.InternalUnsafeFns),
			"fns_containing_unsafe", len(rep.FnsContainingUnsafe))
	}

	return &ScanResult{
		Reports: reports,
		Elapsed: clock.Since(e.clock, start),
	}, nil
}
