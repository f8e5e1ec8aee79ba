package pdforient

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/bmharper/cimg/v2"
)

// pageBatch is a contiguous half-open range [start, end) of page indices,
// processed sequentially by one worker.
type pageBatch struct {
	start int
	end   int
}

// partitionPages splits [0, n) into contiguous ascending batches of at most size pages.
func partitionPages(n, size int) []pageBatch {
	batches := []pageBatch{}
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		batches = append(batches, pageBatch{start: start, end: end})
	}
	return batches
}

// DetectRotations analyzes every page of the document and returns one Decision
// per page, sorted by page index.
//
// Batches are dispatched concurrently and complete in arbitrary order; each
// batch runs its pages strictly in ascending order. The join is fail-fast: the
// first page error cancels the remaining batches and fails the whole run.
func (d *Document) DetectRotations(ctx context.Context, opts Options) ([]Decision, error) {
	opts = opts.withDefaults()
	return detectRotations(ctx, d.NumPages, opts, func(ctx context.Context, page int) (Detection, error) {
		return d.AnalyzePage(ctx, page, opts)
	})
}

// detectRotations is the scheduler proper, with page analysis injected so the
// fan-out/fan-in machinery is exercisable without a rendered document.
func detectRotations(ctx context.Context, numPages int, opts Options, analyze func(ctx context.Context, page int) (Detection, error)) ([]Decision, error) {
	batches := partitionPages(numPages, opts.BatchSize)

	// One result slot per batch: workers never share mutable state, results
	// are merged only at the join point.
	results := make([][]Decision, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, b := range batches {
		g.Go(func() error {
			decisions := make([]Decision, 0, b.end-b.start)
			for page := b.start; page < b.end; page++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				det, err := analyze(ctx, page)
				if err != nil {
					return err
				}
				rotation := DecideRotation(det)
				opts.Logger.Debug("page analyzed",
					"page", page+1,
					"skew", det.Skew,
					"orientation", det.Orientation,
					"rotation", rotation)
				decisions = append(decisions, Decision{Page: page, Rotation: rotation})
			}
			results[i] = decisions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]Decision, 0, numPages)
	for _, r := range results {
		all = append(all, r...)
	}
	// Completion order of batches is unspecified; page order is restored here
	// and nowhere else.
	sort.Slice(all, func(i, j int) bool { return all[i].Page < all[j].Page })
	return all, nil
}

// AnalyzePage runs the per-page pipeline: render, preprocess, OSD detection.
func (d *Document) AnalyzePage(ctx context.Context, page int, opts Options) (Detection, error) {
	opts = opts.withDefaults()
	img, err := d.RenderPage(page, opts.DPI)
	if err != nil {
		return Detection{}, err
	}
	if opts.Preprocess {
		img = Preprocess(img)
	}
	encoded, err := cimg.Compress(img, cimg.MakeCompressParams(cimg.Sampling444, 95, 0))
	if err != nil {
		return Detection{}, &RenderError{Page: page, Err: err}
	}
	det, raw, err := runOSD(ctx, opts.TesseractBinary, encoded, opts.DPI)
	if err != nil {
		return Detection{}, &DetectionError{Page: page, Output: raw, Err: err}
	}
	return det, nil
}

var discardLogger = slog.New(slog.DiscardHandler)
