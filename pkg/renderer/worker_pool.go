package renderer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
)

// renderParallel partitions the image into columns across Workers goroutines.
// Each column draws from its own sampler derived from the seed and the column
// index, so the output does not depend on scheduling or the worker count.
// Columns write disjoint pixels, so the buffer needs no locking.
func (r *Renderer) renderParallel(ctx context.Context, buffer *PixelBuffer, base *core.Sampler) (RenderStats, error) {
	columnStats := make([]RenderStats, buffer.Width)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)
	for i := 0; i < buffer.Width; i++ {
		g.Go(func() error {
			stats, err := r.renderColumn(ctx, buffer, i, base.Derive(uint64(i)))
			if err != nil {
				return err
			}
			columnStats[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RenderStats{}, err
	}

	var stats RenderStats
	for _, column := range columnStats {
		stats.Add(column)
	}
	return stats, nil
}
