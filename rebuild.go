package rankmap

import (
	"context"

	"github.com/agentstation/rankmap/pkg/pipeline"
)

// Compile-time interface check to ensure proper implementation.
var _ Rebuilder = (*client)(nil)

// Rebuilder handles rebuilding the snapshot.
type Rebuilder interface {
	// Rebuild builds a new snapshot from the manifest and publishes it.
	Rebuild(ctx context.Context) (*pipeline.Result, error)
}

// Rebuild runs the build pipeline and swaps in its result. On failure the
// current snapshot stays published.
func (c *client) Rebuild(ctx context.Context) (*pipeline.Result, error) {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	opts := []pipeline.Option{pipeline.WithCoverage(c.options.coverage)}
	for _, o := range c.options.observers {
		opts = append(opts, pipeline.WithObserver(o))
	}

	result, err := pipeline.New(c.options.manifest, opts...).Build(ctx)
	if err != nil {
		c.hooks.triggerFailed(err)
		return nil, err
	}

	c.publish(&Snapshot{
		Catalog:   result.Catalog,
		Exams:     result.Exams,
		BuildID:   result.ID,
		UpdatedAt: result.FinishedAt,
	})
	return result, nil
}
