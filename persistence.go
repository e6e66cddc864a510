package rankmap

import (
	"github.com/agentstation/rankmap/pkg/save"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence handles artifact output.
type Persistence interface {
	// Save writes the current snapshot as an artifact.
	Save(opts ...save.Option) error
}

// Save writes the current snapshot. Without a path or writer option the
// configured artifact path is used.
func (c *client) Save(opts ...save.Option) error {
	snap := c.Snapshot()
	doc := save.NewDocument(snap.Catalog, snap.Exams, snap.BuildID, snap.UpdatedAt)

	if c.options.artifactPath != "" {
		opts = append([]save.Option{save.WithPath(c.options.artifactPath)}, opts...)
	}
	return doc.Write(opts...)
}
