// Package rankmap provides the main entry point for the rankmap college
// admission cutoff system. It owns the current published snapshot, rebuilds it
// from a source manifest and answers rank-eligibility queries against it.
//
// Rebuilds follow a build-then-swap model: each rebuild assembles a brand-new
// frozen catalog off to the side and then replaces the snapshot pointer in a
// single step. Readers never see a partially built aggregate and never block
// a rebuild for longer than the swap.
//
// Example usage:
//
//	rm, err := rankmap.New(
//	    rankmap.WithManifestPath("rankmap.yaml"),
//	    rankmap.WithRebuildOnStart(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rm.AutoRebuildOff()
//
//	rm.OnSnapshotPublished(func(old, new *rankmap.Snapshot) {
//	    log.Printf("published %d colleges", new.Catalog.Len())
//	})
//
//	colleges, err := rm.Query(query.Request{Exam: "JEE", Rank: 700})
package rankmap

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/query"
	"github.com/agentstation/rankmap/pkg/save"
	"github.com/agentstation/rankmap/pkg/sources"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Snapshot is one published, immutable aggregate.
type Snapshot struct {
	Catalog   *catalogs.Catalog
	Exams     *catalogs.Exams
	BuildID   string
	UpdatedAt time.Time
}

// Reader provides access to the published snapshot.
type Reader interface {
	// Snapshot returns the current snapshot. It is never nil.
	Snapshot() *Snapshot

	// Query runs an eligibility query against the current snapshot.
	Query(req query.Request) ([]catalogs.College, error)
}

// Client manages the published snapshot with rebuilds and event hooks.
type Client interface {
	Reader

	// Rebuilder handles rebuilding from the source manifest
	Rebuilder

	// Persistence handles artifact output
	Persistence

	// AutoRebuilder provides access to periodic rebuild controls
	AutoRebuilder

	// Hooks provides access to event callback registration
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	mu       sync.RWMutex
	snapshot *Snapshot

	// buildMu serializes rebuilds so swaps happen in build order.
	buildMu sync.Mutex

	rebuildTicker *time.Ticker
	stopCh        chan struct{}
	rebuildCancel context.CancelFunc
	autoMu        sync.Mutex

	hooks *hooks
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		stopCh:  make(chan struct{}),
		hooks:   newHooks(),
	}

	if o.manifest == nil && o.manifestPath != "" {
		m, err := sources.LoadManifest(o.manifestPath)
		if err != nil {
			return nil, errors.WrapResource("load", "manifest", o.manifestPath, err)
		}
		o.manifest = m
	}

	c.snapshot = &Snapshot{
		Catalog: catalogs.New().Freeze(),
		Exams:   o.manifest.Registry(),
	}

	if o.artifactPath != "" && !o.rebuildOnStart {
		if err := c.loadArtifact(o.artifactPath); err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
	}

	if o.rebuildOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), o.buildTimeout)
		defer cancel()
		if _, err := c.Rebuild(ctx); err != nil {
			return nil, err
		}
	}

	if o.autoRebuild {
		if err := c.AutoRebuildOn(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *client) loadArtifact(path string) error {
	doc, err := save.Load(path)
	if err != nil {
		return err
	}
	cat, err := doc.Catalog()
	if err != nil {
		return err
	}
	c.publish(&Snapshot{
		Catalog:   cat,
		Exams:     doc.Registry(),
		BuildID:   doc.Metadata.BuildID,
		UpdatedAt: doc.Metadata.LastUpdated,
	})
	return nil
}

// Snapshot returns the current snapshot.
func (c *client) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Query runs an eligibility query against the current snapshot.
func (c *client) Query(req query.Request) ([]catalogs.College, error) {
	snap := c.Snapshot()
	return query.Run(snap.Catalog, snap.Exams, req)
}

// publish swaps in next and fires hooks outside the lock.
func (c *client) publish(next *Snapshot) {
	c.mu.Lock()
	prev := c.snapshot
	c.snapshot = next
	c.mu.Unlock()

	c.hooks.triggerPublished(prev, next)
}
