package rankmap

import (
	"sync"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for snapshot events.
type (
	// SnapshotPublishedHook is called after a new snapshot replaces the old one.
	SnapshotPublishedHook func(old, new *Snapshot)

	// RebuildFailedHook is called when a rebuild aborts.
	RebuildFailedHook func(err error)
)

// Hooks provides event callback registration.
type Hooks interface {
	// OnSnapshotPublished registers a callback for published snapshots
	OnSnapshotPublished(fn SnapshotPublishedHook)

	// OnRebuildFailed registers a callback for aborted rebuilds
	OnRebuildFailed(fn RebuildFailedHook)
}

// OnSnapshotPublished registers a callback for published snapshots.
func (c *client) OnSnapshotPublished(fn SnapshotPublishedHook) {
	c.hooks.onPublished(fn)
}

// OnRebuildFailed registers a callback for aborted rebuilds.
func (c *client) OnRebuildFailed(fn RebuildFailedHook) {
	c.hooks.onFailed(fn)
}

// hooks manages event callbacks.
type hooks struct {
	mu        sync.RWMutex
	published []SnapshotPublishedHook
	failed    []RebuildFailedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) onPublished(fn SnapshotPublishedHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published = append(h.published, fn)
}

func (h *hooks) onFailed(fn RebuildFailedHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed = append(h.failed, fn)
}

func (h *hooks) triggerPublished(old, new *Snapshot) {
	h.mu.RLock()
	fns := make([]SnapshotPublishedHook, len(h.published))
	copy(fns, h.published)
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(old, new)
	}
}

func (h *hooks) triggerFailed(err error) {
	h.mu.RLock()
	fns := make([]RebuildFailedHook, len(h.failed))
	copy(fns, h.failed)
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(err)
	}
}
