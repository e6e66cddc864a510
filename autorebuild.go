package rankmap

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoRebuilder = (*client)(nil)

// AutoRebuilder provides controls for periodic rebuilds.
type AutoRebuilder interface {
	// AutoRebuildOn starts periodic rebuilds
	AutoRebuildOn() error

	// AutoRebuildOff stops periodic rebuilds
	AutoRebuildOff() error
}

// AutoRebuildOn starts periodic rebuilds, replacing any running schedule.
func (c *client) AutoRebuildOn() error {
	if c.options.autoRebuildInterval <= 0 {
		return &errors.ValidationError{
			Field:   "autoRebuildInterval",
			Value:   c.options.autoRebuildInterval,
			Message: "rebuild interval must be positive",
		}
	}

	if err := c.AutoRebuildOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	c.stopCh = make(chan struct{})
	c.rebuildTicker = time.NewTicker(c.options.autoRebuildInterval)
	ctx, cancel := context.WithCancel(context.Background())
	c.rebuildCancel = cancel

	go c.rebuildLoop(ctx, c.rebuildTicker, c.stopCh)
	return nil
}

func (c *client) rebuildLoop(parentCtx context.Context, ticker *time.Ticker, stopCh <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(parentCtx, c.options.buildTimeout)
			_, err := c.Rebuild(ctx)
			cancel()

			if err != nil {
				if stderrors.Is(err, context.Canceled) && parentCtx.Err() != nil {
					return
				}
				logging.Error().Err(err).Msg("Auto-rebuild failed")
			}
		case <-parentCtx.Done():
			return
		case <-stopCh:
			return
		}
	}
}

// AutoRebuildOff stops periodic rebuilds.
func (c *client) AutoRebuildOff() error {
	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	if c.rebuildTicker != nil {
		c.rebuildTicker.Stop()
		c.rebuildTicker = nil
	}
	if c.rebuildCancel != nil {
		c.rebuildCancel()
		c.rebuildCancel = nil
	}
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
	return nil
}
