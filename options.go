package rankmap

import (
	"time"

	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/pipeline"
	"github.com/agentstation/rankmap/pkg/sources"
)

// options holds the configuration for a Client.
type options struct {
	manifest       *sources.Manifest
	manifestPath   string
	artifactPath   string
	rebuildOnStart bool
	coverage       bool
	buildTimeout   time.Duration

	autoRebuild         bool
	autoRebuildInterval time.Duration

	observers []pipeline.Observer
}

func defaults() *options {
	return &options{
		coverage:            true,
		buildTimeout:        constants.BuildTimeout,
		autoRebuildInterval: constants.DefaultRebuildInterval,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client.
type Option func(*options) error

// WithManifest configures the source manifest used by rebuilds.
func WithManifest(m *sources.Manifest) Option {
	return func(o *options) error {
		o.manifest = m
		return nil
	}
}

// WithManifestPath loads the source manifest from a YAML file.
func WithManifestPath(path string) Option {
	return func(o *options) error {
		o.manifestPath = path
		return nil
	}
}

// WithArtifactPath sets where Save writes by default. Unless a rebuild on
// start is requested, an existing artifact at path seeds the first snapshot.
func WithArtifactPath(path string) Option {
	return func(o *options) error {
		o.artifactPath = path
		return nil
	}
}

// WithRebuildOnStart builds a snapshot during New.
func WithRebuildOnStart(enabled bool) Option {
	return func(o *options) error {
		o.rebuildOnStart = enabled
		return nil
	}
}

// WithCoverage enables or disables coverage extension during rebuilds.
func WithCoverage(enabled bool) Option {
	return func(o *options) error {
		o.coverage = enabled
		return nil
	}
}

// WithBuildTimeout bounds the rebuild run during New and by the auto-rebuilder.
func WithBuildTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		if timeout <= 0 {
			return errors.NewValidationError("buildTimeout", timeout, "must be positive")
		}
		o.buildTimeout = timeout
		return nil
	}
}

// WithAutoRebuild configures whether periodic rebuilds start with the client.
func WithAutoRebuild(enabled bool) Option {
	return func(o *options) error {
		o.autoRebuild = enabled
		return nil
	}
}

// WithAutoRebuildInterval configures how often periodic rebuilds run.
func WithAutoRebuildInterval(interval time.Duration) Option {
	return func(o *options) error {
		o.autoRebuildInterval = interval
		return nil
	}
}

// WithObserver registers a build observer, for example a metrics recorder.
func WithObserver(obs pipeline.Observer) Option {
	return func(o *options) error {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
		return nil
	}
}
