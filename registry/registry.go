package registry

import (
	"context"
	"errors"

	"txsitter/config"
)

var ErrNotPublished = errors.New("registry: no client config published for stage")

// Registry shares the function identifiers of a deployment stage between
// processes.
type Registry interface {
	// Publish stores cfg under stage. A positive ttl (seconds) keeps the
	// entry alive only while the publishing process runs.
	Publish(ctx context.Context, stage string, cfg config.ClientConfig, ttl int64) error
	Withdraw(ctx context.Context, stage string) error
	Lookup(ctx context.Context, stage string) (config.ClientConfig, error)
	// Watch emits the current config of stage on every change until ctx ends.
	Watch(ctx context.Context, stage string) <-chan config.ClientConfig
}
