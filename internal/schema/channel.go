// Package schema holds interfaces shared between packages that would
// otherwise import each other.
package schema

import (
	"context"

	"github.com/crystaldolphin/msgscheduler/internal/bus"
)

// Channel is the interface every delivery adapter must implement.
type Channel interface {
	// Name returns the channel identifier (e.g. "telegram").
	Name() string
	// Start connects to the platform and blocks until ctx is cancelled.
	Start(ctx context.Context) error
	// Ready reports whether Start has connected and Send can be used.
	Ready() bool
	// Send delivers an outbound message to the platform.
	Send(ctx context.Context, msg bus.OutboundMessage) error
}
