package realtime

import "context"

// Channel is the transport behind the shared session state. One topic exists
// per session id; payloads are JSON-encoded partial session updates. Publish
// is fire-and-forget: confirmation of a write only ever arrives back through
// the subscription.
type Channel interface {
	// Publish sends a payload to every subscriber of the session topic.
	Publish(ctx context.Context, sessionID string, payload []byte) error

	// Subscribe returns a stream of payloads for the session topic. The
	// stream closes when ctx is cancelled.
	Subscribe(ctx context.Context, sessionID string) (<-chan []byte, error)

	// Close tears down the transport.
	Close() error
}
