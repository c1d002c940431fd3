package driven

import (
	"context"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
)

// MessageSink receives human-readable status messages. It is append-only and
// must be safe for concurrent use.
type MessageSink interface {
	Add(message string)
}

// MessageStore is a MessageSink whose history can be read back by the
// presentation layer.
type MessageStore interface {
	MessageSink

	// List returns recorded messages oldest first.
	List(ctx context.Context) ([]model.Message, error)
	// Clear discards every recorded message.
	Clear(ctx context.Context) error
}
