// Package memory implements driven ports with process-local state.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MessageStore = (*MessageLog)(nil)

// MessageLog is an append-only in-memory message history. It has no size
// bound; Clear is the only way to shrink it.
type MessageLog struct {
	mu       sync.Mutex
	messages []model.Message
	nextID   int64
	now      func() time.Time
}

// NewMessageLog creates an empty MessageLog.
func NewMessageLog() *MessageLog {
	return &MessageLog{now: time.Now}
}

// Add appends a message.
func (l *MessageLog) Add(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	l.messages = append(l.messages, model.Message{
		ID:        l.nextID,
		Text:      message,
		CreatedAt: l.now().UTC(),
	})
}

// List returns a copy of the recorded messages, oldest first.
func (l *MessageLog) List(_ context.Context) ([]model.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Message, len(l.messages))
	copy(out, l.messages)
	return out, nil
}

// Texts returns only the message strings, oldest first.
func (l *MessageLog) Texts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.messages))
	for _, m := range l.messages {
		out = append(out, m.Text)
	}
	return out
}

// Clear discards all messages. IDs keep increasing across clears.
func (l *MessageLog) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = nil
	return nil
}
