package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/recipebook/internal/domain/model"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MessageStore = (*MessageRepo)(nil)

// addTimeout bounds a single message insert. Add has no context of its own.
const addTimeout = 5 * time.Second

// MessageRepo is the SQLite implementation of the MessageStore port.
type MessageRepo struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// NewMessageRepo creates a new MessageRepo backed by the given DB.
func NewMessageRepo(db *DB, logger *slog.Logger) *MessageRepo {
	return &MessageRepo{db: db, logger: logger, now: time.Now}
}

// Add appends a message. The sink contract has no error return, so insert
// failures are logged and the message is dropped.
func (r *MessageRepo) Add(message string) {
	ctx, cancel := context.WithTimeout(context.Background(), addTimeout)
	defer cancel()

	if err := r.insert(ctx, message); err != nil {
		r.logger.Error("failed to record message", "message", message, "error", err)
	}
}

func (r *MessageRepo) insert(ctx context.Context, message string) error {
	const query = `INSERT INTO messages (text, created_at) VALUES (?, ?)`

	createdAt := r.now().UTC().Format(time.RFC3339Nano)
	if _, err := r.db.Writer.ExecContext(ctx, query, message, createdAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// List returns all messages ordered oldest first.
func (r *MessageRepo) List(ctx context.Context) ([]model.Message, error) {
	const query = `SELECT id, text, created_at FROM messages ORDER BY id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// Clear deletes every stored message.
func (r *MessageRepo) Clear(ctx context.Context) error {
	const query = `DELETE FROM messages`

	if _, err := r.db.Writer.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	return nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
