package model

import "time"

// Message is a human-readable status line recorded by the notification sink.
type Message struct {
	ID        int64
	Text      string
	CreatedAt time.Time
}
