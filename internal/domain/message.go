package domain

import "time"

// Message is a read-only view of one chat message in the standup channel.
type Message struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Time       time.Time `json:"time"` // UTC
}
