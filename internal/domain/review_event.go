package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewEvent is the immutable record of one answered card. Events are
// append-only: they are never updated or deleted, serving both as the audit
// trail of a session and as the analytics input for the reminder scorer.
type ReviewEvent struct {
	CardID       string         `json:"card_id"`
	DeckID       uuid.UUID      `json:"deck_id"`
	UserID       uuid.UUID      `json:"user_id"`
	Timestamp    time.Time      `json:"timestamp"`
	Feedback     FeedbackRating `json:"feedback"`
	PrevInterval float64        `json:"prev_interval"`
	NextInterval float64        `json:"next_interval"`
}
