// internal/domain/models/outbox.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outbox message statuses.
const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed" // gave up after too many delivery attempts
)

// OutboxMessage is one outbound email waiting in the mail_outbox collection.
// The invitation gate enqueues messages; the outbox mail job delivers them
// and records the outcome. Key is a stable idempotency key for the message.
type OutboxMessage struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key      string             `bson:"key" json:"key"`
	CourseID primitive.ObjectID `bson:"course_id,omitempty" json:"course_id,omitempty"`

	To       string `bson:"to" json:"to"`
	Subject  string `bson:"subject" json:"subject"`
	TextBody string `bson:"text_body" json:"text_body"`
	HTMLBody string `bson:"html_body,omitempty" json:"html_body,omitempty"`

	Status    string     `bson:"status" json:"status"`
	Attempts  int        `bson:"attempts" json:"attempts"`
	LastError string     `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	SentAt    *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}
