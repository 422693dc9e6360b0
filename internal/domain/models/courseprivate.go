// internal/domain/models/courseprivate.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CoursePrivateFields holds per-course data only instructors may read or
// write. The document id is the course id.
//
// Invariant: SentEmails is always a subset of InvitedEmails; the invitation
// gate only ever emails addresses in InvitedEmails that are not yet in
// SentEmails, and only records an address as sent after its outbox message
// was enqueued. Both lists hold normalized (lower-cased, trimmed) addresses.
type CoursePrivateFields struct {
	CourseID      primitive.ObjectID `bson:"_id" json:"course_id"`
	InvitedEmails []string           `bson:"invited_emails,omitempty" json:"invited_emails,omitempty"`
	SentEmails    []string           `bson:"sent_emails,omitempty" json:"sent_emails,omitempty"`
	MailSubject   string             `bson:"mail_subject,omitempty" json:"mail_subject,omitempty"`
	MailText      string             `bson:"mail_text,omitempty" json:"mail_text,omitempty"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
