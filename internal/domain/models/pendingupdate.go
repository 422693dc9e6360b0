// internal/domain/models/pendingupdate.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingInfoUpdate is a durable queue entry for an unapplied profile change.
// The document id is the user id, so at most one record exists per user;
// enqueueing merges new field values into an existing record.
//
// The record is the unit of at-least-once delivery: the drain deletes it only
// after every denormalized copy and the canonical User document have been
// written, so a partial failure leaves it queued for the next cycle.
type PendingInfoUpdate struct {
	UserID      primitive.ObjectID `bson:"_id" json:"user_id"`
	DisplayName *string            `bson:"display_name,omitempty" json:"display_name,omitempty"`
	ImageURL    *string            `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Patch returns the changed-field set carried by the record.
func (u PendingInfoUpdate) Patch() ProfilePatch {
	return ProfilePatch{DisplayName: u.DisplayName, ImageURL: u.ImageURL}
}
