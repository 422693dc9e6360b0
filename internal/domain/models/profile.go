// internal/domain/models/profile.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// AuthorInfo is a denormalized copy of a user's public profile fields,
// embedded in progress records, comments, and submissions so those documents
// can be rendered without a join. The propagation engine keeps copies in
// sync with the canonical User document.
type AuthorInfo struct {
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	DisplayName string             `bson:"display_name" json:"display_name"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
}

// ProfilePatch carries a partial profile change. A nil field means the field
// is not part of the change and must be left untouched wherever the patch is
// applied; presence is tagged per field, never inferred from empty strings.
type ProfilePatch struct {
	DisplayName *string `bson:"display_name,omitempty" json:"display_name,omitempty"`
	ImageURL    *string `bson:"image_url,omitempty" json:"image_url,omitempty"`
}

// IsZero reports whether the patch carries no fields at all.
func (p ProfilePatch) IsZero() bool {
	return p.DisplayName == nil && p.ImageURL == nil
}
