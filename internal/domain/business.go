package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Business is a client entity staff and content are assigned to
// (businesses collection). Tags is a single free-text string of
// space-separated hashtags; the stored text is never rewritten, tag sync
// only appends (see hashtag.go).
type Business struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	BusinessName   string               `bson:"businessName" json:"businessName"`
	TypeOfBusiness string               `bson:"typeOfBusiness,omitempty" json:"typeOfBusiness,omitempty"`
	ContactPerson  string               `bson:"contactPerson,omitempty" json:"contactPerson,omitempty"`
	Tags           string               `bson:"tags,omitempty" json:"tags,omitempty"`
	AssignedCD     []primitive.ObjectID `bson:"assignedCD,omitempty" json:"assignedCD,omitempty"`
	AssignedCW     []primitive.ObjectID `bson:"assignedCW,omitempty" json:"assignedCW,omitempty"`
	AssignedVE     []primitive.ObjectID `bson:"assignedVE,omitempty" json:"assignedVE,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt      time.Time            `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// primary returns the first assignee of a list, nil when nobody is assigned.
func primary(ids []primitive.ObjectID) *primitive.ObjectID {
	if len(ids) == 0 {
		return nil
	}
	id := ids[0]
	return &id
}

// PrimaryCD returns the business's primary content designer, if any.
func (b *Business) PrimaryCD() *primitive.ObjectID { return primary(b.AssignedCD) }

// PrimaryCW returns the business's primary content writer, if any.
func (b *Business) PrimaryCW() *primitive.ObjectID { return primary(b.AssignedCW) }

// PrimaryVE returns the business's primary video editor, if any.
func (b *Business) PrimaryVE() *primitive.ObjectID { return primary(b.AssignedVE) }

// Ref projects the business to its display fields.
func (b *Business) Ref() *BusinessRef {
	return &BusinessRef{
		ID:             b.ID,
		BusinessName:   b.BusinessName,
		TypeOfBusiness: b.TypeOfBusiness,
		ContactPerson:  b.ContactPerson,
	}
}

// IsAssigned reports whether userID appears in any of the three assignment
// lists. Assignment membership is the source of truth for content mutation.
func (b *Business) IsAssigned(userID primitive.ObjectID) bool {
	for _, list := range [][]primitive.ObjectID{b.AssignedCW, b.AssignedCD, b.AssignedVE} {
		for _, id := range list {
			if id == userID {
				return true
			}
		}
	}
	return false
}
