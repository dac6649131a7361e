package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentType says what kind of deliverable a content item is.
type ContentType string

const (
	ContentTypePoster ContentType = "poster"
	ContentTypeVideo  ContentType = "video"
	ContentTypeBoth   ContentType = "both"
)

// Valid reports whether t is one of the three known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypePoster, ContentTypeVideo, ContentTypeBoth:
		return true
	}
	return false
}

// DateLayout is the wire and storage format of content dates (MM/DD/YYYY).
const DateLayout = "01/02/2006"

// Today formats now in DateLayout using the server's local time zone, which
// is what the todayOnly listing flag matches against.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// RegularContent is a scheduled content item belonging to a business
// (regularcontents collection). The business is always stored as a plain
// identifier; expanded shapes live in ContentView only.
type RegularContent struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Business    primitive.ObjectID  `bson:"business" json:"business"`
	AddedBy     primitive.ObjectID  `bson:"addedBy,omitempty" json:"addedBy,omitempty"`
	AssignedCD  *primitive.ObjectID `bson:"assignedCD,omitempty" json:"assignedCD,omitempty"`
	AssignedCW  *primitive.ObjectID `bson:"assignedCW,omitempty" json:"assignedCW,omitempty"`
	AssignedVE  *primitive.ObjectID `bson:"assignedVE,omitempty" json:"assignedVE,omitempty"`
	ContentType ContentType         `bson:"contentType" json:"contentType"`
	Date        string              `bson:"date" json:"date"`
	Tags        string              `bson:"tags,omitempty" json:"tags,omitempty"`
	Status      bool                `bson:"status" json:"status"`
	CreatedAt   time.Time           `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time           `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// BusinessRef is the display projection of a business inside an expanded
// content item.
type BusinessRef struct {
	ID             primitive.ObjectID `json:"id"`
	BusinessName   string             `json:"businessName"`
	TypeOfBusiness string             `json:"typeOfBusiness,omitempty"`
	ContactPerson  string             `json:"contactPerson,omitempty"`
}

// UserRef is the display projection of a person inside an expanded content
// item.
type UserRef struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Roles    []string           `json:"roles,omitempty"`
}

// ContentView is a RegularContent with its related entities resolved to
// display fields. Any ref may be nil when the referenced record is gone or
// resolution was skipped (creation falls back to the unresolved record).
type ContentView struct {
	RegularContent
	BusinessRef   *BusinessRef `json:"businessRef,omitempty"`
	AddedByRef    *UserRef     `json:"addedByRef,omitempty"`
	AssignedCDRef *UserRef     `json:"assignedCDRef,omitempty"`
	AssignedCWRef *UserRef     `json:"assignedCWRef,omitempty"`
	AssignedVERef *UserRef     `json:"assignedVERef,omitempty"`
}
