package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Bookmark struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId" json:"userId"`
	PostID    primitive.ObjectID `bson:"postId" json:"postId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// BookmarkedPost pairs a bookmark with its resolved post. Post is nil when
// the referenced post no longer exists; list responses skip those entries.
type BookmarkedPost struct {
	Bookmark Bookmark `json:"bookmark"`
	Post     *Post    `json:"post"`
}
