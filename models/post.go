package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Content      string             `bson:"content" json:"content"`
	Category     string             `bson:"category" json:"category"` // settings category id, by convention only
	Author       Author             `bson:"author" json:"author"`
	AuthorID     string             `bson:"authorId" json:"authorId"`
	Tags         []string           `bson:"tags" json:"tags"`
	CommentCount int64              `bson:"commentCount" json:"commentCount"`
	ViewCount    int64              `bson:"viewCount" json:"viewCount"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Author struct {
	Name     string `bson:"name" json:"name"`
	PhotoURL string `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
}

// PostUpdate carries the caller-editable fields of a post. Anything not
// listed here (id, author, createdAt, counters) stays server-controlled.
type PostUpdate struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}
