package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash *string            `bson:"passwordHash,omitempty" json:"-"`
	Name         string             `bson:"name" json:"name"`
	PhotoURL     string             `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	IsAnonymous  bool               `bson:"isAnonymous" json:"isAnonymous"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	LastSeen     time.Time          `bson:"lastSeen" json:"lastSeen"`
}
