package models

import "time"

// SettingsID is the fixed id of the singleton settings document. All
// categories for the whole board live inside it as one array.
const SettingsID = "global-settings"

type Category struct {
	ID   string `bson:"id" json:"id"` // slug derived from the name
	Name string `bson:"name" json:"name"`
	Icon string `bson:"icon,omitempty" json:"icon,omitempty"`
}

type Settings struct {
	ID                    string     `bson:"_id" json:"id"`
	Categories            []Category `bson:"categories" json:"categories"`
	AllowAnonymousPosting bool       `bson:"allowAnonymousPosting" json:"allowAnonymousPosting"`
	AllowComments         bool       `bson:"allowComments" json:"allowComments"`
	CreatedAt             time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// DefaultSettings is what the board bootstraps with before an admin has
// touched anything.
func DefaultSettings(now time.Time) *Settings {
	return &Settings{
		ID:                    SettingsID,
		Categories:            []Category{},
		AllowAnonymousPosting: true,
		AllowComments:         true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}
