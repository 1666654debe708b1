package admin

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is a console user. The password hash never leaves the service.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password" json:"-"`
	IsAdmin      bool               `bson:"isAdmin" json:"isAdmin"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Summary is the short account view returned by login, create and update.
type Summary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (a *Account) Summary() Summary {
	return Summary{ID: a.ID.Hex(), Username: a.Username, IsAdmin: a.IsAdmin}
}
