package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered shopper. Password holds a bcrypt hash; accounts
// created before hashing was introduced hold plain text until their next
// successful login.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name"          json:"name"`
	Email    string             `bson:"email"         json:"email"`
	Password string             `bson:"password"      json:"-"`
	CartData Cart               `bson:"cartData"      json:"cartData"`
	Date     time.Time          `bson:"date"          json:"date"`
}
