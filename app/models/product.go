package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. ID is the public sequential id; ObjectID is
// the storage key and never used by clients to address a product.
type Product struct {
	ObjectID  primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ID        int64              `bson:"id"            json:"id"`
	Name      string             `bson:"name"          json:"name"`
	Image     string             `bson:"image"         json:"image"`
	Category  string             `bson:"category"      json:"category"`
	NewPrice  float64            `bson:"new_price"     json:"new_price"`
	OldPrice  float64            `bson:"old_price"     json:"old_price"`
	Date      time.Time          `bson:"date"          json:"date"`
	Available bool               `bson:"available"     json:"available"`
}

// NewProduct is the caller-supplied part of a product.
type NewProduct struct {
	Name     string    `json:"name"      csv:"name"      validate:"required"`
	Image    string    `json:"image"     csv:"image"`
	Category string    `json:"category"  csv:"category"  validate:"required"`
	NewPrice FlexFloat `json:"new_price" csv:"new_price" validate:"gte=0"`
	OldPrice FlexFloat `json:"old_price" csv:"old_price" validate:"gte=0"`
}
