package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Favorite struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User     primitive.ObjectID `bson:"user" json:"user"`
	Property primitive.ObjectID `bson:"property" json:"propertyId"`
	Notes    string             `bson:"notes,omitempty" json:"notes,omitempty"`
	AddedAt  time.Time          `bson:"addedAt" json:"addedAt"`

	PropertyDetails *Property `bson:"-" json:"property,omitempty"`
}

type AddFavoriteRequest struct {
	PropertyID string `json:"propertyId" validate:"required"`
	Notes      string `json:"notes" validate:"max=500"`
}
