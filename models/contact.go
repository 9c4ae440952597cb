package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Contact struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name      string              `bson:"name" json:"name"`
	Email     string              `bson:"email" json:"email"`
	Phone     string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Subject   string              `bson:"subject,omitempty" json:"subject,omitempty"`
	Message   string              `bson:"message" json:"message"`
	Property  *primitive.ObjectID `bson:"property,omitempty" json:"propertyId,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

type ContactRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty,phone"`
	Subject    string `json:"subject" validate:"max=200"`
	Message    string `json:"message" validate:"required,max=5000"`
	PropertyID string `json:"propertyId" validate:"omitempty,len=24,hexadecimal"`
}
