package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InteractionDetails struct {
	UserAgent  string            `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	IPAddress  string            `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	Method     string            `bson:"method,omitempty" json:"method,omitempty"`
	Path       string            `bson:"path,omitempty" json:"path,omitempty"`
	Status     int               `bson:"status,omitempty" json:"status,omitempty"`
	PropertyID string            `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	Extra      map[string]string `bson:"extra,omitempty" json:"extra,omitempty"`
}

// Interaction is one telemetry event recorded for an authenticated request.
type Interaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	SessionID string             `bson:"sessionId" json:"sessionId"`
	Action    string             `bson:"action" json:"action"`
	Details   InteractionDetails `bson:"details" json:"details"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
