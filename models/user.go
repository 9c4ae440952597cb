package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type Preferences struct {
	PropertyTypes []string `bson:"propertyTypes,omitempty" json:"propertyTypes,omitempty" mapstructure:"propertyTypes"`
	Cities        []string `bson:"cities,omitempty" json:"cities,omitempty" mapstructure:"cities"`
	BudgetMin     int64    `bson:"budgetMin,omitempty" json:"budgetMin,omitempty" mapstructure:"budgetMin"`
	BudgetMax     int64    `bson:"budgetMax,omitempty" json:"budgetMax,omitempty" mapstructure:"budgetMax"`
	Notifications bool     `bson:"notifications" json:"notifications" mapstructure:"notifications"`
}

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GoogleID    string             `bson:"googleId,omitempty" json:"-"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password,omitempty" json:"-"` // bcrypt hash
	Avatar      string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Provider    string             `bson:"provider" json:"provider"` // "local", "google"
	Role        Role               `bson:"role" json:"role"`
	Preferences Preferences        `bson:"preferences" json:"preferences"`
	LastLogin   *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasPassword is false for accounts created through Google sign-in only.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary is the public subset attached to other records, such as a
// property's owner.
func (u *User) Summary() OwnerSummary {
	return OwnerSummary{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

type OwnerSummary struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	Email  string             `bson:"email" json:"email"`
	Avatar string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name        *string      `json:"name" validate:"omitempty,min=1,max=100"`
	Phone       *string      `json:"phone" validate:"omitempty,phone"`
	Avatar      *string      `json:"avatar" validate:"omitempty,url"`
	Preferences *Preferences `json:"preferences"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=user agent admin"`
}

// GoogleProfile is the identity handed back by the OAuth provider.
type GoogleProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}
