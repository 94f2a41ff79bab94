package account

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	FullName     string             `json:"fullName" bson:"full_name"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	UserType     string             `json:"userType" bson:"user_type"`
	Roles        []string           `json:"roles" bson:"roles"`
	Enabled      bool               `json:"enabled" bson:"enabled"`
	LastLoginAt  *time.Time         `json:"lastLoginAt,omitempty" bson:"last_login_at,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}

type Profile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	UserType    string     `json:"userType"`
	Roles       []string   `json:"roles"`
	Enabled     bool       `json:"enabled"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        *Profile  `json:"user"`
}

// ClientInfo describes where a login came from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

func (u *User) ToProfile() *Profile {
	return &Profile{
		ID:          u.ID.Hex(),
		Email:       u.Email,
		FullName:    u.FullName,
		UserType:    u.UserType,
		Roles:       u.Roles,
		Enabled:     u.Enabled,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// RolePollingUser is granted to every account that may cast votes.
const RolePollingUser = "Polling User"
