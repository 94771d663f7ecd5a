package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a user in the authentication system. A record is created on
// the first successful sign-in; later sign-ins are idempotent upserts keyed by
// email.
type User struct {
	ID             bson.ObjectID `bson:"_id,omitempty"   json:"-"`
	UUID           string        `bson:"uuid"            json:"uuid"`
	Email          string        `bson:"email"           json:"email"`
	Nickname       string        `bson:"nickname"        json:"nickname"`
	AvatarURL      string        `bson:"avatar_url"      json:"avatar_url"`
	SigninType     string        `bson:"signin_type"     json:"signin_type"`
	SigninProvider string        `bson:"signin_provider" json:"signin_provider"`
	SigninOpenID   string        `bson:"signin_openid"   json:"signin_openid"`
	SigninIP       string        `bson:"signin_ip"       json:"signin_ip"`
	CreatedAt      time.Time     `bson:"created_at"      json:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at"      json:"updated_at"`
}
