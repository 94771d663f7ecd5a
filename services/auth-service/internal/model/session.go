package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Session represents an issued session token. Only a hash of the token is
// stored; the token itself lives with the client.
type Session struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserUUID  string        `bson:"user_uuid"`
	TokenHash string        `bson:"token_hash"`
	IPAddress *string       `bson:"ip_address"`
	UserAgent *string       `bson:"user_agent"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
