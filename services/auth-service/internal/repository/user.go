package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nonthaphat/launchkit-api/services/auth-service/internal/model"
)

// UserRepository defines the interface for user-related database operations.
// UpsertUser is the save-user collaborator the JWT hook calls: it inserts the
// record on first sign-in and is a no-op (besides updated_at) on later ones.
type UserRepository interface {
	UpsertUser(ctx context.Context, user *model.User) (*model.User, bool, error)
	GetUserByUUID(ctx context.Context, uuid string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "uuid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "signin_provider", Value: 1}, {Key: "signin_openid", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

// UpsertUser inserts the candidate record keyed by email. The identity fields
// (uuid, created_at, provider identity) are assigned on insert only; existing
// users keep theirs. The second return value reports whether the record was
// created by this call.
func (r *userMongoRepository) UpsertUser(ctx context.Context, user *model.User) (*model.User, bool, error) {
	now := time.Now()

	update := bson.M{
		"$set": bson.M{
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"uuid":            user.UUID,
			"email":           user.Email,
			"nickname":        user.Nickname,
			"avatar_url":      user.AvatarURL,
			"signin_type":     user.SigninType,
			"signin_provider": user.SigninProvider,
			"signin_openid":   user.SigninOpenID,
			"signin_ip":       user.SigninIP,
			"created_at":      user.CreatedAt,
		},
	}

	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"email": user.Email},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return nil, false, err
	}

	saved, err := r.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, false, err
	}

	return saved, result.UpsertedCount > 0, nil
}

func (r *userMongoRepository) GetUserByUUID(ctx context.Context, uuid string) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"uuid": uuid})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
