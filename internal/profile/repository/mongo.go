package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sitecraft/sitecraft/backend/go-services/internal/profile"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const UsersCollection = "users"

// MongoRepo stores profiles in the users collection with the uid as _id.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{col: db.Collection(UsersCollection)}
}

func (r *MongoRepo) Get(ctx context.Context, uid string) (*profile.UserProfile, error) {
	var p profile.UserProfile
	if err := r.col.FindOne(ctx, bson.M{"_id": uid}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoRepo) SetMobileCode(ctx context.Context, uid, mobile, code string, issuedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"mobile":                        mobile,
			"mobileVerified":                false,
			"verification.mobile.code":      code,
			"verification.mobile.expiresAt": issuedAt,
			"verification.mobile.verified":  false,
			"updatedAt":                     issuedAt,
		},
		"$setOnInsert": bson.M{
			"createdAt": issuedAt,
		},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": uid}, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoRepo) ConfirmMobile(ctx context.Context, uid, code string, at time.Time) (*profile.UserProfile, error) {
	filter := bson.M{"_id": uid, "verification.mobile.code": code}
	update := bson.M{
		"$set": bson.M{
			"verification.mobile.verified": true,
			"mobileVerified":               true,
			"updatedAt":                    at,
		},
		"$unset": bson.M{
			"verification.mobile.code":      "",
			"verification.mobile.expiresAt": "",
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p profile.UserProfile
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCodeMismatch
		}
		return nil, err
	}
	return &p, nil
}
