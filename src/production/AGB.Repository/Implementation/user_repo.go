package implementation

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll}
}

func (r *MongoUserRepository) Create(ctx context.Context, u agbmodels.User) (*agbmodels.User, error) {
	ctx, cancel := context.WithTimeout(ctx, singleOpTimeout)
	defer cancel()

	result, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		return nil, &agbmodels.StoreError{Op: "insert user", Err: err}
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return &u, nil
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*agbmodels.User, error) {
	ctx, cancel := context.WithTimeout(ctx, singleOpTimeout)
	defer cancel()

	var u agbmodels.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &agbmodels.NotFoundError{Msg: "user not found"}
		}
		return nil, &agbmodels.StoreError{Op: "find user", Err: err}
	}
	return &u, nil
}
