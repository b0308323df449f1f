package implementation

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

// MongoNotificationRepository is the append-only notification log.
type MongoNotificationRepository struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepository(coll *mongo.Collection) *MongoNotificationRepository {
	return &MongoNotificationRepository{coll: coll}
}

func (r *MongoNotificationRepository) Insert(ctx context.Context, n agbmodels.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, singleOpTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return &agbmodels.StoreError{Op: "insert notification", Err: err}
	}
	return nil
}

func (r *MongoNotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]agbmodels.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, bulkOpTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, &agbmodels.StoreError{Op: "list notifications", Err: err}
	}
	defer cursor.Close(ctx)

	notifications := make([]agbmodels.Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, &agbmodels.StoreError{Op: "decode notifications", Err: err}
	}
	return notifications, nil
}

// MarkRead is idempotent: marking an already-read notification matches the
// same document and leaves every other field untouched.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, userID, notifID primitive.ObjectID) (*agbmodels.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, singleOpTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"isRead": true}}

	var n agbmodels.Notification
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": notifID, "userId": userID}, update, opts).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &agbmodels.NotFoundError{Msg: "notification not found"}
		}
		return nil, &agbmodels.StoreError{Op: "mark notification read", Err: err}
	}
	return &n, nil
}
