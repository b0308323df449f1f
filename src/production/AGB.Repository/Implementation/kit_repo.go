package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

// MongoKitRepository stores one document per kit, keyed by the unique
// deviceId. Writes use field-level $set patches: concurrent writers to
// the same kit are last-write-wins per committed patch, with no conflict
// detection beyond the atomicity of each individual update.
type MongoKitRepository struct {
	coll *mongo.Collection
}

func NewMongoKitRepository(coll *mongo.Collection) *MongoKitRepository {
	return &MongoKitRepository{coll: coll}
}

func (r *MongoKitRepository) FindByDeviceID(ctx context.Context, deviceID string) (*agbmodels.Kit, error) {
	ctx, cancel := context.WithTimeout(ctx, singleOpTimeout)
	defer cancel()

	var kit agbmodels.Kit
	err := r.coll.FindOne(ctx, bson.M{"deviceId": deviceID}).Decode(&kit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &agbmodels.NotFoundError{Msg: fmt.Sprintf("kit not found for deviceId %s", deviceID)}
		}
		return nil, &agbmodels.StoreError{Op: "find kit by deviceId", Err: err}
	}
	return &kit, nil
}

func (r *MongoKitRepository) FindByIDForUser(ctx context.Context, kitID, userID primitive.ObjectID) (*agbmodels.Kit, error) {
	ctx, cancel := context.WithTimeout(ctx, singleOpTimeout)
	defer cancel()

	var kit agbmodels.Kit
	err := r.coll.FindOne(ctx, bson.M{"_id": kitID, "userId": userID}).Decode(&kit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &agbmodels.NotFoundError{Msg: "kit not found"}
		}
		return nil, &agbmodels.StoreError{Op: "find kit by id", Err: err}
	}
	return &kit, nil
}

func (r *MongoKitRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]agbmodels.Kit, error) {
	ctx, cancel := context.WithTimeout(ctx, singleOpTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, &agbmodels.StoreError{Op: "list kits", Err: err}
	}
	defer cursor.Close(ctx)

	kits := make([]agbmodels.Kit, 0)
	if err := cursor.All(ctx, &kits); err != nil {
		return nil, &agbmodels.StoreError{Op: "decode kits", Err: err}
	}
	return kits, nil
}

func (r *MongoKitRepository) ApplyPatch(ctx context.Context, kitID primitive.ObjectID, patch agbmodels.KitPatch, updatedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, singleOpTimeout)
	defer cancel()

	set := bson.M{"updatedAt": updatedAt}
	if patch.BatteryLevel != nil {
		set["batteryLevel"] = *patch.BatteryLevel
	}
	if patch.WaterLevel != nil {
		set["waterLevel"] = *patch.WaterLevel
	}
	if patch.Voltage != nil {
		set["voltage"] = *patch.Voltage
	}
	if patch.Current != nil {
		set["current"] = *patch.Current
	}
	if patch.PumpStatus != nil {
		set["pumpStatus"] = *patch.PumpStatus
	}

	result, err := r.coll.UpdateByID(ctx, kitID, bson.M{"$set": set})
	if err != nil {
		return &agbmodels.StoreError{Op: "patch kit", Err: err}
	}
	if result.MatchedCount == 0 {
		return &agbmodels.NotFoundError{Msg: "kit not found"}
	}
	return nil
}

func (r *MongoKitRepository) ReplaceSchedules(ctx context.Context, kitID primitive.ObjectID, schedules []agbmodels.IrrigationSchedule, updatedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, singleOpTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"irrigationSchedules": schedules, "updatedAt": updatedAt}}
	result, err := r.coll.UpdateByID(ctx, kitID, update)
	if err != nil {
		return &agbmodels.StoreError{Op: "replace schedules", Err: err}
	}
	if result.MatchedCount == 0 {
		return &agbmodels.NotFoundError{Msg: "kit not found"}
	}
	return nil
}
