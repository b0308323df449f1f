package implementation

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

// MongoSensorDataRepository is the append-only reading store.
type MongoSensorDataRepository struct {
	coll *mongo.Collection
}

func NewMongoSensorDataRepository(coll *mongo.Collection) *MongoSensorDataRepository {
	return &MongoSensorDataRepository{coll: coll}
}

func (r *MongoSensorDataRepository) InsertMany(ctx context.Context, entries []agbmodels.SensorData) error {
	if len(entries) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, bulkOpTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(entries))
	for i := range entries {
		docs = append(docs, entries[i])
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return &agbmodels.StoreError{Op: "insert sensor data", Err: err}
	}
	return nil
}

func (r *MongoSensorDataRepository) FindWindow(ctx context.Context, kitID primitive.ObjectID, since time.Time) ([]agbmodels.SensorData, error) {
	filter := bson.M{"kitId": kitID, "timestamp": bson.M{"$gte": since}}
	return r.find(ctx, filter)
}

func (r *MongoSensorDataRepository) FindWindowByType(ctx context.Context, kitID primitive.ObjectID, readingType string, since time.Time) ([]agbmodels.SensorData, error) {
	filter := bson.M{"kitId": kitID, "type": readingType, "timestamp": bson.M{"$gte": since}}
	return r.find(ctx, filter)
}

// LatestByTypes resolves one most-recent reading per requested type, each
// type queried in its own goroutine. Missing types are simply absent from
// the result; all types absent is a NotFoundError.
func (r *MongoSensorDataRepository) LatestByTypes(ctx context.Context, kitID primitive.ObjectID, types []string) ([]agbmodels.SensorData, error) {
	ctx, cancel := context.WithTimeout(ctx, singleOpTimeout)
	defer cancel()

	results := make([]*agbmodels.SensorData, len(types))
	errs := make([]error, len(types))

	var wg sync.WaitGroup
	for i, readingType := range types {
		wg.Add(1)
		go func(i int, readingType string) {
			defer wg.Done()
			opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
			var sd agbmodels.SensorData
			err := r.coll.FindOne(ctx, bson.M{"kitId": kitID, "type": readingType}, opts).Decode(&sd)
			if err != nil {
				if !errors.Is(err, mongo.ErrNoDocuments) {
					errs[i] = err
				}
				return
			}
			results[i] = &sd
		}(i, readingType)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, &agbmodels.StoreError{Op: "find latest sensor data", Err: err}
		}
	}

	latest := make([]agbmodels.SensorData, 0, len(types))
	for _, sd := range results {
		if sd != nil {
			latest = append(latest, *sd)
		}
	}
	if len(latest) == 0 {
		return nil, &agbmodels.NotFoundError{Msg: "no sensor data found"}
	}
	return latest, nil
}

func (r *MongoSensorDataRepository) find(ctx context.Context, filter bson.M) ([]agbmodels.SensorData, error) {
	ctx, cancel := context.WithTimeout(ctx, bulkOpTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, &agbmodels.StoreError{Op: "find sensor data", Err: err}
	}
	defer cursor.Close(ctx)

	data := make([]agbmodels.SensorData, 0)
	if err := cursor.All(ctx, &data); err != nil {
		return nil, &agbmodels.StoreError{Op: "decode sensor data", Err: err}
	}
	return data, nil
}
