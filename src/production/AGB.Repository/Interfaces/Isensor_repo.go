package interfaces

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

// SensorDataRepository is the append-only time-series reading store.
type SensorDataRepository interface {
	// InsertMany appends a batch of readings. Readings are never mutated
	// or deleted afterwards.
	InsertMany(ctx context.Context, entries []agbmodels.SensorData) error

	// FindWindow returns all readings for a kit since the given instant,
	// newest first.
	FindWindow(ctx context.Context, kitID primitive.ObjectID, since time.Time) ([]agbmodels.SensorData, error)

	// FindWindowByType is FindWindow restricted to one reading type.
	FindWindowByType(ctx context.Context, kitID primitive.ObjectID, readingType string, since time.Time) ([]agbmodels.SensorData, error)

	// LatestByTypes resolves the single most recent reading per requested
	// type. Types with no readings are simply absent from the result.
	LatestByTypes(ctx context.Context, kitID primitive.ObjectID, types []string) ([]agbmodels.SensorData, error)
}
