package interfaces

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

// KitRepository is the device state store: one document per deviceId.
//
// Concurrency contract: updates are read-modify-write with field-level
// patch semantics. There is no optimistic-concurrency token; concurrent
// writers to the same kit are last-write-wins at the granularity of the
// whole committed patch. Each patch overwrites all fields it supplies
// atomically relative to itself, and nothing else.
type KitRepository interface {
	// FindByDeviceID resolves a kit by its hardware identifier.
	FindByDeviceID(ctx context.Context, deviceID string) (*agbmodels.Kit, error)

	// FindByIDForUser resolves a kit by id, scoped to its owner.
	FindByIDForUser(ctx context.Context, kitID, userID primitive.ObjectID) (*agbmodels.Kit, error)

	// ListByUser returns all kits owned by the given user.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]agbmodels.Kit, error)

	// ApplyPatch overwrites exactly the fields carried by the patch and
	// stamps updatedAt. Fields absent from the patch retain prior values.
	ApplyPatch(ctx context.Context, kitID primitive.ObjectID, patch agbmodels.KitPatch, updatedAt time.Time) error

	// ReplaceSchedules replaces the embedded schedule list and stamps
	// updatedAt. Schedules are inert records; nothing executes them.
	ReplaceSchedules(ctx context.Context, kitID primitive.ObjectID, schedules []agbmodels.IrrigationSchedule, updatedAt time.Time) error
}
