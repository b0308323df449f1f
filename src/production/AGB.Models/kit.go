package agbmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kit is the per-device aggregate for one physical irrigation controller.
// DeviceID is the hardware identifier and is unique across the fleet.
type Kit struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	DeviceID            string               `bson:"deviceId" json:"deviceId"`
	UserID              primitive.ObjectID   `bson:"userId" json:"userId"`
	PumpStatus          bool                 `bson:"pumpStatus" json:"pumpStatus"`
	BatteryLevel        float64              `bson:"batteryLevel" json:"batteryLevel"`
	WaterLevel          float64              `bson:"waterLevel" json:"waterLevel"`
	Voltage             float64              `bson:"voltage" json:"voltage"`
	Current             float64              `bson:"current" json:"current"`
	Location            string               `bson:"location" json:"location"`
	IrrigationSchedules []IrrigationSchedule `bson:"irrigationSchedules" json:"irrigationSchedules"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IrrigationSchedule is an inert schedule record embedded in a Kit.
// Schedules are stored and edited through the API but never executed
// by this server.
type IrrigationSchedule struct {
	StartTime         time.Time `bson:"startTime" json:"startTime"`
	DurationMinutes   int       `bson:"durationMinutes" json:"durationMinutes"`
	DaysOfWeek        []string  `bson:"daysOfWeek" json:"daysOfWeek"`
	ThresholdHumidity *float64  `bson:"thresholdHumidity,omitempty" json:"thresholdHumidity,omitempty"`
	IsActive          bool      `bson:"isActive" json:"isActive"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
}

// KitPatch carries the kit fields present in one telemetry event or
// manual command. Nil pointers mean "leave the stored value alone";
// only non-nil fields are written.
type KitPatch struct {
	BatteryLevel *float64
	WaterLevel   *float64
	Voltage      *float64
	Current      *float64
	PumpStatus   *bool
}

// IsZero reports whether the patch carries no fields at all.
func (p KitPatch) IsZero() bool {
	return p.BatteryLevel == nil && p.WaterLevel == nil && p.Voltage == nil &&
		p.Current == nil && p.PumpStatus == nil
}
