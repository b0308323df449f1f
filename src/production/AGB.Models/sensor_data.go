package agbmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reading types as stored in the sensor_data collection.
const (
	ReadingHumidity   = "humidity"
	ReadingTemp       = "temp"
	ReadingVoltage    = "voltage"
	ReadingCurrent    = "current"
	ReadingBattery    = "battery"
	ReadingWaterLevel = "water_level"
)

// SensorData is one immutable timestamped measurement. All readings
// produced by a single ingestion event share the exact same timestamp.
type SensorData struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	KitID     primitive.ObjectID `bson:"kitId" json:"kitId"`
	DeviceID  string             `bson:"deviceId" json:"deviceId"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Type      string             `bson:"type" json:"type"`
	Value     float64            `bson:"value" json:"value"`
	Unit      string             `bson:"unit" json:"unit"`
}

// ValidReadingType reports whether t is one of the stored reading types.
func ValidReadingType(t string) bool {
	switch t {
	case ReadingHumidity, ReadingTemp, ReadingVoltage, ReadingCurrent, ReadingBattery, ReadingWaterLevel:
		return true
	}
	return false
}
