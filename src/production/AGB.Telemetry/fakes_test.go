package telemetry

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	config "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Config"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"})
}

// In-memory stand-ins for the Mongo repositories. They record every call
// so tests can assert what was persisted and in what shape.

type memKitRepo struct {
	kits    map[string]*agbmodels.Kit
	patches []agbmodels.KitPatch
	failOn  string
}

func newMemKitRepo(kits ...*agbmodels.Kit) *memKitRepo {
	r := &memKitRepo{kits: make(map[string]*agbmodels.Kit)}
	for _, k := range kits {
		r.kits[k.DeviceID] = k
	}
	return r
}

func (r *memKitRepo) FindByDeviceID(ctx context.Context, deviceID string) (*agbmodels.Kit, error) {
	if r.failOn == "find" {
		return nil, &agbmodels.StoreError{Op: "kits.find", Err: context.DeadlineExceeded}
	}
	kit, ok := r.kits[deviceID]
	if !ok {
		return nil, &agbmodels.NotFoundError{Msg: "kit not found for device " + deviceID}
	}
	copied := *kit
	return &copied, nil
}

func (r *memKitRepo) FindByIDForUser(ctx context.Context, kitID, userID primitive.ObjectID) (*agbmodels.Kit, error) {
	for _, kit := range r.kits {
		if kit.ID == kitID && kit.UserID == userID {
			copied := *kit
			return &copied, nil
		}
	}
	return nil, &agbmodels.NotFoundError{Msg: "kit not found"}
}

func (r *memKitRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]agbmodels.Kit, error) {
	out := make([]agbmodels.Kit, 0)
	for _, kit := range r.kits {
		if kit.UserID == userID {
			out = append(out, *kit)
		}
	}
	return out, nil
}

func (r *memKitRepo) ApplyPatch(ctx context.Context, kitID primitive.ObjectID, patch agbmodels.KitPatch, updatedAt time.Time) error {
	if r.failOn == "patch" {
		return &agbmodels.StoreError{Op: "kits.patch", Err: context.DeadlineExceeded}
	}
	r.patches = append(r.patches, patch)
	for _, kit := range r.kits {
		if kit.ID != kitID {
			continue
		}
		if patch.BatteryLevel != nil {
			kit.BatteryLevel = *patch.BatteryLevel
		}
		if patch.WaterLevel != nil {
			kit.WaterLevel = *patch.WaterLevel
		}
		if patch.Voltage != nil {
			kit.Voltage = *patch.Voltage
		}
		if patch.Current != nil {
			kit.Current = *patch.Current
		}
		if patch.PumpStatus != nil {
			kit.PumpStatus = *patch.PumpStatus
		}
		kit.UpdatedAt = updatedAt
		return nil
	}
	return &agbmodels.NotFoundError{Msg: "kit not found"}
}

func (r *memKitRepo) ReplaceSchedules(ctx context.Context, kitID primitive.ObjectID, schedules []agbmodels.IrrigationSchedule, updatedAt time.Time) error {
	for _, kit := range r.kits {
		if kit.ID == kitID {
			kit.IrrigationSchedules = schedules
			kit.UpdatedAt = updatedAt
			return nil
		}
	}
	return &agbmodels.NotFoundError{Msg: "kit not found"}
}

type memSensorRepo struct {
	entries []agbmodels.SensorData
	fail    bool
}

func (r *memSensorRepo) InsertMany(ctx context.Context, entries []agbmodels.SensorData) error {
	if r.fail {
		return &agbmodels.StoreError{Op: "sensor_data.insert", Err: context.DeadlineExceeded}
	}
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *memSensorRepo) FindWindow(ctx context.Context, kitID primitive.ObjectID, since time.Time) ([]agbmodels.SensorData, error) {
	out := make([]agbmodels.SensorData, 0)
	for _, e := range r.entries {
		if e.KitID == kitID && !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memSensorRepo) FindWindowByType(ctx context.Context, kitID primitive.ObjectID, readingType string, since time.Time) ([]agbmodels.SensorData, error) {
	out := make([]agbmodels.SensorData, 0)
	for _, e := range r.entries {
		if e.KitID == kitID && e.Type == readingType && !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memSensorRepo) LatestByTypes(ctx context.Context, kitID primitive.ObjectID, types []string) ([]agbmodels.SensorData, error) {
	out := make([]agbmodels.SensorData, 0)
	for _, wanted := range types {
		var latest *agbmodels.SensorData
		for i := range r.entries {
			e := r.entries[i]
			if e.KitID != kitID || e.Type != wanted {
				continue
			}
			if latest == nil || e.Timestamp.After(latest.Timestamp) {
				latest = &e
			}
		}
		if latest != nil {
			out = append(out, *latest)
		}
	}
	if len(out) == 0 {
		return nil, &agbmodels.NotFoundError{Msg: "no readings"}
	}
	return out, nil
}

type memNotifRepo struct {
	inserted []agbmodels.Notification
	fail     bool
}

func (r *memNotifRepo) Insert(ctx context.Context, n agbmodels.Notification) error {
	if r.fail {
		return &agbmodels.StoreError{Op: "notifications.insert", Err: context.DeadlineExceeded}
	}
	n.ID = primitive.NewObjectID()
	r.inserted = append(r.inserted, n)
	return nil
}

func (r *memNotifRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]agbmodels.Notification, error) {
	out := make([]agbmodels.Notification, 0)
	for _, n := range r.inserted {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotifRepo) MarkRead(ctx context.Context, userID, notifID primitive.ObjectID) (*agbmodels.Notification, error) {
	for i := range r.inserted {
		if r.inserted[i].ID == notifID && r.inserted[i].UserID == userID {
			r.inserted[i].IsRead = true
			copied := r.inserted[i]
			return &copied, nil
		}
	}
	return nil, &agbmodels.NotFoundError{Msg: "notification not found"}
}

type memPublisher struct {
	mu       sync.Mutex
	commands []struct {
		DeviceID string
		On       bool
	}
}

func (p *memPublisher) PublishPumpCommand(deviceID string, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands = append(p.commands, struct {
		DeviceID string
		On       bool
	}{deviceID, on})
}
