package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	config "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Config"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
	telemetry "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Telemetry"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"})
}

// In-memory repositories recording everything persisted, so the adapter
// path and the direct path can be compared store by store.

type memKits struct {
	kit     *agbmodels.Kit
	patches []agbmodels.KitPatch
}

func (r *memKits) FindByDeviceID(ctx context.Context, deviceID string) (*agbmodels.Kit, error) {
	if r.kit != nil && r.kit.DeviceID == deviceID {
		copied := *r.kit
		return &copied, nil
	}
	return nil, &agbmodels.NotFoundError{Msg: "kit not found for device " + deviceID}
}

func (r *memKits) FindByIDForUser(ctx context.Context, kitID, userID primitive.ObjectID) (*agbmodels.Kit, error) {
	return nil, &agbmodels.NotFoundError{Msg: "kit not found"}
}

func (r *memKits) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]agbmodels.Kit, error) {
	return nil, nil
}

func (r *memKits) ApplyPatch(ctx context.Context, kitID primitive.ObjectID, patch agbmodels.KitPatch, updatedAt time.Time) error {
	r.patches = append(r.patches, patch)
	if patch.BatteryLevel != nil {
		r.kit.BatteryLevel = *patch.BatteryLevel
	}
	if patch.WaterLevel != nil {
		r.kit.WaterLevel = *patch.WaterLevel
	}
	if patch.Voltage != nil {
		r.kit.Voltage = *patch.Voltage
	}
	if patch.Current != nil {
		r.kit.Current = *patch.Current
	}
	if patch.PumpStatus != nil {
		r.kit.PumpStatus = *patch.PumpStatus
	}
	r.kit.UpdatedAt = updatedAt
	return nil
}

func (r *memKits) ReplaceSchedules(ctx context.Context, kitID primitive.ObjectID, schedules []agbmodels.IrrigationSchedule, updatedAt time.Time) error {
	return nil
}

type memSensors struct {
	entries []agbmodels.SensorData
}

func (r *memSensors) InsertMany(ctx context.Context, entries []agbmodels.SensorData) error {
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *memSensors) FindWindow(ctx context.Context, kitID primitive.ObjectID, since time.Time) ([]agbmodels.SensorData, error) {
	return r.entries, nil
}

func (r *memSensors) FindWindowByType(ctx context.Context, kitID primitive.ObjectID, readingType string, since time.Time) ([]agbmodels.SensorData, error) {
	return r.entries, nil
}

func (r *memSensors) LatestByTypes(ctx context.Context, kitID primitive.ObjectID, types []string) ([]agbmodels.SensorData, error) {
	return nil, &agbmodels.NotFoundError{Msg: "no readings"}
}

type memNotifs struct {
	inserted []agbmodels.Notification
}

func (r *memNotifs) Insert(ctx context.Context, n agbmodels.Notification) error {
	r.inserted = append(r.inserted, n)
	return nil
}

func (r *memNotifs) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]agbmodels.Notification, error) {
	return r.inserted, nil
}

func (r *memNotifs) MarkRead(ctx context.Context, userID, notifID primitive.ObjectID) (*agbmodels.Notification, error) {
	return nil, &agbmodels.NotFoundError{Msg: "notification not found"}
}

type ingestEnv struct {
	kits    *memKits
	sensors *memSensors
	notifs  *memNotifs
	ingest  *telemetry.IngestService
}

func newIngestEnv() *ingestEnv {
	kits := &memKits{kit: &agbmodels.Kit{
		ID:           primitive.NewObjectID(),
		DeviceID:     "kit-gw",
		UserID:       primitive.NewObjectID(),
		BatteryLevel: 100,
		WaterLevel:   100,
	}}
	sensors := &memSensors{}
	notifs := &memNotifs{}
	return &ingestEnv{
		kits:    kits,
		sensors: sensors,
		notifs:  notifs,
		ingest:  telemetry.NewIngestService(kits, sensors, notifs, testLogger()),
	}
}

func testGateway(ingest *telemetry.IngestService) *Gateway {
	cfg := &config.Config{
		MQTT: config.MQTTConfig{
			BrokerHost:      "localhost",
			BrokerPort:      1883,
			ClientID:        "test",
			SensorTopic:     "agroboost/sensors/+",
			UplinkTopic:     "agroboost/lorawan/+",
			PumpTopicPrefix: "agroboost/pump",
		},
	}
	return New(cfg, ingest, testLogger())
}

// The broker subscriber and the direct HTTP endpoint must leave every
// store in the same state for the same payload.
func TestHandleTelemetryMatchesDirectIngestion(t *testing.T) {
	payload := []byte(`{"deviceId":"kit-gw","battery":15,"waterLevel":60,"humidity":48,"pumpStatus":"ON"}`)

	viaGateway := newIngestEnv()
	gw := testGateway(viaGateway.ingest)
	if err := gw.HandleTelemetry(context.Background(), payload); err != nil {
		t.Fatalf("HandleTelemetry failed: %v", err)
	}

	direct := newIngestEnv()
	ev, err := telemetry.ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	if _, err := direct.ingest.Ingest(context.Background(), ev); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if len(viaGateway.sensors.entries) != len(direct.sensors.entries) {
		t.Fatalf("reading counts diverged: %d vs %d", len(viaGateway.sensors.entries), len(direct.sensors.entries))
	}
	for i := range direct.sensors.entries {
		a, b := viaGateway.sensors.entries[i], direct.sensors.entries[i]
		if a.Type != b.Type || a.Value != b.Value || a.Unit != b.Unit || a.DeviceID != b.DeviceID {
			t.Fatalf("reading %d diverged: %+v vs %+v", i, a, b)
		}
		if !a.Timestamp.Equal(viaGateway.sensors.entries[0].Timestamp) {
			t.Fatalf("gateway-path readings do not share one timestamp")
		}
	}

	ga, gb := viaGateway.kits.kit, direct.kits.kit
	if ga.BatteryLevel != gb.BatteryLevel || ga.WaterLevel != gb.WaterLevel || ga.PumpStatus != gb.PumpStatus {
		t.Fatalf("kit state diverged: %+v vs %+v", ga, gb)
	}
	if !ga.PumpStatus {
		t.Fatalf("pumpStatus ON did not patch the kit")
	}

	if len(viaGateway.notifs.inserted) != len(direct.notifs.inserted) {
		t.Fatalf("notification counts diverged: %d vs %d", len(viaGateway.notifs.inserted), len(direct.notifs.inserted))
	}
	if len(viaGateway.notifs.inserted) != 1 || viaGateway.notifs.inserted[0].Title != "Low battery" {
		t.Fatalf("expected one low battery alert, got %+v", viaGateway.notifs.inserted)
	}
	if viaGateway.notifs.inserted[0].Title != direct.notifs.inserted[0].Title ||
		viaGateway.notifs.inserted[0].Category != direct.notifs.inserted[0].Category {
		t.Fatalf("notifications diverged: %+v vs %+v", viaGateway.notifs.inserted[0], direct.notifs.inserted[0])
	}
}

func TestHandleTelemetryEnvelopeMatchesFlat(t *testing.T) {
	flat := []byte(`{"deviceId":"kit-gw","battery":72,"temperature":21}`)
	envelope := []byte(`{
		"end_device_ids": {"device_id": "kit-gw"},
		"uplink_message": {"decoded_payload": {"battery": 72, "temperature": 21}}
	}`)

	a := newIngestEnv()
	if err := testGateway(a.ingest).HandleTelemetry(context.Background(), flat); err != nil {
		t.Fatalf("flat payload failed: %v", err)
	}
	b := newIngestEnv()
	if err := testGateway(b.ingest).HandleTelemetry(context.Background(), envelope); err != nil {
		t.Fatalf("envelope payload failed: %v", err)
	}

	if len(a.sensors.entries) != len(b.sensors.entries) {
		t.Fatalf("reading counts diverged: %d vs %d", len(a.sensors.entries), len(b.sensors.entries))
	}
	for i := range a.sensors.entries {
		if a.sensors.entries[i].Type != b.sensors.entries[i].Type ||
			a.sensors.entries[i].Value != b.sensors.entries[i].Value {
			t.Fatalf("reading %d diverged: %+v vs %+v", i, a.sensors.entries[i], b.sensors.entries[i])
		}
	}
	if a.kits.kit.BatteryLevel != b.kits.kit.BatteryLevel {
		t.Fatalf("kit state diverged: %g vs %g", a.kits.kit.BatteryLevel, b.kits.kit.BatteryLevel)
	}
}

// One bad message surfaces as an error at the handler boundary and
// leaves every store untouched.
func TestHandleTelemetryMalformedPayload(t *testing.T) {
	env := newIngestEnv()
	gw := testGateway(env.ingest)

	cases := [][]byte{
		[]byte(`not json at all`),
		[]byte(`{"battery": 50}`),
	}
	for _, payload := range cases {
		err := gw.HandleTelemetry(context.Background(), payload)
		var verr *agbmodels.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("payload %s: expected ValidationError, got %v", payload, err)
		}
	}
	if len(env.sensors.entries) != 0 || len(env.notifs.inserted) != 0 || len(env.kits.patches) != 0 {
		t.Fatalf("malformed payloads must not persist anything")
	}
}

func TestHandleTelemetryUnknownDevice(t *testing.T) {
	env := newIngestEnv()
	gw := testGateway(env.ingest)

	err := gw.HandleTelemetry(context.Background(), []byte(`{"deviceId":"ghost","battery":50}`))
	var nf *agbmodels.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(env.sensors.entries) != 0 || len(env.notifs.inserted) != 0 {
		t.Fatalf("unknown device must not persist anything")
	}
}
