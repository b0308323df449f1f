package telemetry

import (
	"context"
	"errors"
	"testing"

	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

func TestIngestSharedTimestamp(t *testing.T) {
	kit := testKit(100, 100)
	kits := newMemKitRepo(kit)
	sensors := &memSensorRepo{}
	notifs := &memNotifRepo{}
	svc := NewIngestService(kits, sensors, notifs, testLogger())

	ev, err := ParseEvent([]byte(`{"deviceId":"kit-test","battery":80,"waterLevel":60,"voltage":12.2,"current":1.1,"temperature":22,"humidity":55}`))
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}

	result, err := svc.Ingest(context.Background(), ev)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.Count != 6 {
		t.Fatalf("expected 6 readings, got %d", result.Count)
	}
	if len(sensors.entries) != 6 {
		t.Fatalf("expected 6 stored readings, got %d", len(sensors.entries))
	}
	for _, e := range sensors.entries {
		if !e.Timestamp.Equal(result.Timestamp) {
			t.Fatalf("reading %s timestamp %v differs from event timestamp %v", e.Type, e.Timestamp, result.Timestamp)
		}
		if e.KitID != kit.ID || e.DeviceID != "kit-test" {
			t.Fatalf("reading not attributed to the kit: %+v", e)
		}
	}
}

func TestIngestPartialEvent(t *testing.T) {
	kit := testKit(100, 100)
	kits := newMemKitRepo(kit)
	sensors := &memSensorRepo{}
	svc := NewIngestService(kits, sensors, &memNotifRepo{}, testLogger())

	ev, _ := ParseEvent([]byte(`{"deviceId":"kit-test","humidity":48}`))
	result, err := svc.Ingest(context.Background(), ev)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("expected 1 reading, got %d", result.Count)
	}
	if sensors.entries[0].Type != agbmodels.ReadingHumidity {
		t.Fatalf("expected humidity reading, got %q", sensors.entries[0].Type)
	}
	if len(kits.patches) != 1 || !kits.patches[0].IsZero() {
		t.Fatalf("a humidity-only event must not patch any kit field: %+v", kits.patches)
	}
	// Stored levels stay exactly as they were.
	if kits.kits["kit-test"].BatteryLevel != 100 || kits.kits["kit-test"].WaterLevel != 100 {
		t.Fatalf("kit levels changed: %+v", kits.kits["kit-test"])
	}
}

func TestIngestPumpStatusNeverBecomesReading(t *testing.T) {
	kit := testKit(100, 100)
	kits := newMemKitRepo(kit)
	sensors := &memSensorRepo{}
	svc := NewIngestService(kits, sensors, &memNotifRepo{}, testLogger())

	ev, _ := ParseEvent([]byte(`{"deviceId":"kit-test","pumpStatus":"ON"}`))
	result, err := svc.Ingest(context.Background(), ev)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.Count != 0 || len(sensors.entries) != 0 {
		t.Fatalf("pumpStatus must not produce a reading, got %d", len(sensors.entries))
	}
	if !kits.kits["kit-test"].PumpStatus {
		t.Fatalf("pumpStatus should have patched the kit")
	}
}

func TestIngestUnknownDeviceAborts(t *testing.T) {
	kits := newMemKitRepo()
	sensors := &memSensorRepo{}
	notifs := &memNotifRepo{}
	svc := NewIngestService(kits, sensors, notifs, testLogger())

	ev, _ := ParseEvent([]byte(`{"deviceId":"ghost","battery":5}`))
	_, err := svc.Ingest(context.Background(), ev)
	var nf *agbmodels.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(sensors.entries) != 0 || len(notifs.inserted) != 0 || len(kits.patches) != 0 {
		t.Fatalf("nothing may be persisted for an unknown device")
	}
}

func TestIngestBreachRecordsAlert(t *testing.T) {
	kit := testKit(100, 100)
	kits := newMemKitRepo(kit)
	notifs := &memNotifRepo{}
	svc := NewIngestService(kits, &memSensorRepo{}, notifs, testLogger())

	ev, _ := ParseEvent([]byte(`{"deviceId":"kit-test","battery":12,"waterLevel":4}`))
	if _, err := svc.Ingest(context.Background(), ev); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if len(notifs.inserted) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(notifs.inserted))
	}
	for _, n := range notifs.inserted {
		if n.Category != agbmodels.CategoryAlert {
			t.Fatalf("expected alert category, got %q", n.Category)
		}
		if n.UserID != kit.UserID || n.KitID != kit.ID {
			t.Fatalf("alert not attributed to owner: %+v", n)
		}
	}
}

func TestIngestRepeatedBreachFiresEachTime(t *testing.T) {
	kits := newMemKitRepo(testKit(100, 100))
	notifs := &memNotifRepo{}
	svc := NewIngestService(kits, &memSensorRepo{}, notifs, testLogger())

	ev, _ := ParseEvent([]byte(`{"deviceId":"kit-test","battery":15}`))
	for i := 0; i < 3; i++ {
		if _, err := svc.Ingest(context.Background(), ev); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
	}
	if len(notifs.inserted) != 3 {
		t.Fatalf("expected one alert per event, got %d", len(notifs.inserted))
	}
}

func TestIngestStoreFailureSurfaces(t *testing.T) {
	kits := newMemKitRepo(testKit(100, 100))
	sensors := &memSensorRepo{fail: true}
	svc := NewIngestService(kits, sensors, &memNotifRepo{}, testLogger())

	ev, _ := ParseEvent([]byte(`{"deviceId":"kit-test","battery":80}`))
	_, err := svc.Ingest(context.Background(), ev)
	var se *agbmodels.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if len(kits.patches) != 0 {
		t.Fatalf("kit must not be patched after the reading insert failed")
	}
}
