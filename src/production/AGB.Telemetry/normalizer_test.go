package telemetry

import (
	"errors"
	"reflect"
	"testing"

	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

func TestParseEventFlat(t *testing.T) {
	payload := []byte(`{
		"deviceId": "kit-001",
		"battery": 87.5,
		"waterLevel": 42,
		"voltage": 12.1,
		"current": 0.8,
		"temperature": 23.4,
		"humidity": 61,
		"pumpStatus": "ON"
	}`)

	ev, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	if ev.DeviceID != "kit-001" {
		t.Fatalf("expected deviceId kit-001, got %q", ev.DeviceID)
	}
	if ev.Battery == nil || *ev.Battery != 87.5 {
		t.Fatalf("expected battery 87.5, got %v", ev.Battery)
	}
	if ev.WaterLevel == nil || *ev.WaterLevel != 42 {
		t.Fatalf("expected waterLevel 42, got %v", ev.WaterLevel)
	}
	if ev.Temperature == nil || *ev.Temperature != 23.4 {
		t.Fatalf("expected temperature 23.4, got %v", ev.Temperature)
	}
	if ev.PumpStatus == nil || !*ev.PumpStatus {
		t.Fatalf("expected pumpStatus true, got %v", ev.PumpStatus)
	}
}

func TestParseEventUplinkEnvelopeEquivalence(t *testing.T) {
	flat := []byte(`{"deviceId":"lora-7","battery":55,"humidity":70,"pumpStatus":true}`)
	envelope := []byte(`{
		"end_device_ids": {"device_id": "lora-7"},
		"uplink_message": {
			"decoded_payload": {"battery": 55, "humidity": 70, "pumpStatus": true}
		}
	}`)

	fromFlat, err := ParseEvent(flat)
	if err != nil {
		t.Fatalf("flat parse failed: %v", err)
	}
	fromEnvelope, err := ParseEvent(envelope)
	if err != nil {
		t.Fatalf("envelope parse failed: %v", err)
	}
	if !reflect.DeepEqual(fromFlat, fromEnvelope) {
		t.Fatalf("envelope and flat shapes diverged: %+v vs %+v", fromFlat, fromEnvelope)
	}
}

func TestParseEventMissingDeviceID(t *testing.T) {
	cases := [][]byte{
		[]byte(`{"battery": 50}`),
		[]byte(`{"deviceId": "", "battery": 50}`),
		[]byte(`{"deviceId": 42, "battery": 50}`),
		[]byte(`{"end_device_ids": {}, "uplink_message": {"decoded_payload": {"battery": 50}}}`),
	}
	for _, payload := range cases {
		_, err := ParseEvent(payload)
		var verr *agbmodels.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("payload %s: expected ValidationError, got %v", payload, err)
		}
	}
}

func TestParseEventInvalidJSON(t *testing.T) {
	_, err := ParseEvent([]byte(`not json`))
	var verr *agbmodels.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestParseEventPresenceGating(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"deviceId":"kit-002","battery":30}`))
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	if ev.Battery == nil {
		t.Fatalf("expected battery present")
	}
	if ev.WaterLevel != nil || ev.Voltage != nil || ev.Current != nil ||
		ev.Temperature != nil || ev.Humidity != nil || ev.PumpStatus != nil {
		t.Fatalf("absent fields must stay nil: %+v", ev)
	}
}

func TestParseEventPumpStatusNormalization(t *testing.T) {
	cases := []struct {
		payload string
		want    bool
	}{
		{`{"deviceId":"k","pumpStatus":true}`, true},
		{`{"deviceId":"k","pumpStatus":"ON"}`, true},
		{`{"deviceId":"k","pumpStatus":false}`, false},
		{`{"deviceId":"k","pumpStatus":"OFF"}`, false},
		{`{"deviceId":"k","pumpStatus":"on"}`, false},
		{`{"deviceId":"k","pumpStatus":1}`, false},
	}
	for _, tc := range cases {
		ev, err := ParseEvent([]byte(tc.payload))
		if err != nil {
			t.Fatalf("payload %s: %v", tc.payload, err)
		}
		if ev.PumpStatus == nil || *ev.PumpStatus != tc.want {
			t.Fatalf("payload %s: expected pumpStatus %v, got %v", tc.payload, tc.want, ev.PumpStatus)
		}
	}
}

func TestEventPatchExcludesReadingsOnlyFields(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"deviceId":"k","temperature":25,"humidity":60}`))
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	patch := ev.Patch()
	if !patch.IsZero() {
		t.Fatalf("temperature and humidity must not patch the kit: %+v", patch)
	}
}
