package telemetry

import (
	"encoding/json"
	"fmt"
	"strconv"

	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

// Event is the canonical form of one telemetry payload. Pointer fields
// are nil when the wire payload did not carry them; presence, not value,
// decides what gets stored and what gets checked.
type Event struct {
	DeviceID    string
	Battery     *float64
	WaterLevel  *float64
	Voltage     *float64
	Current     *float64
	Temperature *float64
	Humidity    *float64
	PumpStatus  *bool
}

// ParseEvent decodes a raw JSON payload into an Event. Two wire shapes
// are accepted: the flat sensor shape, and a LoRaWAN gateway uplink
// envelope, which is spliced into the flat shape and then follows the
// identical path. A payload that cannot name its device is rejected
// before anything is persisted.
func ParseEvent(payload []byte) (*Event, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &agbmodels.ValidationError{Msg: fmt.Sprintf("invalid telemetry payload: %v", err)}
	}

	raw = unwrapUplink(raw)

	deviceID, _ := raw["deviceId"].(string)
	if deviceID == "" {
		return nil, &agbmodels.ValidationError{Msg: "deviceId is required"}
	}

	ev := &Event{
		DeviceID:    deviceID,
		Battery:     numberField(raw, "battery"),
		WaterLevel:  numberField(raw, "waterLevel"),
		Voltage:     numberField(raw, "voltage"),
		Current:     numberField(raw, "current"),
		Temperature: numberField(raw, "temperature"),
		Humidity:    numberField(raw, "humidity"),
	}

	if v, present := raw["pumpStatus"]; present {
		on := v == true || v == "ON"
		ev.PumpStatus = &on
	}

	return ev, nil
}

// Patch returns the kit fields this event overwrites. Temperature and
// humidity become readings only and never touch the kit aggregate.
func (ev *Event) Patch() agbmodels.KitPatch {
	return agbmodels.KitPatch{
		BatteryLevel: ev.Battery,
		WaterLevel:   ev.WaterLevel,
		Voltage:      ev.Voltage,
		Current:      ev.Current,
		PumpStatus:   ev.PumpStatus,
	}
}

// unwrapUplink flattens a gateway uplink envelope: device_id moves to
// deviceId and the decoded payload fields are spliced in. Anything else
// passes through untouched.
func unwrapUplink(raw map[string]interface{}) map[string]interface{} {
	ids, ok := raw["end_device_ids"].(map[string]interface{})
	if !ok {
		return raw
	}
	uplink, ok := raw["uplink_message"].(map[string]interface{})
	if !ok {
		return raw
	}

	flat := make(map[string]interface{})
	if id, ok := ids["device_id"].(string); ok {
		flat["deviceId"] = id
	}
	if decoded, ok := uplink["decoded_payload"].(map[string]interface{}); ok {
		for k, v := range decoded {
			flat[k] = v
		}
	}
	return flat
}

// numberField reports a field's value when the payload carries it at all.
// Presence gates inclusion; values the device encoded oddly are coerced
// best-effort, falling back to zero.
func numberField(raw map[string]interface{}, key string) *float64 {
	v, present := raw[key]
	if !present {
		return nil
	}
	f := coerceNumber(v)
	return &f
}

func coerceNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	case bool:
		if n {
			return 1
		}
	}
	return 0
}
