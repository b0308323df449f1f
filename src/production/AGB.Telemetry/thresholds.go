package telemetry

import (
	"fmt"
	"time"

	metrics "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Metrics"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

// Safety thresholds. The pump must not start below either bound.
const (
	BatteryMinThreshold = 20.0
	WaterMinThreshold   = 10.0
)

// EvaluateEvent applies the two threshold checks to the fields present in
// one event. Evaluation is edge-triggered per event: a field absent from
// the event is not checked, and a persisting breach fires an identical
// alert again on every event that re-reports it. There is no suppression,
// hysteresis or deduplication window.
func EvaluateEvent(kit *agbmodels.Kit, ev *Event, ts time.Time) []agbmodels.Notification {
	alerts := make([]agbmodels.Notification, 0, 2)
	if ev.Battery != nil && *ev.Battery < BatteryMinThreshold {
		alerts = append(alerts, lowBatteryAlert(kit, *ev.Battery, ts))
	}
	if ev.WaterLevel != nil && *ev.WaterLevel < WaterMinThreshold {
		alerts = append(alerts, criticalWaterAlert(kit, *ev.WaterLevel, ts))
	}
	return alerts
}

// GateManualStart applies the same checks to the current stored kit state
// before a manual pump-ON command is admitted. On breach it returns the
// alert to record alongside a ThresholdRejection; the rejected attempt is
// itself observable.
func GateManualStart(kit *agbmodels.Kit, ts time.Time) (*agbmodels.Notification, error) {
	if kit.BatteryLevel < BatteryMinThreshold {
		n := lowBatteryAlert(kit, kit.BatteryLevel, ts)
		return &n, &agbmodels.ThresholdRejection{
			Msg: fmt.Sprintf("cannot start pump: battery at %g%% (minimum %g%%)", kit.BatteryLevel, BatteryMinThreshold),
		}
	}
	if kit.WaterLevel < WaterMinThreshold {
		n := criticalWaterAlert(kit, kit.WaterLevel, ts)
		return &n, &agbmodels.ThresholdRejection{
			Msg: fmt.Sprintf("do not run the pump dry: water level at %g%% (minimum %g%%)", kit.WaterLevel, WaterMinThreshold),
		}
	}
	return nil, nil
}

func lowBatteryAlert(kit *agbmodels.Kit, value float64, ts time.Time) agbmodels.Notification {
	metrics.ThresholdAlerts.WithLabelValues("battery").Inc()
	return agbmodels.Notification{
		UserID:    kit.UserID,
		KitID:     kit.ID,
		Title:     "Low battery",
		Message:   fmt.Sprintf("Battery of kit %s at %g%% (minimum %g%%)", kit.DeviceID, value, BatteryMinThreshold),
		Category:  agbmodels.CategoryAlert,
		Timestamp: ts,
	}
}

func criticalWaterAlert(kit *agbmodels.Kit, value float64, ts time.Time) agbmodels.Notification {
	metrics.ThresholdAlerts.WithLabelValues("water_level").Inc()
	return agbmodels.Notification{
		UserID:    kit.UserID,
		KitID:     kit.ID,
		Title:     "Critical water level",
		Message:   fmt.Sprintf("Do not run the pump dry: water level of kit %s at %g%% (minimum %g%%)", kit.DeviceID, value, WaterMinThreshold),
		Category:  agbmodels.CategoryAlert,
		Timestamp: ts,
	}
}
