package telemetry

import (
	"context"
	"time"

	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	metrics "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Metrics"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
	interfaces "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Repository/Interfaces"
)

// IngestResult summarizes one accepted ingestion event.
type IngestResult struct {
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// IngestService is the single ingestion use case. Both transport
// adapters (MQTT subscriber and direct HTTP endpoint) call Ingest with a
// normalized Event and nothing else, so identical input yields identical
// kit state, readings and notifications regardless of how it arrived.
type IngestService struct {
	kits          interfaces.KitRepository
	sensorData    interfaces.SensorDataRepository
	notifications interfaces.NotificationRepository
	log           *logger.Logger
}

func NewIngestService(kits interfaces.KitRepository, sensorData interfaces.SensorDataRepository, notifications interfaces.NotificationRepository, log *logger.Logger) *IngestService {
	return &IngestService{
		kits:          kits,
		sensorData:    sensorData,
		notifications: notifications,
		log:           log.WithComponent("ingest"),
	}
}

// Ingest processes one event as a single logical unit of work: resolve
// the kit, append one reading per present field (all sharing one
// timestamp), patch only the fields present, then evaluate thresholds
// against this event's fields. An unknown device aborts before any store
// mutation. Failures surface once to the caller; they never affect other
// in-flight events.
func (s *IngestService) Ingest(ctx context.Context, ev *Event) (*IngestResult, error) {
	kit, err := s.kits.FindByDeviceID(ctx, ev.DeviceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entries := buildReadings(kit, ev, now)

	if len(entries) > 0 {
		if err := s.sensorData.InsertMany(ctx, entries); err != nil {
			return nil, err
		}
	}

	if err := s.kits.ApplyPatch(ctx, kit.ID, ev.Patch(), now); err != nil {
		return nil, err
	}

	for _, alert := range EvaluateEvent(kit, ev, now) {
		if err := s.notifications.Insert(ctx, alert); err != nil {
			return nil, err
		}
		s.log.WithField("device_id", ev.DeviceID).Warn(alert.Title)
	}

	metrics.ReadingsStored.Add(float64(len(entries)))

	return &IngestResult{Count: len(entries), Timestamp: now}, nil
}

// buildReadings maps the fields present in an event to reading entries.
// pumpStatus patches the kit but never becomes a reading.
func buildReadings(kit *agbmodels.Kit, ev *Event, ts time.Time) []agbmodels.SensorData {
	entry := func(readingType string, value float64, unit string) agbmodels.SensorData {
		return agbmodels.SensorData{
			KitID:     kit.ID,
			DeviceID:  ev.DeviceID,
			Timestamp: ts,
			Type:      readingType,
			Value:     value,
			Unit:      unit,
		}
	}

	entries := make([]agbmodels.SensorData, 0, 6)
	if ev.Battery != nil {
		entries = append(entries, entry(agbmodels.ReadingBattery, *ev.Battery, "%"))
	}
	if ev.WaterLevel != nil {
		entries = append(entries, entry(agbmodels.ReadingWaterLevel, *ev.WaterLevel, "%"))
	}
	if ev.Voltage != nil {
		entries = append(entries, entry(agbmodels.ReadingVoltage, *ev.Voltage, "V"))
	}
	if ev.Current != nil {
		entries = append(entries, entry(agbmodels.ReadingCurrent, *ev.Current, "A"))
	}
	if ev.Temperature != nil {
		entries = append(entries, entry(agbmodels.ReadingTemp, *ev.Temperature, "°C"))
	}
	if ev.Humidity != nil {
		entries = append(entries, entry(agbmodels.ReadingHumidity, *ev.Humidity, "%"))
	}
	return entries
}
