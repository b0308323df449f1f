package telemetry

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	logger "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Logger"
	metrics "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Metrics"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
	interfaces "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Repository/Interfaces"
)

// PumpService validates and dispatches manual pump commands.
type PumpService struct {
	kits          interfaces.KitRepository
	notifications interfaces.NotificationRepository
	publisher     CommandPublisher
	log           *logger.Logger
}

func NewPumpService(kits interfaces.KitRepository, notifications interfaces.NotificationRepository, publisher CommandPublisher, log *logger.Logger) *PumpService {
	return &PumpService{
		kits:          kits,
		notifications: notifications,
		publisher:     publisher,
		log:           log.WithComponent("pump"),
	}
}

// Control handles one manual pump request for a kit owned by the caller.
// A pump-ON request is gated on the current stored battery and water
// levels; on breach the alert is still recorded, the state is untouched
// and a ThresholdRejection comes back. Otherwise the new status is
// persisted, a success notification recorded, and the command published
// to the device fire-and-forget.
func (s *PumpService) Control(ctx context.Context, userID, kitID primitive.ObjectID, status bool) (*agbmodels.Kit, error) {
	kit, err := s.kits.FindByIDForUser(ctx, kitID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if status {
		alert, gateErr := GateManualStart(kit, now)
		if gateErr != nil {
			if alert != nil {
				if err := s.notifications.Insert(ctx, *alert); err != nil {
					s.log.ErrorWithError(err, "failed to record rejection alert")
				}
			}
			return nil, gateErr
		}
	}

	if err := s.kits.ApplyPatch(ctx, kit.ID, agbmodels.KitPatch{PumpStatus: &status}, now); err != nil {
		return nil, err
	}
	kit.PumpStatus = status
	kit.UpdatedAt = now

	title, message, command := "Pump deactivated", "The pump was deactivated manually", "OFF"
	if status {
		title, message, command = "Pump activated", "The pump was activated manually", "ON"
	}
	notif := agbmodels.Notification{
		UserID:    userID,
		KitID:     kit.ID,
		Title:     title,
		Message:   message,
		Category:  agbmodels.CategorySuccess,
		Timestamp: now,
	}
	if err := s.notifications.Insert(ctx, notif); err != nil {
		return nil, err
	}

	// Detached from the request/response cycle: outcome goes to the log
	// sink only and never rolls back the already-committed state.
	s.publisher.PublishPumpCommand(kit.DeviceID, status)
	metrics.PumpCommands.WithLabelValues(command).Inc()

	return kit, nil
}
