package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

// NotificationRepository is the append-only alert/event log. The only
// supported mutation is marking a notification read.
type NotificationRepository interface {
	// Insert appends one notification.
	Insert(ctx context.Context, n agbmodels.Notification) error

	// ListByUser returns all notifications for an owner, newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]agbmodels.Notification, error)

	// MarkRead sets isRead on a notification owned by the given user and
	// returns the updated document. Marking an already-read notification
	// succeeds without altering anything else.
	MarkRead(ctx context.Context, userID, notifID primitive.ObjectID) (*agbmodels.Notification, error)
}
