package agbmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification categories.
const (
	CategoryInfo    = "info"
	CategorySuccess = "success"
	CategoryWarning = "warning"
	CategoryAlert   = "alert"
	CategoryError   = "error"
)

// Notification is an append-only alert/event record for one user.
// The only mutation ever applied is the isRead flag.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	KitID       primitive.ObjectID `bson:"kitId,omitempty" json:"kitId,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Message     string             `bson:"message" json:"message"`
	Category    string             `bson:"category" json:"category"`
	IsRead      bool               `bson:"isRead" json:"isRead"`
	ActionLabel string             `bson:"actionLabel,omitempty" json:"actionLabel,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}
