package agbmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account owning one or more kits.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Username     string               `bson:"username" json:"username"`
	PasswordHash string               `bson:"passwordHash" json:"-"`
	Kits         []primitive.ObjectID `bson:"kits" json:"kits"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
}
