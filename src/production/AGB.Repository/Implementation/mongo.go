package implementation

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	config "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Config"
)

// Collection names.
const (
	KitsCollection          = "kits"
	SensorDataCollection    = "sensor_data"
	NotificationsCollection = "notifications"
	UsersCollection         = "users"
)

// Connect creates a MongoDB client and verifies the connection with a ping.
func Connect(cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	clientOptions.SetServerSelectionTimeout(cfg.ConnectTimeout)
	clientOptions.SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("unable to ping MongoDB: %v", err)
	}

	return client, nil
}

// Per-operation timeouts: one-shot reads/writes get 3s, bulk writes 10s.
const (
	singleOpTimeout = 3 * time.Second
	bulkOpTimeout   = 10 * time.Second
)
