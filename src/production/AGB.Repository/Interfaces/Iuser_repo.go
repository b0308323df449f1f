package interfaces

import (
	"context"

	agbmodels "gitlab.com/agroboost1/agb.telemetry_server/src/production/AGB.Models"
)

// UserRepository stores user accounts.
type UserRepository interface {
	// Create inserts a new user and returns it with the generated id.
	Create(ctx context.Context, u agbmodels.User) (*agbmodels.User, error)

	// FindByUsername resolves a user by username.
	FindByUsername(ctx context.Context, username string) (*agbmodels.User, error)
}
