package repositories

import (
	"context"
	"errors"

	"github.com/EcoFlowJS/ecoflow-authentication/models"
)

// ErrClientNotFound is returned when no OAuth client is registered under a name
var ErrClientNotFound = errors.New("oauth client not found")

// OAuthClientRepository is the host configuration manager for named OAuth clients.
// The plugin only reads from it; writes are for host tooling and seeding.
type OAuthClientRepository interface {
	// GetByName retrieves a client by its registered name
	GetByName(ctx context.Context, name string) (*models.OAuthClient, error)

	// List returns all registered clients ordered by name
	List(ctx context.Context) ([]*models.OAuthClient, error)

	// Upsert creates or replaces a client registration
	Upsert(ctx context.Context, client *models.OAuthClient) error

	// Delete removes a client registration
	Delete(ctx context.Context, name string) error
}
