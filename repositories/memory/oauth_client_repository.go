// Package memory provides an in-process OAuth client store, seeded from the
// pipeline file when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/EcoFlowJS/ecoflow-authentication/models"
	"github.com/EcoFlowJS/ecoflow-authentication/repositories"
	"github.com/EcoFlowJS/ecoflow-authentication/utils"
)

// OAuthClientRepository implements repositories.OAuthClientRepository in memory
type OAuthClientRepository struct {
	mu      sync.RWMutex
	clients map[string]models.OAuthClient
}

// NewOAuthClientRepository creates a store holding the given clients
func NewOAuthClientRepository(clients ...*models.OAuthClient) (*OAuthClientRepository, error) {
	r := &OAuthClientRepository{clients: make(map[string]models.OAuthClient, len(clients))}
	for _, c := range clients {
		if err := r.Upsert(context.Background(), c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// GetByName retrieves a client by name. A copy is returned.
func (r *OAuthClientRepository) GetByName(_ context.Context, name string) (*models.OAuthClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrClientNotFound, name)
	}
	return &client, nil
}

// List returns all clients ordered by name
func (r *OAuthClientRepository) List(_ context.Context) ([]*models.OAuthClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*models.OAuthClient, 0, len(r.clients))
	for _, c := range r.clients {
		c := c
		clients = append(clients, &c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

// Upsert validates and stores a client
func (r *OAuthClientRepository) Upsert(_ context.Context, client *models.OAuthClient) error {
	if client == nil {
		return fmt.Errorf("oauth client is required")
	}
	if err := utils.ValidateStruct(client); err != nil {
		return fmt.Errorf("invalid oauth client %q: %w", client.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.Name] = *client
	return nil
}

// Delete removes a client
func (r *OAuthClientRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[name]; !ok {
		return fmt.Errorf("%w: %s", repositories.ErrClientNotFound, name)
	}
	delete(r.clients, name)
	return nil
}
