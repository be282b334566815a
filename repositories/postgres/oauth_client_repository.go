package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/EcoFlowJS/ecoflow-authentication/models"
	"github.com/EcoFlowJS/ecoflow-authentication/repositories"
	"github.com/EcoFlowJS/ecoflow-authentication/utils"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// OAuthClientRepository implements repositories.OAuthClientRepository on PostgreSQL
type OAuthClientRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOAuthClientRepository creates a new OAuth client repository
func NewOAuthClientRepository(db *DB, logger *zap.Logger) *OAuthClientRepository {
	return &OAuthClientRepository{
		db:     db,
		logger: logger,
	}
}

// GetByName retrieves a client by name
func (r *OAuthClientRepository) GetByName(ctx context.Context, name string) (*models.OAuthClient, error) {
	query := `
		SELECT name, client_id, client_secret, redirect_uri, scopes, created_at, updated_at
		FROM oauth_clients
		WHERE name = $1
	`

	executor := executorFor(ctx, r.db)
	client := &models.OAuthClient{}

	err := executor.QueryRowContext(ctx, query, name).Scan(
		&client.Name,
		&client.ClientID,
		&client.ClientSecret,
		&client.RedirectURI,
		pq.Array(&client.Scopes),
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", repositories.ErrClientNotFound, name)
		}
		return nil, fmt.Errorf("failed to get oauth client: %w", err)
	}

	return client, nil
}

// List returns all clients ordered by name
func (r *OAuthClientRepository) List(ctx context.Context) ([]*models.OAuthClient, error) {
	query := `
		SELECT name, client_id, client_secret, redirect_uri, scopes, created_at, updated_at
		FROM oauth_clients
		ORDER BY name
	`

	executor := executorFor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list oauth clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.OAuthClient
	for rows.Next() {
		client := &models.OAuthClient{}
		if err := rows.Scan(
			&client.Name,
			&client.ClientID,
			&client.ClientSecret,
			&client.RedirectURI,
			pq.Array(&client.Scopes),
			&client.CreatedAt,
			&client.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan oauth client: %w", err)
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating oauth clients: %w", err)
	}

	return clients, nil
}

// Upsert creates or replaces a client
func (r *OAuthClientRepository) Upsert(ctx context.Context, client *models.OAuthClient) error {
	if client == nil {
		return fmt.Errorf("oauth client is required")
	}
	if err := utils.ValidateStruct(client); err != nil {
		return fmt.Errorf("invalid oauth client %q: %w", client.Name, err)
	}

	query := `
		INSERT INTO oauth_clients (name, client_id, client_secret, redirect_uri, scopes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			redirect_uri = EXCLUDED.redirect_uri,
			scopes = EXCLUDED.scopes,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now

	executor := executorFor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		client.Name,
		client.ClientID,
		client.ClientSecret,
		client.RedirectURI,
		pq.Array(client.Scopes),
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert oauth client: %w", err)
	}

	r.logger.Debug("oauth client stored", zap.String("name", client.Name))
	return nil
}

// Delete removes a client
func (r *OAuthClientRepository) Delete(ctx context.Context, name string) error {
	executor := executorFor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM oauth_clients WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete oauth client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", repositories.ErrClientNotFound, name)
	}

	return nil
}
