package memory

import (
	"context"
	"testing"

	"github.com/EcoFlowJS/ecoflow-authentication/models"
	"github.com/EcoFlowJS/ecoflow-authentication/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthClientRepository(t *testing.T) {
	ctx := context.Background()
	web := models.NewOAuthClient("web", "web-id", "web-secret", "https://app.example.com/callback")
	cli := models.NewOAuthClient("cli", "cli-id", "cli-secret", "http://localhost:8085/callback")

	repo, err := NewOAuthClientRepository(web, cli)
	require.NoError(t, err)

	t.Run("get by name", func(t *testing.T) {
		got, err := repo.GetByName(ctx, "web")
		require.NoError(t, err)
		assert.Equal(t, "web-id", got.ClientID)

		// Returned value is a copy
		got.ClientID = "changed"
		again, err := repo.GetByName(ctx, "web")
		require.NoError(t, err)
		assert.Equal(t, "web-id", again.ClientID)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := repo.GetByName(ctx, "mobile")
		assert.ErrorIs(t, err, repositories.ErrClientNotFound)
	})

	t.Run("list is ordered", func(t *testing.T) {
		clients, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, clients, 2)
		assert.Equal(t, "cli", clients[0].Name)
		assert.Equal(t, "web", clients[1].Name)
	})

	t.Run("invalid client rejected", func(t *testing.T) {
		err := repo.Upsert(ctx, &models.OAuthClient{Name: "broken", ClientID: "id"})
		assert.Error(t, err)

		err = repo.Upsert(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "cli"))
		assert.ErrorIs(t, repo.Delete(ctx, "cli"), repositories.ErrClientNotFound)
	})
}
