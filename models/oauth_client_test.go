package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOAuthClient(t *testing.T) {
	client := NewOAuthClient(" web ", "id", "secret", "https://app.example.com/callback")

	assert.Equal(t, "web", client.Name)
	assert.Equal(t, "id", client.ClientID)
	assert.False(t, client.CreatedAt.IsZero())
	assert.Equal(t, client.CreatedAt, client.UpdatedAt)
	assert.False(t, client.IsEmpty())
}

func TestOAuthClient_TableName(t *testing.T) {
	assert.Equal(t, "oauth_clients", OAuthClient{}.TableName())
}

func TestOAuthClient_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		client *OAuthClient
		want   bool
	}{
		{"nil", nil, true},
		{"zero", &OAuthClient{}, true},
		{"missing secret", &OAuthClient{ClientID: "id", RedirectURI: "https://x"}, true},
		{"complete", &OAuthClient{ClientID: "id", ClientSecret: "s", RedirectURI: "https://x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.client.IsEmpty())
		})
	}
}

func TestOAuthClient_JSONHidesSecret(t *testing.T) {
	data, err := json.Marshal(NewOAuthClient("web", "id", "secret", "https://x"))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret\"")
	assert.Contains(t, string(data), `"client_id":"id"`)
}
