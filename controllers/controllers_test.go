package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EcoFlowJS/ecoflow-authentication/jwks"
	"github.com/EcoFlowJS/ecoflow-authentication/keys"
	"github.com/EcoFlowJS/ecoflow-authentication/manifest"
	"github.com/EcoFlowJS/ecoflow-authentication/models"
	"github.com/EcoFlowJS/ecoflow-authentication/oauth"
	"github.com/EcoFlowJS/ecoflow-authentication/pipeline"
	"github.com/EcoFlowJS/ecoflow-authentication/repositories"
	"github.com/EcoFlowJS/ecoflow-authentication/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSalt = "fallback-salt"

// MockProvider is a mock implementation of oauth.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) AuthCodeURL(creds oauth.Credentials, opts oauth.AuthURLOptions) string {
	args := m.Called(creds, opts)
	return args.String(0)
}

func (m *MockProvider) Exchange(ctx context.Context, creds oauth.Credentials, code string) (*oauth.Tokens, error) {
	args := m.Called(ctx, creds, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.Tokens), args.Error(1)
}

func (m *MockProvider) UserInfo(ctx context.Context, creds oauth.Credentials, tokens *oauth.Tokens) (map[string]any, error) {
	args := m.Called(ctx, creds, tokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func newTestControllers(t *testing.T, provider oauth.Provider, clients repositories.OAuthClientRepository) *Controllers {
	t.Helper()
	return New(Dependencies{
		Resolver: keys.NewResolver(testSalt, zap.NewNop()),
		Fetcher:  jwks.NewFetcher(jwks.Config{}, zap.NewNop()),
		Provider: provider,
		Clients:  clients,
		Logger:   zap.NewNop(),
	})
}

func newTestClients(t *testing.T) repositories.OAuthClientRepository {
	t.Helper()
	repo, err := memory.NewOAuthClientRepository(
		models.NewOAuthClient("web", "web-id", "web-secret", "https://app.example.com/callback"),
	)
	require.NoError(t, err)
	return repo
}

// run invokes one controller with inputs and an optional request
func run(t *testing.T, fn pipeline.ControllerFunc, inputs pipeline.Inputs, payload pipeline.Payload, r *http.Request) (*pipeline.Context, pipeline.Outcome, error) {
	t.Helper()
	if r == nil {
		r = httptest.NewRequest(http.MethodGet, "/", nil)
	}
	c := pipeline.NewContext("test", payload, r)
	c.Inputs = inputs
	outcome, err := fn(context.Background(), c)
	return c, outcome, err
}

func TestRegister(t *testing.T) {
	registry := pipeline.NewRegistry()
	h := newTestControllers(t, new(MockProvider), nil)

	require.NoError(t, h.Register(registry))
	assert.ElementsMatch(t, manifest.Default().Controllers(), registry.IDs())

	// Registering twice collides
	assert.ErrorIs(t, h.Register(registry), pipeline.ErrDuplicateController)
}

func TestPipeline_MissingAuthorizationNeverContinues(t *testing.T) {
	registry := pipeline.NewRegistry()
	h := newTestControllers(t, new(MockProvider), nil)
	require.NoError(t, h.Register(registry))

	called := false
	require.NoError(t, registry.Register("next", func(context.Context, *pipeline.Context) (pipeline.Outcome, error) {
		called = true
		return pipeline.Continue, nil
	}))

	def := &pipeline.Definition{Name: "protected", Path: "/protected", Steps: []pipeline.Step{
		{Name: "verify", Controller: manifest.ControllerJWTVerify, Inputs: map[string]any{"secret": "s3cr3t"}},
		{Name: "next", Controller: "next"},
	}}

	c := pipeline.NewContext("", nil, httptest.NewRequest(http.MethodGet, "/protected", nil))
	result, err := pipeline.NewRunner(registry, zap.NewNop()).Run(context.Background(), def, c)
	require.NoError(t, err)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, result.Status)
	assert.Equal(t, "Invalid authorization", c.Payload["user"])
}
