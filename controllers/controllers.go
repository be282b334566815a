// Package controllers implements the plugin's pipeline steps.
package controllers

import (
	"fmt"

	"github.com/EcoFlowJS/ecoflow-authentication/jwks"
	"github.com/EcoFlowJS/ecoflow-authentication/keys"
	"github.com/EcoFlowJS/ecoflow-authentication/manifest"
	"github.com/EcoFlowJS/ecoflow-authentication/oauth"
	"github.com/EcoFlowJS/ecoflow-authentication/pipeline"
	"github.com/EcoFlowJS/ecoflow-authentication/repositories"
	"github.com/EcoFlowJS/ecoflow-authentication/services"
	"github.com/EcoFlowJS/ecoflow-authentication/token"
	"go.uber.org/zap"
)

// Dependencies are the collaborators shared by every controller
type Dependencies struct {
	Resolver *keys.Resolver
	Fetcher  *jwks.Fetcher
	Provider oauth.Provider
	Clients  repositories.OAuthClientRepository
	Logger   *zap.Logger
}

// Controllers holds the step implementations
type Controllers struct {
	resolver *keys.Resolver
	signer   *token.Signer
	verifier *token.Verifier
	fetcher  *jwks.Fetcher
	provider oauth.Provider
	clients  repositories.OAuthClientRepository
	logger   *zap.Logger
}

// New creates the controllers
func New(deps Dependencies) *Controllers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controllers{
		resolver: deps.Resolver,
		signer:   token.NewSigner(),
		verifier: token.NewVerifier(),
		fetcher:  deps.Fetcher,
		provider: deps.Provider,
		clients:  deps.Clients,
		logger:   logger,
	}
}

// Register binds every manifest controller identifier in registry
func (h *Controllers) Register(registry *pipeline.Registry) error {
	bindings := map[string]pipeline.ControllerFunc{
		manifest.ControllerJWTSign:            h.Sign,
		manifest.ControllerJWTVerify:          h.Verify,
		manifest.ControllerJWKSPublish:        h.PublishJWKS,
		manifest.ControllerGoogleAuthURL:      h.GoogleAuthURL,
		manifest.ControllerGoogleCodeExchange: h.GoogleCodeExchange,
		manifest.ControllerGoogleUserDetails:  h.GoogleUserDetails,
		manifest.ControllerGoogleAuthenticate: h.GoogleAuthenticate,
	}

	for _, id := range manifest.Default().Controllers() {
		fn, ok := bindings[id]
		if !ok {
			return fmt.Errorf("no implementation for controller %s", id)
		}
		if err := registry.Register(id, fn); err != nil {
			return err
		}
	}
	return nil
}

// fail writes the structured form of err at key and halts with its status
func fail(c *pipeline.Context, key string, err *services.DomainError) (pipeline.Outcome, error) {
	return c.Fail(key, err.StatusCode(), err.Payload())
}

func (h *Controllers) log(c *pipeline.Context, step string) *zap.Logger {
	return h.logger.With(
		zap.String("request_id", c.ID),
		zap.String("controller", step),
	)
}
