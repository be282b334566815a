package controllers

import (
	"context"
	"net/http"

	"github.com/EcoFlowJS/ecoflow-authentication/jwks"
	"github.com/EcoFlowJS/ecoflow-authentication/keys"
	"github.com/EcoFlowJS/ecoflow-authentication/manifest"
	"github.com/EcoFlowJS/ecoflow-authentication/pipeline"
	"github.com/EcoFlowJS/ecoflow-authentication/services"
	"go.uber.org/zap"
)

// PublishJWKS converts the configured PEM public key into a single-key JWKS
func (h *Controllers) PublishJWKS(_ context.Context, c *pipeline.Context) (pipeline.Outcome, error) {
	in := c.Inputs
	responseKey := in.Or("responseKey", "jwks")
	logger := h.log(c, manifest.ControllerJWKSPublish)

	pemText, found, err := keys.ReadPublicKeyFile(in.Ref("publicKey", "publicKeyFromEnv"))
	if err != nil {
		logger.Error("failed to read public key", zap.Error(err))
		return c.Fail(responseKey, http.StatusInternalServerError, services.ErrInternal.Message)
	}
	if !found {
		return c.Fail(responseKey, http.StatusNotFound, services.ErrKeyNotFound.Message)
	}

	set, err := jwks.PublicKeyToJWKS(pemText)
	if err != nil {
		logger.Error("failed to convert public key", zap.Error(err))
		return c.Fail(responseKey, http.StatusInternalServerError, services.ErrInternal.Message)
	}

	return c.Succeed(responseKey, set.Map())
}
