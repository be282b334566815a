package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/EcoFlowJS/ecoflow-authentication/keys"
	"github.com/EcoFlowJS/ecoflow-authentication/manifest"
	"github.com/EcoFlowJS/ecoflow-authentication/middleware"
	"github.com/EcoFlowJS/ecoflow-authentication/pipeline"
	"github.com/EcoFlowJS/ecoflow-authentication/services"
	"github.com/EcoFlowJS/ecoflow-authentication/token"
	"go.uber.org/zap"
)

const keyTypePublicKey = "publicKey"

// Sign signs payload[payloadKey] and writes the token at responseKey.
// Configuration and signing failures are returned to the host.
func (h *Controllers) Sign(_ context.Context, c *pipeline.Context) (pipeline.Outcome, error) {
	in := c.Inputs
	responseKey := in.Or("responseKey", "token")

	alg, err := keys.ParseAlgorithm(in.Or("algorithm", keys.HS256.String()))
	if err != nil {
		c.SetStatus(http.StatusBadRequest)
		return pipeline.Halt, services.ErrInvalidStepInput.Wrap(err)
	}

	expiresIn, err := token.ExpiryOf(in["expiresIn"])
	if err != nil {
		c.SetStatus(http.StatusBadRequest)
		return pipeline.Halt, services.ErrInvalidStepInput.Wrap(err)
	}

	material, err := h.resolver.Resolve(alg, in.Ref("secret", "secretFromEnv"))
	if err != nil {
		return pipeline.Halt, services.WrapInternal("resolve signing key", err)
	}

	signed, err := h.signer.Sign(claimsAt(c.Payload, in.Or("payloadKey", "tokenPayload")), material, expiresIn)
	if err != nil {
		return pipeline.Halt, services.WrapInternal("sign token", err)
	}

	h.log(c, manifest.ControllerJWTSign).Debug("token signed",
		zap.String("algorithm", material.Algorithm.String()),
		zap.Bool("downgraded", material.Downgraded),
	)
	return c.Succeed(responseKey, signed)
}

// Verify checks the request's bearer token and writes its claims at
// responseKey. Any failure halts with 401.
func (h *Controllers) Verify(ctx context.Context, c *pipeline.Context) (pipeline.Outcome, error) {
	in := c.Inputs
	responseKey := in.Or("responseKey", "user")
	logger := h.log(c, manifest.ControllerJWTVerify)

	// Idle: the request must carry a bearer token
	raw := middleware.ExtractBearerToken(c.Header("Authorization"))
	if raw == "" {
		return c.Fail(responseKey, http.StatusUnauthorized, services.ErrInvalidAuthorization.Message)
	}

	alg, err := keys.ParseAlgorithm(in.Or("algorithm", keys.HS256.String()))
	if err != nil {
		return c.Fail(responseKey, http.StatusUnauthorized, err.Error())
	}

	// Resolving key
	var source token.KeySource
	if in.Or("keyType", "secret") == keyTypePublicKey {
		if provider, ok := h.fetcher.KeyProvider(in.Value("jwksUri", "jwksUriFromEnv")); ok {
			source = provider
		}
	} else {
		source = token.StaticKey{
			Key:       []byte(in.Value("secret", "secretFromEnv")),
			Algorithm: alg,
		}
	}

	// Verifying
	claims, err := h.verifier.Verify(ctx, raw, alg, source)
	if err != nil {
		logger.Debug("token rejected", zap.Error(err))
		return c.Fail(responseKey, http.StatusUnauthorized, verifyMessage(err))
	}

	return c.Succeed(responseKey, claims)
}

// claimsAt returns payload[key] when it is an object, or an empty one
func claimsAt(payload pipeline.Payload, key string) map[string]any {
	switch v := payload[key].(type) {
	case map[string]any:
		return v
	case pipeline.Payload:
		return v
	default:
		return map[string]any{}
	}
}

func verifyMessage(err error) string {
	switch {
	case errors.Is(err, token.ErrMissingKey):
		return token.ErrMissingKey.Error()
	case errors.Is(err, token.ErrTokenExpired):
		return "jwt expired"
	default:
		return err.Error()
	}
}
