package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/EcoFlowJS/ecoflow-authentication/manifest"
	"github.com/EcoFlowJS/ecoflow-authentication/models"
	"github.com/EcoFlowJS/ecoflow-authentication/oauth"
	"github.com/EcoFlowJS/ecoflow-authentication/pipeline"
	"github.com/EcoFlowJS/ecoflow-authentication/repositories"
	"github.com/EcoFlowJS/ecoflow-authentication/services"
	"go.uber.org/zap"
)

// GoogleAuthURL builds the consent page URL from inline client credentials
func (h *Controllers) GoogleAuthURL(_ context.Context, c *pipeline.Context) (pipeline.Outcome, error) {
	responseKey := c.Inputs.Or("responseKey", "authUrl")

	creds, opts, derr := authRequest(c.Inputs)
	if derr != nil {
		return fail(c, responseKey, derr)
	}

	return c.Succeed(responseKey, h.provider.AuthCodeURL(creds, opts))
}

// GoogleCodeExchange trades an authorization code for tokens using a
// registered client
func (h *Controllers) GoogleCodeExchange(ctx context.Context, c *pipeline.Context) (pipeline.Outcome, error) {
	in := c.Inputs
	responseKey := in.Or("responseKey", "tokens")
	logger := h.log(c, manifest.ControllerGoogleCodeExchange)

	client, derr := h.lookupClient(ctx, in.String("client"), logger)
	if derr != nil {
		return fail(c, responseKey, derr)
	}

	code := stringAt(c.Payload, in.Or("codeKey", "code"))
	if code == "" {
		code = c.Query("code")
	}
	if code == "" {
		return fail(c, responseKey, services.ErrMissingCode)
	}

	tokens, err := h.provider.Exchange(ctx, credentialsOf(client), code)
	if err != nil {
		logger.Warn("code exchange failed", zap.String("client", client.Name), zap.Error(err))
		return fail(c, responseKey, services.ErrCodeExchangeFailed.Wrap(err))
	}

	return c.Succeed(responseKey, map[string]any{
		"tokens":        tokens.Map(),
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// GoogleUserDetails refreshes the access token of a registered client and
// fetches the user profile
func (h *Controllers) GoogleUserDetails(ctx context.Context, c *pipeline.Context) (pipeline.Outcome, error) {
	in := c.Inputs
	responseKey := in.Or("responseKey", "userDetails")
	logger := h.log(c, manifest.ControllerGoogleUserDetails)

	client, derr := h.lookupClient(ctx, in.String("client"), logger)
	if derr != nil {
		return fail(c, responseKey, derr)
	}

	refreshToken := stringAt(c.Payload, in.Or("refreshTokenKey", "refresh_token"))
	if refreshToken == "" {
		refreshToken = c.Query("refresh_token")
	}
	if refreshToken == "" {
		return fail(c, responseKey, services.ErrMissingRefreshToken)
	}

	tokens := &oauth.Tokens{RefreshToken: refreshToken}
	info, err := h.provider.UserInfo(ctx, credentialsOf(client), tokens)
	*tokens = oauth.Tokens{}
	if err != nil {
		logger.Warn("user details request failed", zap.String("client", client.Name), zap.Error(err))
		return fail(c, responseKey, services.ErrUserInfoFailed.Wrap(err))
	}

	return c.Succeed(responseKey, info)
}

// GoogleAuthenticate runs the whole sign-in on the OAuth redirect request:
// validate, exchange the code from the query string, fetch the profile.
// Without a code the authorization URL is returned so the caller can redirect.
func (h *Controllers) GoogleAuthenticate(ctx context.Context, c *pipeline.Context) (pipeline.Outcome, error) {
	responseKey := c.Inputs.Or("responseKey", "user")
	logger := h.log(c, manifest.ControllerGoogleAuthenticate)

	creds, opts, derr := authRequest(c.Inputs)
	if derr != nil {
		return fail(c, responseKey, derr)
	}

	if denied := c.Query("error"); denied != "" {
		return fail(c, responseKey, services.ErrConsentDenied.WithDetail("rawError", denied))
	}

	code := c.Query("code")
	if code == "" {
		return fail(c, responseKey, services.ErrMissingCode.WithDetail("authUrl", h.provider.AuthCodeURL(creds, opts)))
	}

	tokens, err := h.provider.Exchange(ctx, creds, code)
	if err != nil {
		logger.Warn("code exchange failed", zap.Error(err))
		return fail(c, responseKey, services.ErrCodeExchangeFailed.Wrap(err))
	}

	info, err := h.provider.UserInfo(ctx, creds, tokens)
	if err != nil {
		logger.Warn("user details request failed", zap.Error(err))
		return fail(c, responseKey, services.ErrUserInfoFailed.Wrap(err))
	}

	return c.Succeed(responseKey, map[string]any{
		"tokens": tokens.Map(),
		"user":   info,
	})
}

// authRequest validates the inline credentials and the required
// access_type and prompt parameters
func authRequest(in pipeline.Inputs) (oauth.Credentials, oauth.AuthURLOptions, *services.DomainError) {
	creds := oauth.Credentials{
		ClientID:     in.Value("clientId", "clientIdFromEnv"),
		ClientSecret: in.Value("clientSecret", "clientSecretFromEnv"),
		RedirectURI:  in.Value("redirectUri", "redirectUriFromEnv"),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RedirectURI == "" {
		return creds, oauth.AuthURLOptions{}, services.ErrMissingCredentials.WithDetail("missing", map[string]bool{
			"clientId":     creds.ClientID == "",
			"clientSecret": creds.ClientSecret == "",
			"redirectUri":  creds.RedirectURI == "",
		})
	}

	opts := oauth.AuthURLOptions{
		AccessType:           in.String("access_type"),
		Prompt:               in.String("prompt"),
		Scopes:               in.Strings("scopes"),
		State:                in.String("state"),
		LoginHint:            in.String("loginHint"),
		IncludeGrantedScopes: in.Bool("includeGrantedScopes"),
	}
	if opts.AccessType == "" || opts.Prompt == "" {
		return creds, opts, services.ErrMissingOAuthParams.WithDetail("missing", map[string]bool{
			"access_type": opts.AccessType == "",
			"prompt":      opts.Prompt == "",
		})
	}

	return creds, opts, nil
}

// lookupClient loads a registered client; it must exist and be complete
func (h *Controllers) lookupClient(ctx context.Context, name string, logger *zap.Logger) (*models.OAuthClient, *services.DomainError) {
	if name == "" {
		return nil, services.ErrMissingClientName
	}
	if h.clients == nil {
		return nil, services.ErrMissingConfig
	}

	client, err := h.clients.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrClientNotFound) {
			return nil, services.ErrMissingConfig
		}
		logger.Error("oauth client lookup failed", zap.String("client", name), zap.Error(err))
		return nil, services.ErrInternal.Wrap(err)
	}
	if client.IsEmpty() {
		return nil, services.ErrMissingConfig
	}
	return client, nil
}

func credentialsOf(client *models.OAuthClient) oauth.Credentials {
	return oauth.Credentials{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RedirectURI:  client.RedirectURI,
		Scopes:       client.Scopes,
	}
}

// stringAt reads a string from payload. A dotted key walks nested objects,
// so "tokens.refresh_token" reads the output of a previous exchange step.
func stringAt(payload pipeline.Payload, key string) string {
	if s, ok := payload[key].(string); ok {
		return s
	}

	var current any = map[string]any(payload)
	for _, part := range strings.Split(key, ".") {
		switch m := current.(type) {
		case map[string]any:
			current = m[part]
		case pipeline.Payload:
			current = m[part]
		default:
			return ""
		}
	}
	s, _ := current.(string)
	return s
}
