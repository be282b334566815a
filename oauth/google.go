package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// DefaultUserInfoURL is Google's OAuth2 userinfo endpoint
const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// DefaultScopes are requested when a step configures none
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

var (
	// ErrExchangeFailed is returned when the token endpoint rejects a code
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrUserInfoFailed is returned when the userinfo endpoint call fails
	ErrUserInfoFailed = errors.New("userinfo request failed")
)

// GoogleConfig configures a GoogleProvider
type GoogleConfig struct {
	// Endpoint overrides Google's authorization and token endpoints
	Endpoint *oauth2.Endpoint
	// UserInfoURL overrides DefaultUserInfoURL
	UserInfoURL string
	// HTTPClient is used for token and userinfo calls
	HTTPClient *http.Client
}

// GoogleProvider implements Provider for Google accounts
type GoogleProvider struct {
	endpoint    oauth2.Endpoint
	userInfoURL string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewGoogleProvider creates a new Google provider
func NewGoogleProvider(cfg GoogleConfig, logger *zap.Logger) *GoogleProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &GoogleProvider{
		endpoint:    endpoints.Google,
		userInfoURL: cfg.UserInfoURL,
		httpClient:  cfg.HTTPClient,
		logger:      logger,
	}
	if cfg.Endpoint != nil {
		p.endpoint = *cfg.Endpoint
	}
	if p.userInfoURL == "" {
		p.userInfoURL = DefaultUserInfoURL
	}
	if p.httpClient == nil {
		p.httpClient = http.DefaultClient
	}
	return p
}

// config builds a fresh client configuration per call so no credentials
// outlive the invocation. Scopes fall back to the registered ones, then to
// DefaultScopes.
func (p *GoogleProvider) config(creds Credentials, scopes []string) *oauth2.Config {
	if len(scopes) == 0 {
		scopes = creds.Scopes
	}
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Endpoint:     p.endpoint,
		Scopes:       scopes,
	}
}

func (p *GoogleProvider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// AuthCodeURL implements Provider
func (p *GoogleProvider) AuthCodeURL(creds Credentials, opts AuthURLOptions) string {
	params := []oauth2.AuthCodeOption{}
	if opts.AccessType != "" {
		params = append(params, oauth2.SetAuthURLParam("access_type", opts.AccessType))
	}
	if opts.Prompt != "" {
		params = append(params, oauth2.SetAuthURLParam("prompt", opts.Prompt))
	}
	if opts.LoginHint != "" {
		params = append(params, oauth2.SetAuthURLParam("login_hint", opts.LoginHint))
	}
	if opts.IncludeGrantedScopes {
		params = append(params, oauth2.SetAuthURLParam("include_granted_scopes", "true"))
	}

	return p.config(creds, opts.Scopes).AuthCodeURL(opts.State, params...)
}

// Exchange implements Provider
func (p *GoogleProvider) Exchange(ctx context.Context, creds Credentials, code string) (*Tokens, error) {
	tok, err := p.config(creds, nil).Exchange(p.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	out := fromOAuth2Token(tok)
	p.logger.Debug("authorization code exchanged",
		zap.Bool("refresh_token", tok.RefreshToken != ""),
	)
	if missing := missingScopes(creds.Scopes, out.Scope); len(missing) > 0 {
		p.logger.Warn("granted scopes are narrower than the client registration",
			zap.String("client_id", creds.ClientID),
			zap.Strings("missing", missing),
		)
	}
	return out, nil
}

// UserInfo implements Provider
func (p *GoogleProvider) UserInfo(ctx context.Context, creds Credentials, tokens *Tokens) (map[string]any, error) {
	if tokens == nil || (tokens.AccessToken == "" && tokens.RefreshToken == "") {
		return nil, fmt.Errorf("%w: no token to authenticate with", ErrUserInfoFailed)
	}

	ctx = p.clientContext(ctx)
	source := p.config(creds, nil).TokenSource(ctx, &oauth2.Token{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		Expiry:       tokens.Expiry,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}

	resp, err := oauth2.NewClient(ctx, source).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUserInfoFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUserInfoFailed, resp.StatusCode, body)
	}

	var info map[string]any
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrUserInfoFailed, err)
	}
	return info, nil
}

func fromOAuth2Token(tok *oauth2.Token) *Tokens {
	out := &Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if id, ok := tok.Extra("id_token").(string); ok {
		out.IDToken = id
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		out.Scope = scope
	}
	return out
}

// missingScopes lists the registered scopes absent from a granted scope string.
// An empty grant means the token endpoint did not report scopes.
func missingScopes(registered []string, granted string) []string {
	if len(registered) == 0 || granted == "" {
		return nil
	}
	have := make(map[string]bool)
	for _, s := range strings.Fields(granted) {
		have[s] = true
	}
	var missing []string
	for _, s := range registered {
		if !have[s] {
			missing = append(missing, s)
		}
	}
	return missing
}
