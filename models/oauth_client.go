package models

import (
	"strings"
	"time"
)

// OAuthClient is a named OAuth client registration owned by the host
type OAuthClient struct {
	Name         string    `json:"name" yaml:"name" db:"name" validate:"required"`
	ClientID     string    `json:"client_id" yaml:"client_id" db:"client_id" validate:"required"`
	ClientSecret string    `json:"-" yaml:"client_secret" db:"client_secret" validate:"required"`
	RedirectURI  string    `json:"redirect_uri" yaml:"redirect_uri" db:"redirect_uri" validate:"required,url"`
	Scopes       []string  `json:"scopes,omitempty" yaml:"scopes" db:"scopes"`
	CreatedAt    time.Time `json:"created_at" yaml:"-" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-" db:"updated_at"`
}

// TableName returns the table name for the OAuthClient model
func (OAuthClient) TableName() string {
	return "oauth_clients"
}

// NewOAuthClient creates a new OAuthClient instance
func NewOAuthClient(name, clientID, clientSecret, redirectURI string) *OAuthClient {
	now := time.Now()
	return &OAuthClient{
		Name:         strings.TrimSpace(name),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsEmpty reports whether the registration lacks any credential needed for a
// code exchange
func (c *OAuthClient) IsEmpty() bool {
	return c == nil || c.ClientID == "" || c.ClientSecret == "" || c.RedirectURI == ""
}
