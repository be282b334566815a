package jwks

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/EcoFlowJS/ecoflow-authentication/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"go.uber.org/zap"
)

const (
	// DefaultCacheSize bounds the number of cached signing keys
	DefaultCacheSize = 50

	// DefaultCacheTTL is how long a fetched signing key stays cached
	DefaultCacheTTL = time.Hour

	// DefaultHTTPTimeout applies to JWKS requests
	DefaultHTTPTimeout = 10 * time.Second
)

var (
	// ErrJWKSFetchFailed is returned when the key set cannot be fetched
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")

	// ErrSigningKeyNotFound is returned when no key matches the token kid
	ErrSigningKeyNotFound = errors.New("signing key not found")

	// ErrUnsupportedKey is returned for keys that cannot verify RS signatures
	ErrUnsupportedKey = errors.New("unsupported signing key")
)

// Config holds configuration for Fetcher
type Config struct {
	CacheSize   int
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
	HTTPClient  *http.Client
}

// Fetcher resolves signing keys from remote JWKS endpoints.
// One Fetcher is shared by every verification; its cache is safe for concurrent use.
type Fetcher struct {
	httpClient *http.Client
	keys       *expirable.LRU[string, any]
	logger     *zap.Logger
}

// NewFetcher creates a new Fetcher
func NewFetcher(config Config, logger *zap.Logger) *Fetcher {
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultCacheSize
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.HTTPTimeout <= 0 {
		config.HTTPTimeout = DefaultHTTPTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.HTTPTimeout}
	}

	return &Fetcher{
		httpClient: client,
		keys:       expirable.NewLRU[string, any](config.CacheSize, nil, config.CacheTTL),
		logger:     logger,
	}
}

// KeyProvider returns a provider for the JWKS endpoint at rawURL.
// ok is false when rawURL is not a well-formed http(s) URL.
func (f *Fetcher) KeyProvider(rawURL string) (provider *KeyProvider, ok bool) {
	if utils.ValidateVar(rawURL, "required,http_url") != nil {
		return nil, false
	}
	return &KeyProvider{url: rawURL, fetcher: f}, true
}

// CachedKeys returns the number of signing keys currently cached
func (f *Fetcher) CachedKeys() int {
	return f.keys.Len()
}

// Purge drops every cached signing key
func (f *Fetcher) Purge() {
	f.keys.Purge()
}

// KeyProvider resolves key ids to public keys for one JWKS endpoint
type KeyProvider struct {
	url     string
	fetcher *Fetcher
}

// URL returns the JWKS endpoint
func (p *KeyProvider) URL() string {
	return p.url
}

// SigningKey returns the public key for kid. An empty kid is accepted when the
// key set holds exactly one key.
func (p *KeyProvider) SigningKey(ctx context.Context, kid string) (any, error) {
	cacheKey := p.url + "#" + kid
	if key, ok := p.fetcher.keys.Get(cacheKey); ok {
		return key, nil
	}

	set, err := jwk.Fetch(ctx, p.url, jwk.WithHTTPClient(p.fetcher.httpClient))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, err)
	}

	key, err := lookupKey(set, kid)
	if err != nil {
		return nil, err
	}

	publicKey, err := publicKeyOf(key)
	if err != nil {
		return nil, err
	}

	p.fetcher.keys.Add(cacheKey, publicKey)
	p.fetcher.logger.Debug("signing key cached",
		zap.String("jwks_url", p.url),
		zap.String("kid", kid))

	return publicKey, nil
}

// Keyfunc adapts the provider to jwt.Keyfunc
func (p *KeyProvider) Keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		return p.SigningKey(ctx, kid)
	}
}

// lookupKey finds kid in the set
func lookupKey(set jwk.Set, kid string) (jwk.Key, error) {
	if kid == "" {
		if set.Len() == 1 {
			key, _ := set.Key(0)
			return key, nil
		}
		return nil, fmt.Errorf("%w: token has no kid and key set holds %d keys", ErrSigningKeyNotFound, set.Len())
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("%w: no key with kid %s", ErrSigningKeyNotFound, kid)
	}
	return key, nil
}

// publicKeyOf prefers the key of the first x5c certificate over the raw RSA parameters
func publicKeyOf(key jwk.Key) (any, error) {
	if chain, ok := key.X509CertChain(); ok && chain != nil && chain.Len() > 0 {
		if der, ok := chain.Get(0); ok {
			if cert, err := parseCertificate(der); err == nil {
				return cert.PublicKey, nil
			}
		}
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKey, err)
	}

	switch k := raw.(type) {
	case *rsa.PublicKey:
		return k, nil
	case *rsa.PrivateKey:
		return &k.PublicKey, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, raw)
	}
}

// parseCertificate accepts a base64 (x5c) or raw DER certificate
func parseCertificate(data []byte) (*x509.Certificate, error) {
	if der, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
		return x509.ParseCertificate(der)
	}
	return x509.ParseCertificate(data)
}
