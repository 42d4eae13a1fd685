package transport

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/restkit/errors"
)

// AuthType identifies the authentication method.
type AuthType string

const (
	// AuthNone disables authentication.
	AuthNone AuthType = ""
	// AuthBearer sends a static bearer token.
	AuthBearer AuthType = "bearer"
	// AuthBasic sends preemptive HTTP Basic credentials.
	AuthBasic AuthType = "basic"
	// AuthAPIKey sends a key in a header or query parameter.
	AuthAPIKey AuthType = "api_key"
	// AuthJWT mints a signed bearer token and renews it before expiry.
	AuthJWT AuthType = "jwt"
	// AuthCustom runs a caller-supplied request modifier.
	AuthCustom AuthType = "custom"
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type AuthType `yaml:"type" mapstructure:"type" validate:"omitempty,oneof=bearer basic api_key jwt custom"`

	// Token is the bearer token (AuthBearer).
	Token string `yaml:"token" mapstructure:"token"`

	// Username and Password are the Basic credentials (AuthBasic).
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	// Key is the API key; In is "header" (default) or "query"; Name
	// defaults to "X-API-Key" (AuthAPIKey).
	Key  string `yaml:"key" mapstructure:"key"`
	In   string `yaml:"in" mapstructure:"in" validate:"omitempty,oneof=header query"`
	Name string `yaml:"name" mapstructure:"name"`

	// JWT configures token minting (AuthJWT).
	JWT *JWTConfig `yaml:"jwt" mapstructure:"jwt"`

	// Apply modifies the request (AuthCustom).
	Apply func(*http.Request) error `yaml:"-" mapstructure:"-"`
}

// JWTConfig configures tokens minted by the JWT authenticator.
type JWTConfig struct {
	// Secret is the HMAC signing key.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Method is HS256 (default), HS384 or HS512.
	Method   string        `yaml:"method" mapstructure:"method" validate:"omitempty,oneof=HS256 HS384 HS512"`
	Issuer   string        `yaml:"issuer" mapstructure:"issuer"`
	Subject  string        `yaml:"subject" mapstructure:"subject"`
	Audience []string      `yaml:"audience" mapstructure:"audience"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// Claims are added to the registered claims.
	Claims map[string]any `yaml:"claims" mapstructure:"claims"`
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent in the X-API-Key header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: "X-API-Key"}
}

// APIKeyAuthQuery creates an API key auth config sent as a query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// JWTAuth creates an auth config minting HMAC-signed tokens.
func JWTAuth(cfg JWTConfig) *AuthConfig {
	return &AuthConfig{Type: AuthJWT, JWT: &cfg}
}

// CustomAuth creates a custom auth config with a request modifier function.
func CustomAuth(fn func(*http.Request) error) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// Validate checks that the fields required by Type are present.
func (a *AuthConfig) Validate() error {
	if a == nil {
		return nil
	}
	missing := ""
	switch a.Type {
	case AuthNone:
	case AuthBearer:
		if a.Token == "" {
			missing = "token"
		}
	case AuthBasic:
		if a.Username == "" {
			missing = "username"
		}
	case AuthAPIKey:
		if a.Key == "" {
			missing = "key"
		}
	case AuthJWT:
		if a.JWT == nil || a.JWT.Secret == "" {
			missing = "jwt.secret"
		}
	case AuthCustom:
		if a.Apply == nil {
			missing = "apply function"
		}
	default:
		return errors.InvalidConfig(fmt.Sprintf("auth: unknown type %q", a.Type), nil)
	}
	if missing != "" {
		return errors.InvalidConfig(fmt.Sprintf("auth: %s auth requires %s", a.Type, missing), nil)
	}
	return nil
}

// Interceptor returns the interceptor applying this authentication, or nil
// when no authentication is configured.
func (a *AuthConfig) Interceptor() Interceptor {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthBearer:
		return bearer(func() (string, error) { return a.Token, nil })
	case AuthBasic:
		return func(req *http.Request) error {
			req.SetBasicAuth(a.Username, a.Password)
			return nil
		}
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = "X-API-Key"
		}
		return func(req *http.Request) error {
			if a.In == "query" {
				q := req.URL.Query()
				q.Set(name, a.Key)
				req.URL.RawQuery = q.Encode()
				return nil
			}
			req.Header.Set(name, a.Key)
			return nil
		}
	case AuthJWT:
		return bearer(newJWTSource(*a.JWT).Token)
	case AuthCustom:
		return a.Apply
	}
	return nil
}

// bearer replaces any Authorization header with a bearer token.
func bearer(token func() (string, error)) Interceptor {
	return func(req *http.Request) error {
		t, err := token()
		if err != nil {
			return err
		}
		req.Header.Del("Authorization")
		req.Header.Set("Authorization", "Bearer "+t)
		return nil
	}
}

// jwtSource caches a minted token until most of its lifetime has passed.
type jwtSource struct {
	cfg    JWTConfig
	method jwt.SigningMethod

	mu      sync.Mutex
	token   string
	renewAt time.Time
}

func newJWTSource(cfg JWTConfig) *jwtSource {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Method == "" {
		cfg.Method = "HS256"
	}
	return &jwtSource{cfg: cfg, method: jwt.GetSigningMethod(cfg.Method)}
}

func (s *jwtSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.method == nil {
		return "", errors.InvalidConfig(fmt.Sprintf("auth: unsupported jwt method %q", s.cfg.Method), nil)
	}
	now := time.Now()
	if s.token != "" && now.Before(s.renewAt) {
		return s.token, nil
	}

	claims := jwt.MapClaims{}
	for k, v := range s.cfg.Claims {
		claims[k] = v
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.cfg.TTL).Unix()
	if s.cfg.Issuer != "" {
		claims["iss"] = s.cfg.Issuer
	}
	if s.cfg.Subject != "" {
		claims["sub"] = s.cfg.Subject
	}
	if len(s.cfg.Audience) > 0 {
		claims["aud"] = s.cfg.Audience
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", errors.InvalidConfig("auth: unable to sign jwt", err)
	}
	s.token = signed
	s.renewAt = now.Add(s.cfg.TTL * 4 / 5)
	return signed, nil
}
