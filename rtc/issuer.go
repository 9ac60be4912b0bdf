// Package rtc issues access tokens for the real-time communication provider
// used for live class rooms.
package rtc

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MaxTTL caps the lifetime of an issued token
const MaxTTL = 24 * time.Hour

// ErrNotConfigured is returned when the provider key or secret is missing
var ErrNotConfigured = errors.New("rtc credentials not configured")

// VideoGrant describes what the bearer may do in a room
type VideoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

// Claims is the payload of an RTC access token
type Claims struct {
	jwt.RegisteredClaims
	Name  string      `json:"name,omitempty"`
	Video *VideoGrant `json:"video"`
}

// Grant is a request for a room token
type Grant struct {
	Identity string
	Name     string
	Room     string
	Publish  bool
	TTL      time.Duration
}

// Token is a signed access token
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// IssuerConfig holds provider credentials
type IssuerConfig struct {
	APIKey     string
	APISecret  string
	DefaultTTL time.Duration
}

// Issuer signs RTC access tokens. Safe for concurrent use.
type Issuer struct {
	cfg IssuerConfig
	now func() time.Time
}

// NewIssuer creates an Issuer
func NewIssuer(cfg IssuerConfig) *Issuer {
	if cfg.DefaultTTL <= 0 || cfg.DefaultTTL > MaxTTL {
		cfg.DefaultTTL = 6 * time.Hour
	}
	return &Issuer{cfg: cfg, now: time.Now}
}

// Configured reports whether both key and secret are set
func (i *Issuer) Configured() bool {
	return i.cfg.APIKey != "" && i.cfg.APISecret != ""
}

// Issue signs a token for g
func (i *Issuer) Issue(g Grant) (*Token, error) {
	if !i.Configured() {
		return nil, ErrNotConfigured
	}
	if g.Identity == "" {
		return nil, errors.New("rtc grant requires an identity")
	}
	if g.Room == "" {
		return nil, errors.New("rtc grant requires a room")
	}

	ttl := g.TTL
	if ttl <= 0 {
		ttl = i.cfg.DefaultTTL
	}
	if ttl > MaxTTL {
		ttl = MaxTTL
	}

	now := i.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.APIKey,
			Subject:   g.Identity,
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name: g.Name,
		Video: &VideoGrant{
			Room:         g.Room,
			RoomJoin:     true,
			CanPublish:   g.Publish,
			CanSubscribe: true,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.APISecret))
	if err != nil {
		return nil, fmt.Errorf("sign rtc token: %w", err)
	}

	return &Token{Value: signed, ExpiresAt: expiresAt}, nil
}
