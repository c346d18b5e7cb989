// Package session issues and validates the signed JWTs that carry a user
// session and binds them to HTTP cookies.
//
// Tokens are stateless: validity depends only on the HMAC signature, the
// issuer and the expiry. Nothing is stored server-side, so a token stays
// valid until it expires even after logout.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var (
	ErrTokenInvalid      = errors.New("token invalid")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenTypeMismatch = errors.New("token type mismatch")
)

// Claims is the payload of every session token.
type Claims struct {
	Type Type `json:"typ"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	Type      Type
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Lifetime is the span between issue and expiry.
func (t Token) Lifetime() time.Duration {
	return t.ExpiresAt.Sub(t.IssuedAt)
}

type Pair struct {
	Access  Token
	Refresh Token
}

type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCodec(secret string, issuer string, accessTTL time.Duration, refreshTTL time.Duration, opts ...Option) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive (access=%s refresh=%s)", accessTTL, refreshTTL)
	}

	codec := &Codec{
		secret:     []byte(secret),
		issuer:     strings.TrimSpace(issuer),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}

	return codec, nil
}

func (c *Codec) TTL(typ Type) time.Duration {
	if typ == TypeRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

func (c *Codec) Issue(subject string, typ Type) (Token, error) {
	if strings.TrimSpace(subject) == "" {
		return Token{}, errors.New("token subject is required")
	}
	if typ != TypeAccess && typ != TypeRefresh {
		return Token{}, fmt.Errorf("unknown token type %q", typ)
	}

	issuedAt := jwt.NewNumericDate(c.now())
	expiresAt := jwt.NewNumericDate(issuedAt.Add(c.TTL(typ)))
	tokenID := uuid.NewString()

	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			ID:        tokenID,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign %s token: %w", typ, err)
	}

	return Token{
		Value:     signed,
		Type:      typ,
		Subject:   subject,
		ID:        tokenID,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}

func (c *Codec) IssuePair(subject string) (Pair, error) {
	access, err := c.Issue(subject, TypeAccess)
	if err != nil {
		return Pair{}, err
	}

	refresh, err := c.Issue(subject, TypeRefresh)
	if err != nil {
		return Pair{}, err
	}

	return Pair{Access: access, Refresh: refresh}, nil
}

// Validate returns the subject of a token of the expected type.
func (c *Codec) Validate(tokenString string, expected Type) (string, error) {
	claims, err := c.ParseClaims(tokenString, expected)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (c *Codec) ParseClaims(tokenString string, expected Type) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	if claims.Type != expected {
		return nil, ErrTokenTypeMismatch
	}

	return claims, nil
}
