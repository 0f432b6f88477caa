package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretLength = 32

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

type Claims struct {
	TenantID    string   `json:"tenant_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Maker signs and verifies HS256 bearer tokens.
type Maker struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewMaker(secret, issuer string) (*Maker, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("invalid key size: must be at least %d characters", minSecretLength)
	}
	return &Maker{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

func (m *Maker) CreateToken(p Principal, ttl time.Duration) (string, *Claims, error) {
	if p.UserID == "" || p.TenantID == "" || p.Role == "" {
		return "", nil, fmt.Errorf("user id, tenant id and role are required")
	}
	now := m.now()
	claims := &Claims{
		TenantID:    p.TenantID,
		Role:        p.Role,
		Permissions: p.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

func (m *Maker) VerifyToken(token string) (*Principal, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.TenantID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}

	return &Principal{
		UserID:      claims.Subject,
		TenantID:    claims.TenantID,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}, nil
}
