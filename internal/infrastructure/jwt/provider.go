package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/family-connect/internal/config"
	"github.com/family-connect/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped on every bearer token and required on verification.
const Issuer = "family-connect"

// Claims is the bearer token payload. SessionID ties the token to a session
// row so logout revokes it before expiry.
type Claims struct {
	UserID    string `json:"user_id"`
	DeviceID  string `json:"device_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Provider signs and verifies member bearer tokens with an RSA key pair.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	ttl        time.Duration
	now        func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	priv, err := loadPEM(cfg.JWTPrivateKeyPath, "private", jwt.ParseRSAPrivateKeyFromPEM)
	if err != nil {
		return nil, err
	}
	pub, err := loadPEM(cfg.JWTPublicKeyPath, "public", jwt.ParseRSAPublicKeyFromPEM)
	if err != nil {
		return nil, err
	}
	if !priv.PublicKey.Equal(pub) {
		return nil, errors.New("public key does not match private key")
	}
	return &Provider{privateKey: priv, publicKey: pub, ttl: cfg.JWTExpiry, now: time.Now}, nil
}

func loadPEM[K any](path, kind string, parse func([]byte) (K, error)) (K, error) {
	var zero K
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read %s key: %w", kind, err)
	}
	key, err := parse(data)
	if err != nil {
		return zero, fmt.Errorf("parse %s key: %w", kind, err)
	}
	return key, nil
}

// Sign issues a token for one device session. The session id doubles as jti.
func (p *Provider) Sign(userID, deviceID, role, sessionID string) (string, error) {
	if userID == "" || sessionID == "" {
		return "", errors.New("sign token: user and session are required")
	}
	issued := p.now()
	claims := Claims{
		UserID:    userID,
		DeviceID:  deviceID,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(p.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
}

// Verify checks signature, algorithm, issuer and expiry. Every failure wraps
// domain.ErrUnauthorized.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) { return p.publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("bearer token: %v: %w", err, domain.ErrUnauthorized)
	}
	if claims.UserID == "" || claims.SessionID == "" || claims.Subject != claims.UserID {
		return nil, fmt.Errorf("bearer token: incomplete claims: %w", domain.ErrUnauthorized)
	}
	return claims, nil
}
