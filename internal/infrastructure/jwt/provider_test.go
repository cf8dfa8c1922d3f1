package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/family-connect/internal/config"
	"github.com/family-connect/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeys(t *testing.T) (privPath, pubPath string) {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return writeKeyPair(t, privKey, &privKey.PublicKey)
}

func writeKeyPair(t *testing.T, privKey *rsa.PrivateKey, pubKey *rsa.PublicKey) (privPath, pubPath string) {
	t.Helper()
	dir := t.TempDir()
	privPath = filepath.Join(dir, "private.pem")
	pubPath = filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(pubKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))
	return privPath, pubPath
}

func TestProvider_SignVerifyRoundTrip(t *testing.T) {
	priv, pub := writeKeys(t)
	p, err := NewProvider(&config.Config{JWTPrivateKeyPath: priv, JWTPublicKeyPath: pub, JWTExpiry: time.Hour})
	require.NoError(t, err)

	tok, err := p.Sign("u1", "d1", "user", "s1")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "d1", claims.DeviceID)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, "s1", claims.ID)
}

func newProvider(t *testing.T) *Provider {
	t.Helper()
	priv, pub := writeKeys(t)
	p, err := NewProvider(&config.Config{JWTPrivateKeyPath: priv, JWTPublicKeyPath: pub, JWTExpiry: time.Hour})
	require.NoError(t, err)
	return p
}

func TestProvider_ExpiryFollowsClock(t *testing.T) {
	p := newProvider(t)
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return issued }

	tok, err := p.Sign("u1", "d1", "user", "s1")
	require.NoError(t, err)

	p.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = p.Verify(tok)
	require.NoError(t, err)

	p.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = p.Verify(tok)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestProvider_RejectsOtherIssuer(t *testing.T) {
	p := newProvider(t)
	claims := Claims{
		UserID:    "u1",
		SessionID: "s1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestProvider_RejectsOtherAlgorithm(t *testing.T) {
	p := newProvider(t)
	claims := Claims{
		UserID:    "u1",
		SessionID: "s1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("shared"))
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestProvider_RejectsTokenWithoutSession(t *testing.T) {
	p := newProvider(t)
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.ErrorContains(t, err, "incomplete claims")
}

func TestProvider_SignRequiresSession(t *testing.T) {
	p := newProvider(t)
	_, err := p.Sign("u1", "d1", "user", "")
	assert.Error(t, err)
}

func TestNewProvider_MismatchedKeys(t *testing.T) {
	a, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	b, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	priv, pub := writeKeyPair(t, a, &b.PublicKey)

	_, err = NewProvider(&config.Config{JWTPrivateKeyPath: priv, JWTPublicKeyPath: pub, JWTExpiry: time.Hour})
	assert.ErrorContains(t, err, "does not match")
}

func TestProvider_ExpiredTokenRejected(t *testing.T) {
	priv, pub := writeKeys(t)
	p, err := NewProvider(&config.Config{JWTPrivateKeyPath: priv, JWTPublicKeyPath: pub, JWTExpiry: -time.Minute})
	require.NoError(t, err)

	tok, err := p.Sign("u1", "d1", "user", "s1")
	require.NoError(t, err)
	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestNewProvider_MissingKey(t *testing.T) {
	_, err := NewProvider(&config.Config{JWTPrivateKeyPath: "/nonexistent/key.pem"})
	assert.ErrorContains(t, err, "read private key")
}
