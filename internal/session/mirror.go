package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	userdomain "brokerops/client/internal/user/domain"
)

const (
	mirrorFile = "identity.jwt"
	keyFile    = "mirror.key"
)

// Mirror persists the identity across client runs as an HS256-signed JWT in
// the state directory. The signing key is per-install and local-only: the
// mirror proves the file was written by this client, nothing more. The
// server's 401 remains the real session validator.
type Mirror struct {
	dir string
	ttl time.Duration
}

// NewMirror returns a mirror rooted at dir. ttl bounds how long a stored
// identity is trusted without a fresh login.
func NewMirror(dir string, ttl time.Duration) *Mirror {
	return &Mirror{dir: dir, ttl: ttl}
}

type mirrorClaims struct {
	jwt.RegisteredClaims
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Save writes the signed identity mirror, generating the signing key on first use.
func (m *Mirror) Save(ident Identity) error {
	key, err := m.loadOrCreateKey()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	claims := mirrorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: ident.ID,
		Email:  ident.Email,
		Name:   ident.Name,
		Role:   string(ident.Role),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return fmt.Errorf("sign mirror: %w", err)
	}
	return os.WriteFile(filepath.Join(m.dir, mirrorFile), []byte(token), 0o600)
}

// Load reads and verifies the mirror. Returns (nil, nil) when no usable
// mirror exists; an expired or tampered mirror is discarded, not an error.
func (m *Mirror) Load() (*Identity, error) {
	raw, err := os.ReadFile(filepath.Join(m.dir, mirrorFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	key, err := m.loadKey()
	if err != nil || key == nil {
		return nil, err
	}
	var claims mirrorClaims
	_, err = jwt.ParseWithClaims(string(raw), &claims,
		func(*jwt.Token) (interface{}, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// Stale or tampered mirrors are expected after key rotation or TTL
		// expiry; treat them as absent.
		return nil, nil
	}
	return &Identity{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  userdomain.Role(claims.Role),
	}, nil
}

// Clear removes the mirror file. Missing file is not an error.
func (m *Mirror) Clear() error {
	err := os.Remove(filepath.Join(m.dir, mirrorFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (m *Mirror) loadKey() ([]byte, error) {
	raw, err := os.ReadFile(filepath.Join(m.dir, keyFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("mirror key corrupt: %w", err)
	}
	return key, nil
}

func (m *Mirror) loadOrCreateKey() ([]byte, error) {
	if key, err := m.loadKey(); err != nil || key != nil {
		return key, err
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(m.dir, keyFile), []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
