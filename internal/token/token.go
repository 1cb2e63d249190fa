// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package token implements the admin bearer token scheme: a sha256 digest
// of the shared admin secret and an expiry timestamp, issued as
// "{hash}-{expiryMillis}". The secret is the credential — anyone holding it
// can mint tokens — so there is no revocation beyond expiry or rotating
// the secret.
package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// TTL is how long an issued token stays valid.
const TTL = 24 * time.Hour

var (
	// ErrNotConfigured is returned when no admin secret is set server-side.
	// This is a configuration fault (HTTP 500), not a caller fault.
	ErrNotConfigured = errors.New("token: admin secret not configured")

	// ErrInvalidCredentials is returned when the supplied password does not
	// match the configured secret.
	ErrInvalidCredentials = errors.New("token: invalid credentials")
)

// Service issues and verifies admin bearer tokens against a single shared
// secret. The secret may be the plaintext admin password or a bcrypt hash
// of it (recognised by the $2a$/$2b$/$2y$ prefix); in the hashed case the
// hash string itself feeds the token digest, so tokens survive restarts as
// long as the hash is unchanged.
type Service struct {
	secret string
	now    func() time.Time
}

// NewService creates a token service. An empty secret is allowed; Issue and
// Verify then fail closed with ErrNotConfigured / invalid.
func NewService(secret string) *Service {
	return &Service{secret: secret, now: time.Now}
}

// Configured reports whether an admin secret is set.
func (s *Service) Configured() bool {
	return s.secret != ""
}

// Issue checks the candidate password against the configured secret and, on
// match, returns a token valid for TTL.
func (s *Service) Issue(password string) (string, error) {
	if s.secret == "" {
		return "", ErrNotConfigured
	}

	if !s.checkPassword(password) {
		return "", ErrInvalidCredentials
	}

	expiry := s.now().Add(TTL).UnixMilli()
	return fmt.Sprintf("%s-%d", s.digest(expiry), expiry), nil
}

// Verify parses a "{hash}-{expiry}" token and reports whether it is
// authentic and unexpired. Any malformation fails closed.
func (s *Service) Verify(token string) bool {
	if s.secret == "" {
		return false
	}

	hash, expiryStr, ok := strings.Cut(token, "-")
	if !ok {
		return false
	}

	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return false
	}

	if s.now().UnixMilli() >= expiry {
		return false
	}

	expected := s.digest(expiry)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expected)) == 1
}

// checkPassword compares the candidate against the secret: bcrypt when the
// secret is a bcrypt hash, constant-time equality otherwise.
func (s *Service) checkPassword(password string) bool {
	if isBcryptHash(s.secret) {
		return bcrypt.CompareHashAndPassword([]byte(s.secret), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.secret)) == 1
}

// digest computes the sha256 hex digest binding the secret to an expiry.
func (s *Service) digest(expiry int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%d", s.secret, expiry)))
	return hex.EncodeToString(sum[:])
}

// isBcryptHash recognises the standard bcrypt prefixes.
func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}
