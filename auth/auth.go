// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCronSecret = errors.New("invalid cron secret")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidateCronSecret checks the Authorization header of a batch trigger
// against the configured secret. An empty configured secret disables the
// check entirely (the caller is trusted, e.g. local development).
// Comparison is constant-time.
func ValidateCronSecret(authHeader, secret string) error {
	if secret == "" {
		return nil
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if !hmac.Equal([]byte(token), []byte(secret)) {
		return ErrInvalidCronSecret
	}
	return nil
}
