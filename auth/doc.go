// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides ID generation and trigger authentication utilities.

User authentication itself lives in the external identity service; handlers
receive an already-resolved user ID. This package only covers what the
engine needs locally.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# Cron Secret

The batch trigger endpoint accepts an optional bearer secret:

	err := auth.ValidateCronSecret(r.Header.Get("Authorization"), cfg.CronSecret)

Validation uses a constant-time comparison. An empty configured secret
disables the check.
*/
package auth
