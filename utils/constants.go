// File: utils/constants.go
package utils

import "time"

// RevokedTokenPrefix is the prefix used for Redis revoked-token keys.
const RevokedTokenPrefix = "revoked:"

// FlowSessionPrefix is the prefix used for Redis booking flow session keys.
const FlowSessionPrefix = "flow:"

// FlowSessionTTL is the time-to-live for booking flow sessions.
const FlowSessionTTL = 30 * time.Minute
