// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Upload constants
const (
	// MaxUploadSize is the maximum camera frame or device log upload size in bytes (10MB)
	MaxUploadSize = 10 << 20

	// MaxJSONBodySize is the maximum JSON request body size in bytes (2MB)
	MaxJSONBodySize = 2 << 20

	// MaxSyncRecords is the maximum number of records in one device batch
	MaxSyncRecords = 5000
)

// Device sync constants
const (
	// MaxDeviceClockSkew is how far in the future a device timestamp may be
	MaxDeviceClockSkew = 5 * time.Minute
)

// Listing constants
const (
	// DefaultAuditLimit is the number of audit entries returned when no limit is given
	DefaultAuditLimit = 100
)

// Timeouts
const (
	// HealthCheckTimeout bounds the database ping of the health endpoint
	HealthCheckTimeout = 2 * time.Second

	// AuditWriteTimeout bounds one background audit write
	AuditWriteTimeout = 3 * time.Second
)
