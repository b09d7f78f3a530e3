package params

import "time"

const (
	ServerBodyLimit    = 1048576 // 1 MiB
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	MinUsernameLength  = 5  // shortest username accepted at registration
	MaxUsernameLength  = 15 // longest username accepted at registration
	AutoUsernameLength = 15 // length of generated usernames
	MinPasswordLength  = 8
	MaxPasswordLength  = 72 // bcrypt input limit
	MinAccountAge      = 15 // minimum age in whole years

	TokenBucketSize    = 24 * time.Hour // activation token time-bucket granularity
	TokenMaxAgeBuckets = 1              // accepted buckets behind the current one

	CreateUserMaxAttempts = 5 // retries on generated-username collision

	CSRFTokenExpiration = 1 * time.Hour

	HealthCheckServerAddr = ":3001"
)
