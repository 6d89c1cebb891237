package types

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort  uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	DBMaxConns          int32 `envconfig:"DB_MAX_CONNS" default:"10"`
	DBConnectTimeoutSec int   `envconfig:"DB_CONNECT_TIMEOUT_SEC" default:"5"`

	ReadTimeoutSec  uint `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Absolute URL the service is reachable on, used to build verification links.
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	// Auth Configuration
	SessionMaxAgeSec       int `envconfig:"SESSION_MAX_AGE_SEC" default:"1209600"` // 14 days
	VerificationTTLHours   int `envconfig:"VERIFICATION_TTL_HOURS" default:"24"`
	UnverifiedRetentionHrs int `envconfig:"UNVERIFIED_RETENTION_HOURS" default:"168"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// HMAC key for session tokens (base64 encoded)
	SessionSigningKey string `envconfig:"SESSION_SIGNING_KEY"`

	// Photo storage: "s3" or "filesystem"
	StorageDriver   string `envconfig:"STORAGE_DRIVER" default:"filesystem"`
	S3BucketName    string `envconfig:"S3_BUCKET_NAME"`
	MediaRoot       string `envconfig:"MEDIA_ROOT" default:"./media"`
	PhotoURLTTLSec  int    `envconfig:"PHOTO_URL_TTL_SEC" default:"3600"`
	MaxPhotoBytes   int    `envconfig:"MAX_PHOTO_BYTES" default:"5242880"`
	MaxRequestBytes int64  `envconfig:"MAX_REQUEST_BYTES" default:"33554432"`

	// Auth endpoint throttling, per client IP
	AuthRateLimitPerMin int `envconfig:"AUTH_RATE_LIMIT_PER_MIN" default:"20"`

	// Housekeeping schedules (robfig/cron spec strings)
	PurgeUnverifiedSchedule string `envconfig:"PURGE_UNVERIFIED_SCHEDULE" default:"@hourly"`
	StatsSnapshotSchedule   string `envconfig:"STATS_SNAPSHOT_SCHEDULE" default:"@daily"`
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
