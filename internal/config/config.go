package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort           string
	AppEnv            string
	AWSRegion         string
	AWSEndpointURL    string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID    string
	AWSSecretKey      string
	DynamoTables      DynamoTables
	S3BucketName      string
	MediaURLTTL       time.Duration
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RefreshTokenTTL   time.Duration
	SNSRegion         string
	SMSSenderID       string
	SMSEnabled        bool // false: OTP codes are logged (development only)
	OTP               OTPSettings
	AllowedOrigins    []string // CORS allowed origins
	TrustProxyHeaders bool     // take the client IP from X-Forwarded-For behind a load balancer
}

// OTPSettings controls one-time password issuance and login tickets.
type OTPSettings struct {
	TTL                time.Duration
	ResendCooldown     time.Duration
	MaxAttempts        int
	TicketTTL          time.Duration
	DefaultCountryCode string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users             string
	Sessions          string
	Devices           string
	Notifications     string
	UserVerifications string
	Events            string
	Videos            string
	Ads               string
	Menus             string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:             getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:          getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Devices:           getEnv("DYNAMO_TABLE_DEVICES", "devices"),
			Notifications:     getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			UserVerifications: getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "user_verifications"),
			Events:            getEnv("DYNAMO_TABLE_EVENTS", "events"),
			Videos:            getEnv("DYNAMO_TABLE_VIDEOS", "videos"),
			Ads:               getEnv("DYNAMO_TABLE_ADS", "ads"),
			Menus:             getEnv("DYNAMO_TABLE_MENUS", "menus"),
		},
		S3BucketName:      getEnv("S3_BUCKET_NAME", "family-connect-media"),
		MediaURLTTL:       getEnvDuration("MEDIA_URL_TTL", 15*time.Minute),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenTTL:   time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,
		SNSRegion:         getEnv("SNS_REGION", "us-east-1"),
		SMSSenderID:       getEnv("SMS_SENDER_ID", ""),
		SMSEnabled:        getEnv("SMS_ENABLED", "false") == "true",
		OTP: OTPSettings{
			TTL:                getEnvDuration("OTP_TTL", 5*time.Minute),
			ResendCooldown:     getEnvDuration("OTP_RESEND_COOLDOWN", 30*time.Second),
			MaxAttempts:        getEnvInt("OTP_MAX_ATTEMPTS", 5),
			TicketTTL:          getEnvDuration("LOGIN_TICKET_TTL", 15*time.Minute),
			DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "91"),
		},
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxyHeaders: getEnv("TRUST_PROXY_HEADERS", "false") == "true",
	}
}

// IsDevelopment reports whether the server runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv != "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "5m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
