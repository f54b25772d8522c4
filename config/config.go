package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ServerPort int
	Database   DatabaseConfig
	Auth       AuthConfig
	Log        LogConfig
	MQ         MQConfig
	Storage    StorageConfig
	Verify     VerifyLimitConfig
	Redis      RedisConfig
	SMTP       SMTPConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// AuthConfig holds token and password hashing settings.
// JWTSecret is validated by the server at startup, not here.
type AuthConfig struct {
	JWTSecret     string
	Issuer        string
	TokenTTL      time.Duration
	LoginTokenTTL time.Duration
	BcryptCost    int
	// AdminCreateProtected puts /auth/admin/create behind the admin gate.
	AdminCreateProtected bool
	// IPRatePerMinute and IPBurst bound /auth requests per client address.
	// A rate of zero disables the limit.
	IPRatePerMinute int
	IPBurst         int
	// PhoneRegion is the ISO country assumed for phone numbers without a
	// country code.
	PhoneRegion string
}

type LogConfig struct {
	Level  string
	Format string
}

// MQConfig selects the broker used to hand notifications to the relay.
// Backend is one of "none", "rabbitmq" or "pubsub".
type MQConfig struct {
	Backend             string
	NotificationChannel string
	RabbitMQ            RabbitMQConfig
	PubSub              PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

// StorageConfig selects the object store for car images.
// Backend is one of "none", "memory", "minio" or "gcs".
type StorageConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// VerifyLimitConfig is the attempt policy for verification codes.
// Backend is one of "none", "memory" or "redis".
type VerifyLimitConfig struct {
	Backend string
	Max     int
	Window  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "carhire"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "carhire_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	authConfig := AuthConfig{
		JWTSecret:     strings.TrimSpace(getEnv("JWT_SECRET", "")),
		Issuer:        getEnv("JWT_ISSUER", "carhire"),
		TokenTTL:      getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
		LoginTokenTTL: getEnvDuration("AUTH_LOGIN_TOKEN_TTL", 24*time.Hour),
		BcryptCost:    getEnvInt("AUTH_BCRYPT_COST", 10),

		AdminCreateProtected: getEnvBool("AUTH_ADMIN_CREATE_PROTECTED", false),
		IPRatePerMinute:      getEnvInt("AUTH_IP_RATE_PER_MINUTE", 30),
		IPBurst:              getEnvInt("AUTH_IP_BURST", 10),
		PhoneRegion:          getEnv("PHONE_DEFAULT_REGION", "US"),
	}

	mqConfig := MQConfig{
		Backend:             strings.ToLower(getEnv("MQ_BACKEND", "none")),
		NotificationChannel: getEnv("MQ_NOTIFICATION_CHANNEL", "notifications"),
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 10),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
	}

	storageConfig := StorageConfig{
		Backend: strings.ToLower(getEnv("STORAGE_BACKEND", "none")),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "carhire"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
	}

	return Config{
		Env:        getEnv("ENV", "prod"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Auth:       authConfig,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		MQ:      mqConfig,
		Storage: storageConfig,
		Verify: VerifyLimitConfig{
			Backend: strings.ToLower(getEnv("VERIFY_LIMIT_BACKEND", "memory")),
			Max:     getEnvInt("VERIFY_LIMIT_MAX", 5),
			Window:  getEnvDuration("VERIFY_LIMIT_WINDOW", 15*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("EMAIL_USER", ""),
			Password: getEnv("EMAIL_PASS", ""),
			From:     getEnv("EMAIL_FROM", getEnv("EMAIL_USER", "")),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("36h", "15m") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(strings.TrimSpace(valueStr)); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
