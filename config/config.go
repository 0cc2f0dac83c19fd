package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string `env:"FB_APP_NAME" envDefault:"facebook-clone-backend"`
	AppEnv       string `env:"FB_APP_ENV" envDefault:"local"`
	HTTPHost     string `env:"FB_HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort     string `env:"FB_HTTP_PORT" envDefault:"8080"`
	HTTPBasePath string `env:"FB_HTTP_BASE_PATH" envDefault:"/api/v1"`

	DBHost     string `env:"FB_DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"FB_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"FB_DB_USER" envDefault:"app"`
	DBPassword string `env:"FB_DB_PASSWORD" envDefault:"app_password"`
	DBName     string `env:"FB_DB_NAME" envDefault:"facebook"`
	DBSSLMode  string `env:"FB_DB_SSLMODE" envDefault:"disable"`

	JWTSecret     string        `env:"FB_JWT_SECRET"`
	JWTPrivateKey string        `env:"FB_JWT_PRIVATE_KEY"`
	JWTPublicKey  string        `env:"FB_JWT_PUBLIC_KEY"`
	JWTAudience   string        `env:"FB_JWT_AUDIENCE" envDefault:"frontend"`
	JWTIssuer     string        `env:"FB_JWT_ISSUER" envDefault:"facebook-clone"`
	AccessTTL     time.Duration `env:"FB_JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"FB_JWT_REFRESH_TTL" envDefault:"720h"`
	SessionTTL    time.Duration `env:"FB_SESSION_TTL" envDefault:"87600h"`

	// Argon2id cost parameters. Shared by every hashing code path so
	// brute-force resistance stays uniform.
	ArgonMemoryKB    uint32 `env:"FB_ARGON_MEMORY_KB" envDefault:"65536"`
	ArgonTime        uint32 `env:"FB_ARGON_TIME" envDefault:"3"`
	ArgonParallelism uint8  `env:"FB_ARGON_PARALLELISM" envDefault:"2"`
	ArgonSaltLength  uint32 `env:"FB_ARGON_SALT_LENGTH" envDefault:"16"`
	ArgonKeyLength   uint32 `env:"FB_ARGON_KEY_LENGTH" envDefault:"32"`

	SMTPHost     string `env:"FB_SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"FB_SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"FB_SMTP_USER"`
	SMTPPassword string `env:"FB_SMTP_PASSWORD"`
	SMTPFrom     string `env:"FB_SMTP_FROM" envDefault:"no-reply@facebook-clone.local"`

	S3BaseEndpoint string `env:"FB_S3_ENDPOINT"`
	S3Region       string `env:"FB_S3_REGION" envDefault:"us-east-1"`
	S3Bucket       string `env:"FB_S3_BUCKET" envDefault:"media"`
	S3AccessKey    string `env:"FB_S3_ACCESS_KEY"`
	S3SecretKey    string `env:"FB_S3_SECRET_KEY"`

	NATSURL              string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSVerifySubject    string `env:"NATS_SUBJECT_VERIFY_JWT" envDefault:"auth.verifyJWT"`
	NATSUserEventSubject string `env:"NATS_SUBJECT_USER_EVENTS" envDefault:"user.registered"`
	NATSPostEventSubject string `env:"NATS_SUBJECT_POST_EVENTS" envDefault:"post.created"`

	CodeTTL         time.Duration `env:"FB_CODE_TTL" envDefault:"5m"`
	CodeRetryWindow time.Duration `env:"FB_CODE_RETRY_WINDOW" envDefault:"60s"`
	PresignExpiry   time.Duration `env:"FB_PRESIGN_EXPIRY" envDefault:"15m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
