package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port string `env:"SERVER_PORT" envDefault:"8080"`

	Database Database

	TokenSecret string        `env:"JWT_SECRET,required"`
	TokenTTL    time.Duration `env:"JWT_TTL" envDefault:"2h"`
	BcryptCost  int           `env:"BCRYPT_COST" envDefault:"10"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Avatar uploads are disabled unless both a credentials file and a
	// bucket are configured.
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`
	AvatarBucket            string `env:"AVATAR_BUCKET"`
	AvatarBucketURL         string `env:"AVATAR_BUCKET_URL"`

	LogDebug bool `env:"LOG_DEBUG" envDefault:"false"`
}

type Database struct {
	Host     string `env:"DB_HOST,required"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER,required"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME,required"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN returns the lib/pq connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// AvatarsEnabled reports whether avatar uploads are configured.
func (c Config) AvatarsEnabled() bool {
	return c.FirebaseCredentialsPath != "" && c.AvatarBucket != ""
}

const minSecretLength = 32

// Load reads an optional .env file and parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.TokenSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.FirebaseCredentialsPath != "" && c.AvatarBucket == "" {
		return errors.New("AVATAR_BUCKET is required when FIREBASE_CREDENTIALS_PATH is set")
	}
	return nil
}
