package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// WithEnv reads every field from its environment variable, falling back to
// the env-default tag when the variable is unset.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored. Apply it before WithEnv.
func WithDotEnv(paths ...string) Option {
	return func(c *ServerConfig) error {
		if len(paths) == 0 {
			paths = []string{".env"}
		}
		for _, p := range paths {
			if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to load %s: %w", p, err)
			}
		}
		return nil
	}
}

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabaseURL selects "memory" or a postgres:// URL
func WithDatabaseURL(url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseURL = url
		return nil
	}
}

// WithMemoryStorage keeps uploaded media in process memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage.Type = "memory"
		return nil
	}
}

// WithS3Storage stores media in an S3-compatible bucket
func WithS3Storage(endpoint, region, bucket, accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("bucket cannot be empty")
		}
		c.Storage.Type = "s3"
		c.Storage.Endpoint = endpoint
		c.Storage.Region = region
		c.Storage.Bucket = bucket
		c.Storage.AccessKeyID = accessKeyID
		c.Storage.SecretAccessKey = secretAccessKey
		return nil
	}
}

// WithJWT sets the token secret and lifetime in minutes
func WithJWT(secret string, expirationMinutes int) Option {
	return func(c *ServerConfig) error {
		c.JWT.Secret = secret
		c.JWT.ExpirationMinutes = expirationMinutes
		return nil
	}
}

// WithSeed configures the startup admin account
func WithSeed(enabled bool, adminEmail, adminPassword string) Option {
	return func(c *ServerConfig) error {
		c.Seed = SeedConfig{Enabled: enabled, AdminEmail: adminEmail, AdminPassword: adminPassword}
		return nil
	}
}
