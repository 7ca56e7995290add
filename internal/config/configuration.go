package config

import (
	"context"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	WebServerPort int `mapstructure:"WEBSERVER_PORT"`

	// Database Configuration
	DatabaseDSN     string `mapstructure:"DATABASE_DSN" validate:"required"`
	DatabaseRetries int    `mapstructure:"DATABASE_RETRIES"`

	// Auth
	JWTSecret string `mapstructure:"JWT_SECRET" validate:"required"`

	// Object storage (S3-compatible, e.g. Cloudflare R2)
	StorageEndpoint  string `mapstructure:"STORAGE_ENDPOINT"`
	StorageRegion    string `mapstructure:"STORAGE_REGION"`
	StorageBucket    string `mapstructure:"STORAGE_BUCKET"`
	StorageAccessKey string `mapstructure:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `mapstructure:"STORAGE_SECRET_KEY"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL"`

	// Queue / workers
	QueueDisabled  bool `mapstructure:"QUEUE_DISABLED"`
	VideoWorkers   int  `mapstructure:"VIDEO_WORKERS"`
	TaggingWorkers int  `mapstructure:"TAGGING_WORKERS"`

	// Scratch area for pipeline working directories
	TmpDir string `mapstructure:"TMP_DIR"`
}

// StorageConfigured reports whether the object store has enough configuration
// to accept uploads. Create-video calls must fail with 503 when it does not.
func (c *Config) StorageConfigured() bool {
	return c.StorageEndpoint != "" && c.StorageBucket != "" &&
		c.StorageAccessKey != "" && c.StorageSecretKey != ""
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag != "" {
			viper.BindEnv(tag)
		}

		// Handle nested structs
		if field.Type.Kind() == reflect.Struct && tag == "" {
			nestedTyp := fieldVal.Type()
			for j := 0; j < fieldVal.NumField(); j++ {
				nestedField := nestedTyp.Field(j)
				nestedTag := nestedField.Tag.Get("mapstructure")
				if nestedTag != "" {
					viper.BindEnv(nestedTag)
				}
			}
		}
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 8080)
	viper.SetDefault("DATABASE_RETRIES", 10)
	viper.SetDefault("STORAGE_REGION", "auto")
	viper.SetDefault("VIDEO_WORKERS", 2)
	viper.SetDefault("TAGGING_WORKERS", 5)
	viper.SetDefault("TMP_DIR", "")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
