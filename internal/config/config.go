// Package config loads server configuration from an optional garagebook.yaml
// file and GARAGEBOOK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// S3 configures the object storage that remote snapshots are fetched from.
type S3 struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type Config struct {
	Port           string `mapstructure:"port"`
	DBPath         string `mapstructure:"db_path"`
	DataDir        string `mapstructure:"data_dir"`
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	MaxFileBytes   int64  `mapstructure:"max_file_bytes"`
	S3             S3     `mapstructure:"s3"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "garagebook.db")
	v.SetDefault("data_dir", "data")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("max_upload_bytes", 256<<20)
	v.SetDefault("max_file_bytes", 32<<20)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
}

// Load reads configuration. When file is empty, garagebook.yaml is searched
// for in the working directory, $HOME/.garagebook and /etc/garagebook; a
// missing file is not an error. Environment variables override the file, with
// nested keys joined by underscores (GARAGEBOOK_S3_BUCKET).
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("garagebook")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.garagebook")
		v.AddConfigPath("/etc/garagebook")
	}

	v.SetEnvPrefix("GARAGEBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxFileBytes <= 0 {
		return fmt.Errorf("max_file_bytes must be positive, got %d", c.MaxFileBytes)
	}
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	return nil
}
