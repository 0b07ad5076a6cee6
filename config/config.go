// Package config loads the database connection settings of dbop.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem config and .env files are read from.
var AppFs = afero.NewOsFs()

// Config holds the settings read at startup. It is not modified afterwards.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	// Driver is the database/sql driver name, e.g. "sqlite3" or "postgres".
	Driver string `mapstructure:"driver" validate:"required"`
	// Dialect selects TOP or LIMIT and the placeholder style. Defaults to
	// the driver's dialect.
	Dialect string `mapstructure:"dialect"`
	// DSN is the connection string, passed to the driver as is.
	DSN     string        `mapstructure:"dsn" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

var ErrMissingDSN = errors.New("config: database.dsn is required")

// Load reads configuration from path, or from .dbop.yaml in the working
// directory and the home directory when path is empty. Values from the
// environment (DBOP_DATABASE_DSN, ...) win over the file. A .env file is
// loaded first and .env.local overrides it. DATABASE_URL is used when no dsn
// is configured. Callers that connect should Validate the result.
func Load(path string) (*Config, error) {
	if err := loadDotenv(".env", false); err != nil {
		return nil, err
	}
	if err := loadDotenv(".env.local", true); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".dbop")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "dbop"))
		}
	}

	v.SetEnvPrefix("DBOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dialect", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.timeout", 30*time.Second)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = os.Getenv("DATABASE_URL")
	}
	if cfg.Database.Dialect == "" {
		cfg.Database.Dialect = cfg.Database.Driver
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports missing required settings.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fe := ve[0]
	switch {
	case fe.StructField() == "DSN":
		return ErrMissingDSN
	case fe.Tag() == "required":
		return fmt.Errorf("config: %s is required", fe.Namespace())
	}
	return fmt.Errorf("config: invalid %s %v (%s=%s)", fe.Namespace(), fe.Value(), fe.Tag(), fe.Param())
}

// loadDotenv sets the variables of a dotenv file. Existing variables are
// kept unless override is set. A missing file is not an error.
func loadDotenv(name string, override bool) error {
	f, err := AppFs.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: opening %s: %w", name, err)
	}
	defer f.Close()

	env, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("config: parsing %s: %w", name, err)
	}
	for k, val := range env {
		if _, ok := os.LookupEnv(k); ok && !override {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	return nil
}
