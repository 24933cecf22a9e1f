package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// Backends a config can select.
const (
	BackendMemory   = "memory"
	BackendInline   = "inline"
	BackendDatabase = "database"
	BackendCloud    = "cloud"
)

// Environment variables that override the cloud settings of the file.
const (
	EnvCloudBaseURL        = "GX_CLOUD_BASE_URL"
	EnvCloudOrganizationID = "GX_CLOUD_ORGANIZATION_ID"
	EnvCloudAccessToken    = "GX_CLOUD_ACCESS_TOKEN"
)

// Config represents the configuration of dsctl: the backend the datasource
// store sits on and its settings.
type Config struct {
	// Version of the configuration file format
	Version  string         `yaml:"version" validate:"required"`
	Backend  string         `yaml:"backend" validate:"required,oneof=memory inline database cloud"`
	LogLevel string         `yaml:"log_level,omitempty"`
	Inline   InlineConfig   `yaml:"inline,omitempty" validate:"-"`
	Database DatabaseConfig `yaml:"database,omitempty" validate:"-"`
	Cloud    CloudConfig    `yaml:"cloud,omitempty" validate:"-"`
}

type InlineConfig struct {
	// ContextRoot is the directory holding gx.yml
	ContextRoot string `yaml:"context_root,omitempty" validate:"required"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver,omitempty" validate:"required,oneof=sqlite pgx postgres"`
	DSN    string `yaml:"dsn,omitempty" validate:"required"`
	Table  string `yaml:"table,omitempty"`
}

type CloudConfig struct {
	BaseURL        string `yaml:"base_url,omitempty" validate:"required,url"`
	OrganizationID string `yaml:"organization_id,omitempty" validate:"required"`
	AccessToken    string `yaml:"access_token,omitempty" validate:"required"`
}

var config *Config

var configValidator = newConfigValidator()

// newConfigValidator reports fields by their yaml names.
func newConfigValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., $XDG_CONFIG_HOME/dsctl on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "dsctl", DefaultConfigFile), nil
}

// LoadConfig loads the configuration from the specified file
// If no file is specified, it uses the default config location
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	var c Config
	if err = yaml.Unmarshal(yamlStr, &c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}
	c.applyEnv()
	c.Cloud.BaseURL = MorphServer(c.Cloud.BaseURL)

	if err := c.ValidateConfig(); err != nil {
		return err
	}
	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// applyEnv lets the environment override the cloud settings.
func (cfg *Config) applyEnv() {
	if v := os.Getenv(EnvCloudBaseURL); v != "" {
		cfg.Cloud.BaseURL = v
	}
	if v := os.Getenv(EnvCloudOrganizationID); v != "" {
		cfg.Cloud.OrganizationID = v
	}
	if v := os.Getenv(EnvCloudAccessToken); v != "" {
		cfg.Cloud.AccessToken = v
	}
}

// WriteConfig writes the current configuration to the specified file
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	// the file may carry an access token
	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// ValidateConfig checks the common fields and the settings of the selected
// backend. Sections of other backends may be incomplete.
func (cfg *Config) ValidateConfig() error {
	if err := validateSection("", cfg); err != nil {
		return err
	}
	switch cfg.Backend {
	case BackendInline:
		return validateSection(BackendInline, cfg.Inline)
	case BackendDatabase:
		return validateSection(BackendDatabase, cfg.Database)
	case BackendCloud:
		return validateSection(BackendCloud, cfg.Cloud)
	}
	return nil
}

func validateSection(section string, v any) error {
	err := configValidator.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	field := fe.Field()
	if section != "" {
		field = section + "." + field
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", field, fe.Param())
	case "url":
		return fmt.Errorf("%s must be a URL", field)
	}
	return fmt.Errorf("%s is invalid", field)
}

// Print writes the current configuration in a human-readable format
func (cfg *Config) Print(w io.Writer) {
	fmt.Fprintf(w, "Backend: %s\n", cfg.Backend)
	switch cfg.Backend {
	case BackendInline:
		fmt.Fprintf(w, "Context root: %s\n", cfg.Inline.ContextRoot)
	case BackendDatabase:
		fmt.Fprintf(w, "Database driver: %s\n", cfg.Database.Driver)
	case BackendCloud:
		fmt.Fprintf(w, "Cloud: %s\n", cfg.Cloud.BaseURL)
		fmt.Fprintf(w, "Organization: %s\n", cfg.Cloud.OrganizationID)
	}
}

// MorphServer ensures the server URL is properly formatted
// Adds http:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}

	// Remove any trailing slashes
	server = strings.TrimRight(server, "/")

	// Add http:// if no protocol is specified
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}

	return server
}
