package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type ConfigParam struct {
	ServerPort     string   `toml:"server_port"`
	HandleCORS     bool     `toml:"handle_cors"`
	AllowedOrigins []string `toml:"allowed_origins"`
	AccessToken    string   `toml:"access_token"`
	LogLevel       string   `toml:"log_level"`
}

const (
	DefaultServerPort  = "8195"
	DefaultAccessToken = "local-dev-token"
)

var cfg *ConfigParam

func Config() *ConfigParam {
	return cfg
}

// LoadConfig reads the TOML file at filename into the global config. An
// empty filename loads the defaults. Unset values in the file fall back to
// the defaults as well.
func LoadConfig(filename string) error {
	cp := defaultConfig()
	if filename == "" {
		cfg = cp
		return nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	if _, err := toml.Decode(string(content), cp); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}
	if cp.HandleCORS && len(cp.AllowedOrigins) == 0 {
		cp.AllowedOrigins = []string{"http://localhost:*"}
	}
	cfg = cp
	return nil
}

func defaultConfig() *ConfigParam {
	return &ConfigParam{
		ServerPort:     DefaultServerPort,
		HandleCORS:     false,
		AllowedOrigins: []string{"http://localhost:*"},
		AccessToken:    DefaultAccessToken,
		LogLevel:       "info",
	}
}

func init() {
	err := LoadConfig("")
	if err != nil {
		panic(err)
	}
}
