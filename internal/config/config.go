package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every knob the console reads at startup. All backend access
// goes through the one API section here; no call site carries its own base
// URL or token.
type Config struct {
	LogLevel string `mapstructure:"logLevel"`
	LogFile  string `mapstructure:"logFile"`

	API struct {
		BaseURL     string        `mapstructure:"baseURL"`
		BearerToken string        `mapstructure:"bearerToken"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`

	Realtime struct {
		URL          string        `mapstructure:"url"`
		Channel      string        `mapstructure:"channel"`
		Event        string        `mapstructure:"event"`
		PingInterval time.Duration `mapstructure:"pingInterval"`
		MaxBackoff   time.Duration `mapstructure:"maxBackoff"`
	} `mapstructure:"realtime"`

	Media struct {
		CacheDir       string `mapstructure:"cacheDir"`
		MaxUploadBytes int64  `mapstructure:"maxUploadBytes"`
	} `mapstructure:"media"`

	StateDir string `mapstructure:"stateDir"`
}

// Load reads configuration from an optional waconsole.yaml plus WACONSOLE_*
// environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	stateDir := defaultStateDir()
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", filepath.Join(stateDir, "waconsole.log"))
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("realtime.channel", "chat-channel")
	v.SetDefault("realtime.event", "new-message")
	v.SetDefault("realtime.pingInterval", 25*time.Second)
	v.SetDefault("realtime.maxBackoff", time.Minute)
	v.SetDefault("media.cacheDir", filepath.Join(stateDir, "media"))
	v.SetDefault("media.maxUploadBytes", int64(50*1024*1024))
	v.SetDefault("stateDir", stateDir)

	v.SetConfigName("waconsole")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath(stateDir)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, env vars can carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("WACONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		"logLevel", "logFile", "stateDir",
		"api.baseURL", "api.bearerToken", "api.timeout",
		"realtime.url", "realtime.channel", "realtime.event",
		"media.cacheDir", "media.maxUploadBytes",
	} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.baseURL is required (set WACONSOLE_API_BASEURL or waconsole.yaml)")
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.Realtime.URL == "" {
		return nil, fmt.Errorf("realtime.url is required")
	}

	return &cfg, nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".waconsole"
	}
	return filepath.Join(home, ".waconsole")
}
