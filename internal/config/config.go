package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config is the process-level configuration. Site settings editable from the
// admin panel live in the database instead.
type Config struct {
	Addr            string `mapstructure:"addr"`
	Database        string `mapstructure:"database"`
	SessionSecret   string `mapstructure:"session_secret"`
	InsecureCookies bool   `mapstructure:"insecure_cookies"`
	MinifyHTML      bool   `mapstructure:"minify_html"`
}

const defaultSessionSecret = "change-me-shield-session-secret"

// Load reads defaults, then the config file, then SHIELD_* environment variables.
// An explicit cfgFile must exist; the default ./config.yaml is optional.
func Load(cfgFile string) (Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":37371")
	v.SetDefault("database", "site.db")
	v.SetDefault("session_secret", defaultSessionSecret)
	v.SetDefault("insecure_cookies", false)
	v.SetDefault("minify_html", true)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SHIELD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Println("Using config file:", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if cfg.SessionSecret == defaultSessionSecret {
		log.Println("session_secret is not set, using the built-in default; set SHIELD_SESSION_SECRET in production")
	}
	return cfg, nil
}
