package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
	Journal JournalConfig `mapstructure:"journal"`
}

type HTTPConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DBConfig struct {
	Source string `mapstructure:"source"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type StorageConfig struct {
	// Driver is one of "file", "redis" or "memory".
	Driver    string        `mapstructure:"driver"`
	Path      string        `mapstructure:"path"`
	Retention time.Duration `mapstructure:"retention"`
	Redis     RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// SessionConfig holds the timing knobs of the session lifecycle.
type SessionConfig struct {
	SessionDuration       time.Duration `mapstructure:"session_duration"`
	RememberMeDuration    time.Duration `mapstructure:"remember_me_duration"`
	WarningThreshold      time.Duration `mapstructure:"warning_threshold"`
	ActivityCheckInterval time.Duration `mapstructure:"activity_check_interval"`
	MaxExtensions         int           `mapstructure:"max_extensions"`
	UIRefreshInterval     time.Duration `mapstructure:"ui_refresh_interval"`
	ActivityThrottle      time.Duration `mapstructure:"activity_throttle"`
}

type JournalConfig struct {
	Buffer int `mapstructure:"buffer"`
}

// DefaultSessionConfig returns the timings used when nothing is configured.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		SessionDuration:       30 * time.Minute,
		RememberMeDuration:    7 * 24 * time.Hour,
		WarningThreshold:      5 * time.Minute,
		ActivityCheckInterval: time.Minute,
		MaxExtensions:         3,
		UIRefreshInterval:     time.Second,
		ActivityThrottle:      time.Second,
	}
}

func setDefaults(v *viper.Viper) {
	s := DefaultSessionConfig()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("db.source", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "./data/sessions")
	v.SetDefault("storage.retention", time.Duration(0))
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.prefix", "kaizen")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("session.session_duration", s.SessionDuration)
	v.SetDefault("session.remember_me_duration", s.RememberMeDuration)
	v.SetDefault("session.warning_threshold", s.WarningThreshold)
	v.SetDefault("session.activity_check_interval", s.ActivityCheckInterval)
	v.SetDefault("session.max_extensions", s.MaxExtensions)
	v.SetDefault("session.ui_refresh_interval", s.UIRefreshInterval)
	v.SetDefault("session.activity_throttle", s.ActivityThrottle)
	v.SetDefault("journal.buffer", 256)
}

// Load reads ./configs/settings.yml (or /configs/settings.yml) and overlays
// the environment, e.g. SESSION_MAX_EXTENSIONS=5 or DB_SOURCE=postgres://...
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath("./configs")
	v.AddConfigPath("/configs")
	v.SetConfigName("settings")
	v.SetConfigType("yml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the session timings and that the storage backend keeps a
// record at least as long as the longest session can live.
func (c Config) Validate() error {
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if r := c.Storage.Retention; r > 0 && r < max(c.Session.SessionDuration, c.Session.RememberMeDuration) {
		return fmt.Errorf("config: storage.retention %s is shorter than the longest session (%s)",
			r, max(c.Session.SessionDuration, c.Session.RememberMeDuration))
	}
	return nil
}

// Validate rejects timing combinations the session manager cannot honour.
func (c SessionConfig) Validate() error {
	switch {
	case c.SessionDuration <= 0:
		return errors.New("config: session.session_duration must be positive")
	case c.RememberMeDuration <= 0:
		return errors.New("config: session.remember_me_duration must be positive")
	case c.WarningThreshold <= 0:
		return errors.New("config: session.warning_threshold must be positive")
	case c.WarningThreshold >= c.SessionDuration:
		return errors.New("config: session.warning_threshold must be shorter than session.session_duration")
	case c.ActivityCheckInterval <= 0:
		return errors.New("config: session.activity_check_interval must be positive")
	case c.UIRefreshInterval <= 0:
		return errors.New("config: session.ui_refresh_interval must be positive")
	case c.ActivityThrottle < 0:
		return errors.New("config: session.activity_throttle must not be negative")
	case c.MaxExtensions < 0:
		return errors.New("config: session.max_extensions must not be negative")
	}
	return nil
}
