package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	StaticPath    string        `mapstructure:"static_path"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
	WriteWait     time.Duration `mapstructure:"write_wait"`
	SendBuffer    int           `mapstructure:"send_buffer"`
	Secret        string        `mapstructure:"secret"`
	HostSecret    string        `mapstructure:"host_secret"`
	HostAuthRate  float64       `mapstructure:"host_auth_rate"`
	HostAuthBurst int           `mapstructure:"host_auth_burst"`
	ICEServers    []string      `mapstructure:"ice_servers"`
	LogLevel      string        `mapstructure:"log_level"`
}

// PongWait is how long a silent peer is tolerated.
func (c *Config) PongWait() time.Duration {
	return c.PingPeriod * 10 / 9
}

// Load reads config/config.<env>.yaml, CAST_* variables and flags from args,
// in increasing order of precedence.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("cast", pflag.ContinueOnError)
	fs.Int("port", 3000, "listen port")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("config-env", "", "config environment, selects config/config.<env>.yaml")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CAST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	env, _ := fs.GetString("config-env")
	if env == "" {
		env = os.Getenv("CONFIG_ENV")
	}
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", uuid.NewString())
	v.SetDefault("host_secret", "")
	v.SetDefault("host_auth_rate", 6)
	v.SetDefault("host_auth_burst", 3)
	v.SetDefault("ice_servers", []string{
		"stun:stun.l.google.com:19302",
		"stun:stun1.l.google.com:19302",
		"stun:stun2.l.google.com:19302",
	})
	v.SetDefault("log_level", "info")

	if err := v.BindPFlag("port", fs.Lookup("port")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("log_level", fs.Lookup("log-level")); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Bool("host_enabled", cfg.HostSecret != "").Msg("config")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.PingPeriod <= 0 {
		return fmt.Errorf("invalid ping_period %s", c.PingPeriod)
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("invalid send_buffer %d", c.SendBuffer)
	}
	return nil
}
