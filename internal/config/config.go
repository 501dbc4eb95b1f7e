package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`

	Capture CaptureConfig `mapstructure:"capture"`
	Board   BoardConfig   `mapstructure:"board"`
	ICE     ICEConfig     `mapstructure:"ice"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Draw    DrawConfig    `mapstructure:"draw"`
}

type CaptureConfig struct {
	TrackName string `mapstructure:"track_name"`
	StreamID  string `mapstructure:"stream_id"`
	FPS       int    `mapstructure:"fps"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	Quality   int    `mapstructure:"quality"`
}

type BoardConfig struct {
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	Background string `mapstructure:"background"`
}

type ICEConfig struct {
	URLs []string `mapstructure:"urls"`
}

// MQTTConfig enables the MQTT command source when Broker is set.
type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Prefix   string `mapstructure:"prefix"`
}

type DrawConfig struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

// Flags returns the command-line flags Load understands.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("slate", pflag.ContinueOnError)
	fs.String("env", "", "config environment, selects config/config.<env>.yaml")
	fs.String("mode", "", "gin mode: debug or release")
	fs.Int("port", 0, "HTTP listen port")
	fs.String("log-level", "", "zerolog level")
	fs.String("mqtt-broker", "", "MQTT broker URL, empty disables the MQTT source")
	return fs
}

var flagKeys = map[string]string{
	"mode":        "mode",
	"port":        "port",
	"log-level":   "log_level",
	"mqtt-broker": "mqtt.broker",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "slate-dev-secret")
	v.SetDefault("log_level", "info")

	v.SetDefault("capture.track_name", "excalidraw")
	v.SetDefault("capture.stream_id", "")
	v.SetDefault("capture.fps", 30)
	v.SetDefault("capture.width", 0)
	v.SetDefault("capture.height", 0)
	v.SetDefault("capture.quality", 75)

	v.SetDefault("board.width", 1280)
	v.SetDefault("board.height", 720)
	v.SetDefault("board.background", "#ffffff")

	v.SetDefault("ice.urls", []string{"stun:stun.l.google.com:19302"})

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.prefix", "slate")

	v.SetDefault("draw.rate", 60.0)
	v.SetDefault("draw.burst", 120)
}

// Load reads defaults, then config/config.<env>.yaml, then SLATE_*
// environment variables, then flags. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, *viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("SLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	env := os.Getenv("CONFIG_ENV")
	if fs != nil {
		if f := fs.Lookup("env"); f != nil && f.Changed {
			env = f.Value.String()
		}
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("module", "config").
		Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).
		Msg("config ready")
	return cfg, v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Capture.FPS <= 0 {
		return fmt.Errorf("capture.fps must be positive, got %d", c.Capture.FPS)
	}
	if c.Board.Width <= 0 || c.Board.Height <= 0 {
		return fmt.Errorf("board size must be positive, got %dx%d", c.Board.Width, c.Board.Height)
	}
	if c.Capture.TrackName == "" {
		return fmt.Errorf("capture.track_name must not be empty")
	}
	return nil
}

// Watch calls onChange with the re-read config whenever the config file
// changes. Invalid edits are logged and skipped.
func Watch(v *viper.Viper, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			log.Error().Err(err).Str("module", "config").Str("file", e.Name).Msg("reload failed")
			return
		}
		log.Info().Str("module", "config").Str("file", e.Name).Msg("config reloaded")
		onChange(cfg)
	})
	v.WatchConfig()
}
