package config

import (
	"fmt"
	"time"

	"ctchen222/tictactoe-engine/internal/validator"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string    `yaml:"env" env:"TTT_ENV" env-default:"local"`
	LogLevel  string    `yaml:"log-level" env:"TTT_LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	LogFormat string    `yaml:"log-format" env:"TTT_LOG_FORMAT" env-default:"text" validate:"oneof=text json"`
	HTTPPort  string    `yaml:"http-port" env:"TTT_HTTP_PORT" env-default:"8080" validate:"required,numeric"`
	Game      Game      `yaml:"game"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type Game struct {
	ThinkDelay        time.Duration `yaml:"think-delay" env:"TTT_THINK_DELAY" env-default:"500ms" validate:"min=0"`
	Seed              uint64        `yaml:"seed" env:"TTT_SEED" env-default:"0"`
	DefaultMode       string        `yaml:"default-mode" env:"TTT_DEFAULT_MODE" env-default:"pvp" validate:"oneof=pvp pvc"`
	DefaultDifficulty string        `yaml:"default-difficulty" env:"TTT_DEFAULT_DIFFICULTY" env-default:"easy" validate:"oneof=easy medium hard"`
	SessionTTL        time.Duration `yaml:"session-ttl" env:"TTT_SESSION_TTL" env-default:"30m" validate:"gt=0"`
	JanitorInterval   time.Duration `yaml:"janitor-interval" env:"TTT_JANITOR_INTERVAL" env-default:"1m" validate:"gt=0"`
}

type Telemetry struct {
	Enabled           bool   `yaml:"enabled" env:"TTT_TELEMETRY_ENABLED" env-default:"false"`
	CollectorEndpoint string `yaml:"collector-endpoint" env:"TTT_OTEL_ENDPOINT" env-default:"otel-collector:4317"`
	ServiceName       string `yaml:"service-name" env:"TTT_SERVICE_NAME" env-default:"tic-tac-toe"`
	ServiceVersion    string `yaml:"service-version" env:"TTT_SERVICE_VERSION" env-default:"v0.1.0"`
	StdoutTraces      bool   `yaml:"stdout-traces" env:"TTT_STDOUT_TRACES" env-default:"false"`
}

// Load reads the yaml file at path, then the environment. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(config)
	} else {
		err = cleanenv.ReadConfig(path, config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := validator.GetValidator().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %s", validator.Describe(err))
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Addr is the listen address for the HTTP server.
func (that *Config) Addr() string {
	return ":" + that.HTTPPort
}
