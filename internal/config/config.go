// Package config loads the settings shared by the server, the console and
// the simulator: an optional YAML file, then .env, then the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v4"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port                   string   `yaml:"port"`
	AllowedOrigins         []string `yaml:"allowed_origins"`
	RateLimit              int      `yaml:"rate_limit"`
	RateWindowSeconds      int      `yaml:"rate_window_seconds"`
	TrustProxy             bool     `yaml:"trust_proxy"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
}

type StorageConfig struct {
	Driver   string `yaml:"driver"` // "memory" | "mongo"
	MongoURI string `yaml:"mongo_uri"`
	MongoDB  string `yaml:"mongo_db"`
}

// MQTTConfig configures change events. An empty Broker disables them.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	TopicPrefix string `yaml:"topic_prefix"`
	ClientID    string `yaml:"client_id"`
}

// APIConfig is where the console and the simulator reach the server.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" | "json"
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:                   "8080",
			AllowedOrigins:         []string{"http://localhost:4200"},
			RateWindowSeconds:      60,
			ShutdownTimeoutSeconds: 10,
		},
		Storage: StorageConfig{
			Driver:  StorageMemory,
			MongoDB: "fleet",
		},
		MQTT: MQTTConfig{
			TopicPrefix: "fleet",
			ClientID:    "fleet-console",
		},
		API: APIConfig{
			BaseURL:        "http://localhost:8080",
			TimeoutSeconds: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal YAML")
	}
	return &cfg, nil
}

// Load builds the configuration: defaults, the YAML file named by
// CONFIG_PATH if any, then environment variables, with a .env file in the
// working directory loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		fromFile, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *fromFile
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from the environment. Setting MONGO_URI without
// STORAGE selects the mongo driver.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set("PORT", &c.Server.Port)
	set("MONGO_URI", &c.Storage.MongoURI)
	set("MONGO_DB", &c.Storage.MongoDB)
	set("STORAGE", &c.Storage.Driver)
	if getenv("STORAGE") == "" && getenv("MONGO_URI") != "" {
		c.Storage.Driver = StorageMongo
	}
	set("MQTT_BROKER", &c.MQTT.Broker)
	set("MQTT_TOPIC_PREFIX", &c.MQTT.TopicPrefix)
	set("MQTT_CLIENT_ID", &c.MQTT.ClientID)
	set("API_BASE_URL", &c.API.BaseURL)
	set("LOG_LEVEL", &c.Log.Level)
	set("LOG_FORMAT", &c.Log.Format)

	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "RATE_LIMIT")
		}
		c.Server.RateLimit = n
	}
	if v := getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "TRUST_PROXY")
		}
		c.Server.TrustProxy = b
	}
	if v := getenv("API_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "API_TIMEOUT_SECONDS")
		}
		c.API.TimeoutSeconds = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("storage driver mongo requires MONGO_URI")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port == "" {
		return errors.New("server port is empty")
	}
	if c.Server.RateLimit < 0 || c.Server.RateWindowSeconds < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	return nil
}

// Addr is the listen address for the API server.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Server.Port, ":")
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
