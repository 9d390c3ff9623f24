package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

type Store struct {
	Kind  string `yaml:"kind" env:"ONION_STORE_KIND" env-default:"memory"`
	Path  string `yaml:"path" env:"ONION_STORE_PATH"`
	DSN   string `yaml:"dsn" env:"ONION_STORE_DSN"`
	Table string `yaml:"table" env:"ONION_STORE_TABLE" env-default:"onion_nodes"`
}

type Directory struct {
	Host    string `yaml:"host" env:"ONION_DIRECTORY_HOST" env-default:"localhost"`
	Port    int    `yaml:"port" env:"ONION_DIRECTORY_PORT" env-default:"8080"`
	Store   Store  `yaml:"store"`
	Address string `yaml:"-"`
}

type Mailbox struct {
	Kind      string `yaml:"kind" env:"ONION_MAILBOX_KIND" env-default:"memory"`
	RedisAddr string `yaml:"redis_addr" env:"ONION_REDIS_ADDR" env-default:"localhost:6379"`
	RedisDB   int    `yaml:"redis_db" env:"ONION_REDIS_DB"`
}

type Relay struct {
	ID             int    `yaml:"id"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	PrometheusPort int    `yaml:"prometheus_port"`
	Address        string `yaml:"-"`
}

type User struct {
	ID             int    `yaml:"id"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	PrometheusPort int    `yaml:"prometheus_port"`
	Address        string `yaml:"-"`
}

type Metrics struct {
	Host    string `yaml:"host" env-default:"localhost"`
	Port    int    `yaml:"port" env-default:"9090"`
	Address string `yaml:"-"`
}

type Config struct {
	CircuitLength         int       `yaml:"circuit_length" env:"ONION_CIRCUIT_LENGTH" env-default:"3"`
	Scheme                string    `yaml:"scheme" env:"ONION_SCHEME" env-default:"rsa-oaep"`
	BaseRelayPort         int       `yaml:"base_relay_port" env:"ONION_BASE_RELAY_PORT" env-default:"4000"`
	BaseUserPort          int       `yaml:"base_user_port" env:"ONION_BASE_USER_PORT" env-default:"3000"`
	Directory             Directory `yaml:"directory"`
	Mailbox               Mailbox   `yaml:"mailbox"`
	Relays                []Relay   `yaml:"relays"`
	Users                 []User    `yaml:"users"`
	Metrics               Metrics   `yaml:"metrics"`
	LogLevel              string    `yaml:"log_level" env:"ONION_LOG_LEVEL" env-default:"info"`
	DebugExposePrivateKey bool      `yaml:"debug_expose_private_key" env:"ONION_DEBUG_EXPOSE_PRIVATE_KEY"`
	ScrapeInterval        int       `yaml:"scrape_interval" env-default:"5"`
}

var GlobalConfig *Config
var GlobalCtx context.Context
var GlobalCancel context.CancelFunc

// InitGlobal loads config/config.yml from the working directory, falling back
// to the copy next to this package. It returns the path of the prometheus
// config that belongs next to the loaded file.
func InitGlobal() (string, error) {
	GlobalCtx, GlobalCancel = context.WithCancel(context.Background())

	path, err := findConfigFile()
	if err != nil {
		return "", err
	}
	if GlobalConfig, err = LoadConfig(path); err != nil {
		return "", err
	}
	return strings.ReplaceAll(path, "config.yml", "prometheus.yml"), nil
}

func findConfigFile() (string, error) {
	if dir, err := os.Getwd(); err == nil {
		path := filepath.Join(dir, "config", "config.yml")
		if _, err = os.Stat(path); err == nil {
			return path, nil
		}
	}
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(currentFile), "config.yml")
	if _, err := os.Stat(path); err != nil {
		return "", errors.Wrap(err, "config.yml not found")
	}
	return path, nil
}

// LoadConfig reads the yaml file at path and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a config built from defaults and environment variables only.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read config from environment")
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	if c.CircuitLength <= 0 {
		return errors.Errorf("circuit_length must be positive, got %d", c.CircuitLength)
	}
	for i := range c.Relays {
		c.Relays[i].Address = fmt.Sprintf("http://%s:%d", c.Relays[i].Host, c.Relays[i].Port)
	}
	for i := range c.Users {
		c.Users[i].Address = fmt.Sprintf("http://%s:%d", c.Users[i].Host, c.Users[i].Port)
	}
	c.Directory.Address = fmt.Sprintf("http://%s:%d", c.Directory.Host, c.Directory.Port)
	c.Metrics.Address = fmt.Sprintf("http://%s:%d", c.Metrics.Host, c.Metrics.Port)
	return nil
}

// UserAddress returns the delivery address of a user. Users missing from the
// config listen on localhost at BaseUserPort+id.
func (c *Config) UserAddress(id int) string {
	for _, user := range c.Users {
		if user.ID == id {
			return user.Address
		}
	}
	return fmt.Sprintf("http://localhost:%d", c.BaseUserPort+id)
}

// RelayAddress returns the configured address of a relay, or localhost at BaseRelayPort+id.
func (c *Config) RelayAddress(id int) string {
	for _, relay := range c.Relays {
		if relay.ID == id {
			return relay.Address
		}
	}
	return fmt.Sprintf("http://localhost:%d", c.BaseRelayPort+id)
}

func (c *Config) GetRelay(id int) (Relay, bool) {
	for _, relay := range c.Relays {
		if relay.ID == id {
			return relay, true
		}
	}
	return Relay{}, false
}

func (c *Config) GetUser(id int) (User, bool) {
	for _, user := range c.Users {
		if user.ID == id {
			return user, true
		}
	}
	return User{}, false
}
