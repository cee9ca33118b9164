package env

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Default front end endpoints, matching a stock Mongrel2 handler config
const (
	DefaultReqAddr = "tcp://127.0.0.1:9997"
	DefaultRepAddr = "tcp://127.0.0.1:9996"
)

type Config struct {
	// SenderID is the identity of the reply socket. "auto" generates one.
	SenderID string `env:"M2_SENDER_ID" toml:"sender_id"`

	ReqAddrs []string `env:"M2_REQ_ADDRS" toml:"req_addrs"`
	RepAddrs []string `env:"M2_REP_ADDRS" toml:"rep_addrs"`

	Workers   int     `env:"M2_WORKERS" toml:"workers"`
	RateLimit float64 `env:"M2_RATE_LIMIT" toml:"rate_limit"`
	Burst     int     `env:"M2_BURST" toml:"burst"`

	Trace     bool `env:"M2_TRACE" toml:"trace"`
	Debug     bool `env:"M2_DEBUG" toml:"debug"`
	DebugHTTP bool `env:"M2_DEBUG_HTTP" toml:"debug_http"`
}

// LoadConfig loads .env.local if it exists, then the TOML file at path if
// one is given, then the M2_* environment variables. Later sources override
// earlier ones.
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &config); err != nil {
			return nil, fmt.Errorf("Failed to load config from '%s': %w", path, err)
		}
	}

	fromEnv := Config{}
	if err := envconfig.Process(ctx, &fromEnv); err != nil {
		return nil, err
	}

	config.merge(fromEnv)
	config.applyDefaults()

	return &config, nil
}

// merge copies every field that is set in other
func (c *Config) merge(other Config) {
	if other.SenderID != "" {
		c.SenderID = other.SenderID
	}

	if len(other.ReqAddrs) > 0 {
		c.ReqAddrs = other.ReqAddrs
	}

	if len(other.RepAddrs) > 0 {
		c.RepAddrs = other.RepAddrs
	}

	if other.Workers != 0 {
		c.Workers = other.Workers
	}

	if other.RateLimit != 0 {
		c.RateLimit = other.RateLimit
	}

	if other.Burst != 0 {
		c.Burst = other.Burst
	}

	c.Trace = c.Trace || other.Trace
	c.Debug = c.Debug || other.Debug
	c.DebugHTTP = c.DebugHTTP || other.DebugHTTP
}

func (c *Config) applyDefaults() {
	if len(c.ReqAddrs) == 0 {
		c.ReqAddrs = []string{DefaultReqAddr}
	}

	if len(c.RepAddrs) == 0 {
		c.RepAddrs = []string{DefaultRepAddr}
	}
}
