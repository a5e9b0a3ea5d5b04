package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the per-deployment configuration of the indexer. The code-id
// allow-list and the settlement denomination are fixed here, never discovered
// at runtime.
type Config struct {
	Chain   ChainConfig   `yaml:"chain"`
	Store   StoreConfig   `yaml:"store"`
	Redis   RedisConfig   `yaml:"redis"`
	HTTP    HTTPConfig    `yaml:"http"`
	Indexer IndexerConfig `yaml:"indexer"`
}

type ChainConfig struct {
	// RPCURL is the CometBFT RPC endpoint of the chain node.
	RPCURL string `yaml:"rpc_url"`
	// StartHeight is the first block to ingest.
	StartHeight uint64 `yaml:"start_height"`
	// PollInterval is how often the feed checks for new blocks, e.g. "5s".
	PollInterval string `yaml:"poll_interval"`
}

type StoreConfig struct {
	// ClickHouseDSN is the store connection string. Empty selects the
	// in-memory store (replays, local development).
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
	Database      string `yaml:"database"`
}

type RedisConfig struct {
	// Addr enables pub/sub notifications when set.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type HTTPConfig struct {
	// MetricsAddr serves Prometheus metrics, e.g. ":9102".
	MetricsAddr string `yaml:"metrics_addr"`
	// QueryAddr serves the read-only query API, e.g. ":8080".
	QueryAddr string `yaml:"query_addr"`
}

type IndexerConfig struct {
	// CodeIDs is the allow-list of contract template identifiers whose
	// instantiations are indexed as rounds.
	CodeIDs []uint64 `yaml:"code_ids"`
	// Denom is the settlement denomination, also used for the zero-fee
	// sentinel.
	Denom string `yaml:"denom"`
	// ReplayPath, when set, replays an NDJSON feed dump instead of
	// connecting to the chain.
	ReplayPath string `yaml:"replay_path"`
}

var envPattern = regexp.MustCompile(`\${([A-Za-z_][A-Za-z0-9_]*)}`)

// Load reads the YAML config, interpolates ${ENV} references, and validates.
// A .env file next to the config is loaded first if present.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	if err := loadDotEnv(path); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	interpolated, err := interpolateEnv(string(raw))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.Indexer.Denom == "" {
		return errors.New("indexer.denom is required")
	}
	if len(c.Indexer.CodeIDs) == 0 {
		return errors.New("indexer.code_ids must list at least one contract template id")
	}
	if c.Chain.RPCURL == "" && c.Indexer.ReplayPath == "" {
		return errors.New("either chain.rpc_url or indexer.replay_path is required")
	}
	return nil
}

func loadDotEnv(configPath string) error {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(envPath); err != nil {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// interpolateEnv replaces ${VAR} references. Unset variables are an error so
// a broken deployment fails before it starts indexing.
func interpolateEnv(raw string) (string, error) {
	var missing []string
	out := envPattern.ReplaceAllStringFunc(raw, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		value, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unset environment variables referenced in config: %v", missing)
	}
	return out, nil
}
