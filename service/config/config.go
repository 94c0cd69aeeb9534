package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/brojonat/solwallet/service/solana"
	"github.com/gagliardetto/solana-go/rpc"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Solana configuration
	Cluster      solana.Cluster
	SolanaRPCURL string // defaults to the cluster's public endpoint
	Commitment   rpc.CommitmentType

	// Wallet configuration
	KeypairPath string

	// NATS configuration, empty disables event publishing
	NATSURL string

	MetricsEnabled bool
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	// Server configuration
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Solana configuration
	cluster, err := solana.ParseCluster(getEnvOrDefault("SOLANA_CLUSTER", string(solana.DefaultCluster)))
	if err != nil {
		errs = append(errs, fmt.Errorf("SOLANA_CLUSTER: %w", err))
	} else {
		cfg.Cluster = cluster
		cfg.SolanaRPCURL = getEnvOrDefault("SOLANA_RPC_URL", cluster.RPCURL())
	}

	commitment, err := solana.ParseCommitment(getEnvOrDefault("SOLANA_COMMITMENT", string(rpc.CommitmentProcessed)))
	if err != nil {
		errs = append(errs, fmt.Errorf("SOLANA_COMMITMENT: %w", err))
	} else {
		cfg.Commitment = commitment
	}

	// Wallet configuration
	cfg.KeypairPath = os.Getenv("WALLET_KEYPAIR_PATH")
	if cfg.KeypairPath == "" {
		errs = append(errs, fmt.Errorf("WALLET_KEYPAIR_PATH is required"))
	}

	// NATS configuration
	cfg.NATSURL = os.Getenv("NATS_URL")

	metricsEnabled, err := parseBool("METRICS_ENABLED", true)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.MetricsEnabled = metricsEnabled
	}

	// Return all validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.ServerAddr == "" {
		errs = append(errs, fmt.Errorf("ServerAddr is required"))
	}

	if _, err := solana.ParseCluster(string(c.Cluster)); err != nil {
		errs = append(errs, fmt.Errorf("Cluster: %w", err))
	}

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	if _, err := solana.ParseCommitment(string(c.Commitment)); err != nil {
		errs = append(errs, fmt.Errorf("Commitment: %w", err))
	}

	if c.KeypairPath == "" {
		errs = append(errs, fmt.Errorf("KeypairPath is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseBool parses a boolean from an environment variable or uses a default.
func parseBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q: %w", key, value, err)
	}
	return result, nil
}
