// Package config provides configuration management for cnftdrop.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version int           `yaml:"version"`
	Home    string        `yaml:"home"`
	RPC     RPCConfig     `yaml:"rpc"`
	Funding FundingConfig `yaml:"funding"`
	Mint    MintConfig    `yaml:"mint"`
	Claim   ClaimConfig   `yaml:"claim"`
	Keys    KeysConfig    `yaml:"keys"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Metrics MetricsConfig `yaml:"metrics"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// RPCConfig defines the Solana RPC connection settings.
type RPCConfig struct {
	URL            string        `yaml:"url"`
	Commitment     string        `yaml:"commitment"`
	ConfirmTimeout time.Duration `yaml:"confirm_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	RatePerSecond  float64       `yaml:"rate_per_second"`
	Burst          int           `yaml:"burst"`
}

// FundingConfig defines how much each claim wallet receives.
type FundingConfig struct {
	ClaimLamports uint64 `yaml:"claim_lamports"`
}

// MintConfig defines the fixed parts of the minted metadata.
type MintConfig struct {
	SellerFeeBasisPoints uint16 `yaml:"seller_fee_basis_points"`
	IncludeClaimCreator  bool   `yaml:"include_claim_creator"`
}

// ClaimConfig defines how claim links are rendered.
type ClaimConfig struct {
	BaseURL string `yaml:"base_url"`
}

// KeysConfig defines where key material is read from.
type KeysConfig struct {
	// Payer is a keypair file path, "secretmanager://<version name>" or "mnemonic".
	Payer    string `yaml:"payer"`
	TreeFile string `yaml:"tree_file"`
}

// LedgerConfig defines where run results are written.
type LedgerConfig struct {
	Dir        string   `yaml:"dir"`
	Recipients []string `yaml:"recipients,omitempty"`
}

// MetricsConfig defines the optional Prometheus Pushgateway target.
type MetricsConfig struct {
	PushGateway string `yaml:"push_gateway"`
	Job         string `yaml:"job"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dropperr.WithCause(dropperr.ErrConfigNotFound, err)
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, dropperr.WithCause(dropperr.ErrConfigInvalid, err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	details := map[string]string{}

	switch c.RPC.Commitment {
	case CommitmentConfirmed, CommitmentFinalized:
	default:
		details["rpc.commitment"] = c.RPC.Commitment + " (use confirmed or finalized)"
	}
	if strings.TrimSpace(c.RPC.URL) == "" {
		details["rpc.url"] = "empty"
	}
	if c.RPC.ConfirmTimeout <= 0 {
		details["rpc.confirm_timeout"] = c.RPC.ConfirmTimeout.String()
	}
	if c.RPC.PollInterval <= 0 {
		details["rpc.poll_interval"] = c.RPC.PollInterval.String()
	}
	if c.Funding.ClaimLamports == 0 {
		details["funding.claim_lamports"] = "0"
	}
	if c.Mint.SellerFeeBasisPoints > 10000 {
		details["mint.seller_fee_basis_points"] = "above 10000"
	}

	if len(details) > 0 {
		return dropperr.WithDetails(dropperr.ErrConfigInvalid, details)
	}
	return nil
}

// Rehome moves the paths that live under the current home directory to home.
func (c *Config) Rehome(home string) {
	old := c.Home
	c.Home = home
	for _, p := range []*string{&c.Keys.Payer, &c.Keys.TreeFile, &c.Ledger.Dir, &c.Logging.File} {
		if rest, ok := strings.CutPrefix(*p, old); ok && (rest == "" || strings.HasPrefix(rest, "/")) {
			*p = filepath.Join(home, rest)
		}
	}
}

// GetHome returns the cnftdrop home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetRPCURL returns the Solana RPC URL.
func (c *Config) GetRPCURL() string {
	return c.RPC.URL
}

// GetCommitment returns the commitment level transactions are confirmed at.
func (c *Config) GetCommitment() string {
	return c.RPC.Commitment
}

// GetConfirmTimeout returns how long a submitted transaction may take to confirm.
func (c *Config) GetConfirmTimeout() time.Duration {
	return c.RPC.ConfirmTimeout
}

// GetClaimLamports returns the funding constant for claim wallets.
func (c *Config) GetClaimLamports() uint64 {
	return c.Funding.ClaimLamports
}

// GetClaimBaseURL returns the prefix of generated claim links.
func (c *Config) GetClaimBaseURL() string {
	return c.Claim.BaseURL
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// DefaultHome returns the default cnftdrop home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cnftdrop"
	}
	return filepath.Join(home, ".cnftdrop")
}

// ExpandPath expands a leading "~/" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}
