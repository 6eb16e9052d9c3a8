package config

import (
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"

	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// Environment variable names.
const (
	EnvHome          = "CNFTDROP_HOME"
	EnvRPCURL        = "CNFTDROP_RPC_URL"
	EnvCommitment    = "CNFTDROP_COMMITMENT"
	EnvClaimLamports = "CNFTDROP_CLAIM_LAMPORTS"
	EnvPayer         = "CNFTDROP_PAYER"
	EnvTreeFile      = "CNFTDROP_TREE_FILE"
	EnvPushGateway   = "CNFTDROP_PUSHGATEWAY"
	EnvOutputFormat  = "CNFTDROP_OUTPUT_FORMAT"
	EnvVerbose       = "CNFTDROP_VERBOSE"
	EnvLogLevel      = "CNFTDROP_LOG_LEVEL"
	EnvMnemonic      = "CNFTDROP_PAYER_MNEMONIC"    // #nosec G101 -- variable name, not a credential
	EnvPassphrase    = "CNFTDROP_PAYER_PASSPHRASE"  // #nosec G101 -- variable name, not a credential
	EnvLedgerSecret  = "CNFTDROP_LEDGER_PASSPHRASE" // #nosec G101 -- variable name, not a credential
	EnvNoColor       = "NO_COLOR"

	// Unprefixed names used by older mint scripts, honored as fallbacks.
	EnvLegacyRPCURL = "RPC_URL"
	EnvLegacyPayer  = "LOCAL_PAYER_JSON_ABSPATH"
)

// environment mirrors the overridable settings.
// Empty strings and zero values mean "not set".
type environment struct {
	Home          string `envconfig:"CNFTDROP_HOME"`
	RPCURL        string `envconfig:"CNFTDROP_RPC_URL"`
	LegacyRPCURL  string `envconfig:"RPC_URL"`
	Commitment    string `envconfig:"CNFTDROP_COMMITMENT"`
	ClaimLamports uint64 `envconfig:"CNFTDROP_CLAIM_LAMPORTS"`
	Payer         string `envconfig:"CNFTDROP_PAYER"`
	LegacyPayer   string `envconfig:"LOCAL_PAYER_JSON_ABSPATH"`
	TreeFile      string `envconfig:"CNFTDROP_TREE_FILE"`
	PushGateway   string `envconfig:"CNFTDROP_PUSHGATEWAY"`
	OutputFormat  string `envconfig:"CNFTDROP_OUTPUT_FORMAT"`
	Verbose       string `envconfig:"CNFTDROP_VERBOSE"`
	LogLevel      string `envconfig:"CNFTDROP_LOG_LEVEL"`
	NoColor       string `envconfig:"NO_COLOR"`
}

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) error {
	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return dropperr.WithCause(dropperr.ErrConfigInvalid, err)
	}

	if env.Home != "" {
		cfg.Home = env.Home
	}

	// The unprefixed RPC_URL only applies when the prefixed variable is unset
	if env.RPCURL != "" {
		cfg.RPC.URL = SanitizeURL(env.RPCURL)
	} else if env.LegacyRPCURL != "" {
		cfg.RPC.URL = SanitizeURL(env.LegacyRPCURL)
	}

	if env.Commitment != "" {
		cfg.RPC.Commitment = strings.ToLower(strings.TrimSpace(env.Commitment))
	}

	if env.ClaimLamports > 0 {
		cfg.Funding.ClaimLamports = env.ClaimLamports
	}

	if env.Payer != "" {
		cfg.Keys.Payer = env.Payer
	} else if env.LegacyPayer != "" {
		cfg.Keys.Payer = env.LegacyPayer
	}

	if env.TreeFile != "" {
		cfg.Keys.TreeFile = env.TreeFile
	}

	if env.PushGateway != "" {
		cfg.Metrics.PushGateway = SanitizeURL(env.PushGateway)
	}

	if env.OutputFormat != "" {
		cfg.Output.DefaultFormat = strings.ToLower(env.OutputFormat)
	}

	if env.Verbose != "" {
		cfg.Output.Verbose = parseBool(env.Verbose)
	}

	if env.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(env.LogLevel)
	}

	// NO_COLOR disables colored output
	if env.NoColor != "" {
		cfg.Output.Color = "never"
	}

	return nil
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL trims whitespace and copy-paste artifacts from a URL.
func SanitizeURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.Trim(url, `"'`)
	return strings.TrimRight(url, "/")
}
