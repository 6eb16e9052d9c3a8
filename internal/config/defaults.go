package config

import "time"

// DefaultRPCURL is the default Solana RPC endpoint.
// Public mainnet-beta; heavy batches should point at a dedicated provider.
const DefaultRPCURL = "https://api.mainnet-beta.solana.com"

// DefaultClaimBaseURL prefixes every generated claim link.
const DefaultClaimBaseURL = "https://tiplink.io/i"

// DefaultClaimFundingLamports is the balance each claim wallet receives.
// 0.001 SOL covers the fees of a later sweep out of the claim wallet.
const DefaultClaimFundingLamports uint64 = 1_000_000

// Commitment levels accepted for transaction confirmation.
const (
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.cnftdrop",
		RPC: RPCConfig{
			URL:            DefaultRPCURL,
			Commitment:     CommitmentConfirmed,
			ConfirmTimeout: 60 * time.Second,
			PollInterval:   500 * time.Millisecond,
			RatePerSecond:  5,
			Burst:          10,
		},
		Funding: FundingConfig{
			ClaimLamports: DefaultClaimFundingLamports,
		},
		Mint: MintConfig{
			SellerFeeBasisPoints: 0,
			IncludeClaimCreator:  true,
		},
		Claim: ClaimConfig{
			BaseURL: DefaultClaimBaseURL,
		},
		Keys: KeysConfig{
			Payer:    "~/.cnftdrop/payer.json",
			TreeFile: "~/.cnftdrop/keys.json",
		},
		Ledger: LedgerConfig{
			Dir: "~/.cnftdrop/runs",
		},
		Metrics: MetricsConfig{
			PushGateway: "",
			Job:         "cnftdrop",
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.cnftdrop/cnftdrop.log",
		},
	}
}
