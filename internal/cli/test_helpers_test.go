package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cnftdrop/internal/config"
	"github.com/mrz1836/cnftdrop/internal/output"
	"github.com/mrz1836/cnftdrop/internal/solana"
	"github.com/mrz1836/cnftdrop/internal/solana/bubblegum"
)

var errTreeFull = errors.New("tree is full")

// Well-known program addresses used as stand-in tree and collection keys.
const testKeysJSON = `{
  "treeAddress": "BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY",
  "collectionMint": "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s",
  "collectionMetadataAccount": "cmtDvXumGCrqC1Age74AVPhSRVXJMd8PJS91L8KbNCK",
  "collectionMasterEditionAccount": "noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV"
}`

// fakeChain stands in for the cluster. failMint lists 1-based mint calls that fail.
type fakeChain struct {
	mu         sync.Mutex
	balance    uint64
	sends      int
	mints      int
	leafOwners []common.PublicKey
	failMint   map[int]bool
}

func (f *fakeChain) SendAndConfirm(_ context.Context, _ []types.Instruction, _ types.Account, _ []types.Account, _ solana.Commitment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	return fmt.Sprintf("fund-sig-%d", f.sends), nil
}

func (f *fakeChain) MintToCollection(
	_ context.Context,
	_ types.Account,
	_ common.PublicKey,
	_ common.PublicKey,
	_ common.PublicKey,
	_ common.PublicKey,
	_ bubblegum.MetadataArgs,
	leafOwner common.PublicKey,
) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mints++
	if f.failMint[f.mints] {
		return "", errTreeFull
	}
	f.leafOwners = append(f.leafOwners, leafOwner)
	return fmt.Sprintf("mint-sig-%d", f.mints), nil
}

func (f *fakeChain) Balance(context.Context, common.PublicKey) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, nil
}

// withFakeChain replaces the chain client constructor and restores it on cleanup.
func withFakeChain(t *testing.T, chain *fakeChain) {
	t.Helper()
	orig := newChainClient
	t.Cleanup(func() { newChainClient = orig })
	newChainClient = func(*config.Config, *config.Logger) (ChainClient, error) {
		return chain, nil
	}
}

// newTestCommand returns a command wired to buffers and a config rooted in a temp dir.
func newTestCommand(t *testing.T, format output.Format) (*cobra.Command, *bytes.Buffer, *bytes.Buffer, *CommandContext) {
	t.Helper()
	t.Setenv(config.EnvLedgerSecret, "")

	cfg := config.Defaults()
	cfg.Rehome(t.TempDir())

	var stdout, stderr bytes.Buffer
	cc := &CommandContext{
		Cfg: cfg,
		Log: config.NullLogger(),
		Fmt: output.NewFormatter(format, &stdout),
	}

	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	SetCmdContext(cmd, cc)
	return cmd, &stdout, &stderr, cc
}

// writeTestKeys writes content as a keys file in dir.
func writeTestKeys(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "keys.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// writeTestPayer writes a fresh keypair file in dir.
func writeTestPayer(t *testing.T, dir string) (string, types.Account) {
	t.Helper()
	acc := types.NewAccount()
	path := filepath.Join(dir, "payer.json")
	require.NoError(t, solana.WriteKeypairFile(path, acc))
	return path, acc
}

// withMintFlags sets the mint flag variables and restores them on cleanup.
func withMintFlags(t *testing.T, keys, payer, results string, dryRun bool) {
	t.Helper()
	origCatalog, origKeys, origPayer := mintCatalogFile, mintKeysFile, mintPayer
	origResults, origEncrypt, origDryRun, origLamports := mintResultsFile, mintEncryptTo, mintDryRun, mintLamports
	t.Cleanup(func() {
		mintCatalogFile, mintKeysFile, mintPayer = origCatalog, origKeys, origPayer
		mintResultsFile, mintEncryptTo, mintDryRun, mintLamports = origResults, origEncrypt, origDryRun, origLamports
	})
	mintCatalogFile = ""
	mintKeysFile = keys
	mintPayer = payer
	mintResultsFile = results
	mintEncryptTo = nil
	mintDryRun = dryRun
	mintLamports = 0
}
