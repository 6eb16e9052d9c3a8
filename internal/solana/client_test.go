package solana_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/cnftdrop/internal/chain"
	"github.com/mrz1836/cnftdrop/internal/solana"
	"github.com/mrz1836/cnftdrop/internal/solana/bubblegum"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

var (
	errRefused = errors.New("dial tcp: connection refused")
	errBadTx   = errors.New("Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1771")
)

func newTestClient(t *testing.T, rpc *fakeRPC, mutate ...func(*solana.Config)) *solana.Client {
	t.Helper()
	cfg := solana.Config{
		Endpoint:       "http://fake",
		RPC:            rpc,
		ConfirmTimeout: time.Second,
		PollInterval:   time.Millisecond,
		Limiter:        chain.Unlimited(),
		Retry:          &chain.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := solana.NewClient(cfg)
	require.NoError(t, err)
	return c
}

func status(s string) *solana.SignatureStatus {
	return &solana.SignatureStatus{ConfirmationStatus: s}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	_, err := solana.NewClient(solana.Config{})
	require.ErrorIs(t, err, solana.ErrEndpointRequired)

	c, err := solana.NewClient(solana.Config{Endpoint: "https://api.devnet.solana.com"})
	require.NoError(t, err)
	assert.Equal(t, solana.CommitmentConfirmed, c.Commitment())
}

func TestParseCommitment(t *testing.T) {
	t.Parallel()

	c, err := solana.ParseCommitment(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, solana.CommitmentConfirmed, c)

	c, err = solana.ParseCommitment("finalized")
	require.NoError(t, err)
	assert.Equal(t, solana.CommitmentFinalized, c)

	_, err = solana.ParseCommitment("processed")
	require.ErrorIs(t, err, dropperr.ErrInvalidInput)
	_, err = solana.ParseCommitment("")
	require.ErrorIs(t, err, dropperr.ErrInvalidInput)
}

func TestSendAndConfirm_WaitsForCommitment(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.statuses = []*solana.SignatureStatus{nil, status("processed"), status("processed"), status("confirmed")}
	c := newTestClient(t, rpc)

	payer := types.NewAccount()
	sig, err := c.Transfer(context.Background(), payer, types.NewAccount().PublicKey, 1_000_000, "")
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
	assert.Equal(t, 4, rpc.statusCalls[sig])
	assert.Equal(t, 1, rpc.sentCount())
}

func TestSendAndConfirm_Finalized(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.statuses = []*solana.SignatureStatus{status("confirmed"), status("confirmed"), status("finalized")}
	c := newTestClient(t, rpc)

	sig, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.Equal(t, 3, rpc.statusCalls[sig])
}

func TestSendAndConfirm_LegacyStatus(t *testing.T) {
	t.Parallel()
	one := uint64(1)
	rpc := newFakeRPC()
	rpc.statuses = []*solana.SignatureStatus{{Confirmations: &one}}
	c := newTestClient(t, rpc)

	_, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, "")
	require.NoError(t, err)

	// Nil confirmations means rooted, which satisfies finalized
	rpc.statuses = []*solana.SignatureStatus{{Confirmations: nil}}
	_, err = c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, solana.CommitmentFinalized)
	require.NoError(t, err)
}

func TestSendAndConfirm_TransactionError(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.statuses = []*solana.SignatureStatus{{ConfirmationStatus: "confirmed", Err: map[string]any{"InstructionError": []any{0, "Custom"}}}}
	c := newTestClient(t, rpc)

	sig, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, "")
	require.ErrorIs(t, err, dropperr.ErrTxRejected)
	assert.NotEmpty(t, sig, "the signature is returned for diagnosis")

	var de *dropperr.DropError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, sig, de.Details["signature"])
	assert.Contains(t, de.Details["error"], "InstructionError")
}

func TestSendAndConfirm_Timeout(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.statuses = []*solana.SignatureStatus{nil}
	c := newTestClient(t, rpc, func(cfg *solana.Config) {
		cfg.ConfirmTimeout = 30 * time.Millisecond
		cfg.PollInterval = 5 * time.Millisecond
	})

	_, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, "")
	require.ErrorIs(t, err, dropperr.ErrConfirmTimeout)
	assert.Equal(t, 1, rpc.sentCount(), "an unconfirmed transaction is never resent")
	assert.Positive(t, rpc.blockHeightCalls(), "expiry is checked before giving up")
}

func TestSendAndConfirm_TimeoutHoldsPayerUntilExpiry(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.dropped[1] = true
	rpc.heights = []uint64{100, 120, 140, 150, 151}
	c := newTestClient(t, rpc, func(cfg *solana.Config) {
		cfg.ConfirmTimeout = 30 * time.Millisecond
		cfg.PollInterval = 2 * time.Millisecond
	})
	payer := types.NewAccount()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Transfer(context.Background(), payer, types.NewAccount().PublicKey, 1, "")
		}()
	}
	wg.Wait()

	timedOut := 0
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, dropperr.ErrConfirmTimeout)
			timedOut++
		}
	}
	assert.Equal(t, 1, timedOut)
	assert.Equal(t, 2, rpc.sentCount())
	assert.Equal(t, 1, rpc.inFlight(), "second send waits for the first blockhash to expire")
	assert.GreaterOrEqual(t, rpc.blockHeightCalls(), 5)
}

func TestSendAndConfirm_LandsAfterTimeout(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.statuses = []*solana.SignatureStatus{nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, status("confirmed")}
	rpc.heights = []uint64{10}
	c := newTestClient(t, rpc, func(cfg *solana.Config) {
		cfg.ConfirmTimeout = 15 * time.Millisecond
		cfg.PollInterval = 5 * time.Millisecond
	})

	sig, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, "")
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
	assert.Equal(t, 1, rpc.sentCount())
}

func TestSendAndConfirm_CanceledWhileHeld(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.statuses = []*solana.SignatureStatus{nil}
	rpc.heights = []uint64{10}
	c := newTestClient(t, rpc, func(cfg *solana.Config) {
		cfg.ConfirmTimeout = 10 * time.Millisecond
		cfg.PollInterval = 2 * time.Millisecond
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Transfer(ctx, types.NewAccount(), types.NewAccount().PublicKey, 1, "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Positive(t, rpc.blockHeightCalls())
}

func TestSendAndConfirm_ParentCanceled(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.statuses = []*solana.SignatureStatus{nil}
	c := newTestClient(t, rpc, func(cfg *solana.Config) {
		cfg.ConfirmTimeout = time.Minute
		cfg.PollInterval = 5 * time.Millisecond
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Transfer(ctx, types.NewAccount(), types.NewAccount().PublicKey, 1, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestSendAndConfirm_SendErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want *dropperr.DropError
	}{
		{"insufficient lamports", errors.New("Transfer: insufficient lamports 5000, need 1000000"), dropperr.ErrInsufficientFunds},
		{"no prior credit", errors.New("Attempt to debit an account but found no record of a prior credit."), dropperr.ErrInsufficientFunds},
		{"transport", errRefused, dropperr.ErrNetworkError},
		{"program error", errBadTx, dropperr.ErrTxRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rpc := newFakeRPC()
			rpc.sendErr = tt.err
			c := newTestClient(t, rpc)

			sig, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, "")
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, tt.err)
			assert.Empty(t, sig)
		})
	}
}

func TestSendAndConfirm_RetriesBlockhash(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.blockhashErrs = []error{errors.New("429 Too Many Requests"), errRefused}
	c := newTestClient(t, rpc)

	_, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 3, rpc.blockhashCalls)
}

func TestSendAndConfirm_BlockhashUnavailable(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.blockhashErrs = []error{errRefused, errRefused, errRefused}
	c := newTestClient(t, rpc)

	_, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, "")
	require.ErrorIs(t, err, dropperr.ErrNetworkError)
	assert.Zero(t, rpc.sentCount())
}

func TestSendAndConfirm_StatusLookupFails(t *testing.T) {
	t.Parallel()

	t.Run("never lands", func(t *testing.T) {
		t.Parallel()
		rpc := newFakeRPC()
		rpc.statusErrs = []error{errRefused, errRefused, errRefused}
		rpc.statuses = []*solana.SignatureStatus{nil}
		c := newTestClient(t, rpc)

		_, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, "")
		require.ErrorIs(t, err, dropperr.ErrNetworkError)
		assert.Positive(t, rpc.blockHeightCalls())
	})

	t.Run("landed during the outage", func(t *testing.T) {
		t.Parallel()
		rpc := newFakeRPC()
		rpc.statusErrs = []error{errRefused, errRefused, errRefused}
		c := newTestClient(t, rpc)

		_, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, "")
		require.NoError(t, err)
	})
}

func TestSendAndConfirm_InvalidCommitment(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	c := newTestClient(t, rpc)

	_, err := c.Transfer(context.Background(), types.NewAccount(), types.NewAccount().PublicKey, 1, solana.Commitment("max"))
	require.ErrorIs(t, err, dropperr.ErrInvalidInput)
	assert.Zero(t, rpc.blockhashCalls)
}

func TestSendAndConfirm_SerializesSubmissions(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	rpc.statuses = []*solana.SignatureStatus{nil, status("processed"), status("confirmed")}
	c := newTestClient(t, rpc)
	payer := types.NewAccount()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Transfer(context.Background(), payer, types.NewAccount().PublicKey, 1, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, rpc.sentCount())
	assert.Equal(t, 1, rpc.maxInFlight)
}

func TestTransfer_BuildsSystemTransfer(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	c := newTestClient(t, rpc)
	payer := types.NewAccount()
	to := types.NewAccount().PublicKey

	_, err := c.Transfer(context.Background(), payer, to, 1_000_000, "")
	require.NoError(t, err)

	require.Len(t, rpc.sent, 1)
	msg := rpc.sent[0].Message
	assert.Equal(t, payer.PublicKey, msg.Accounts[0], "payer is the fee payer")
	assert.Contains(t, msg.Accounts, to)
	require.Len(t, msg.Instructions, 1)
	assert.Equal(t, common.SystemProgramID, msg.Accounts[msg.Instructions[0].ProgramIDIndex])
	require.Len(t, rpc.sent[0].Signatures, 1)
}

func TestMintToCollection(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	c := newTestClient(t, rpc)

	payer := types.NewAccount()
	owner := types.NewAccount().PublicKey
	tree := types.NewAccount().PublicKey
	payload := bubblegum.MetadataArgs{
		Name:          "Compressed NFT 1",
		Symbol:        "Testy Test",
		URI:           "https://example.com/1.json",
		EditionNonce:  bubblegum.Uint8(0),
		TokenStandard: bubblegum.Uint8(bubblegum.TokenStandardNonFungible),
		Creators: []bubblegum.Creator{
			{Address: payer.PublicKey, Share: 100},
			{Address: owner, Share: 0},
		},
	}

	sig, err := c.MintToCollection(context.Background(), payer, tree,
		types.NewAccount().PublicKey, types.NewAccount().PublicKey, types.NewAccount().PublicKey,
		payload, owner)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	require.Len(t, rpc.sent, 1)
	msg := rpc.sent[0].Message
	require.Len(t, msg.Instructions, 1)
	assert.Equal(t, bubblegum.ProgramID, msg.Accounts[msg.Instructions[0].ProgramIDIndex])
	assert.Equal(t, payer.PublicKey, msg.Accounts[0])
	assert.Contains(t, msg.Accounts, owner)
	assert.Contains(t, msg.Accounts, tree)
}

func TestMintToCollection_RejectsBadShares(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	c := newTestClient(t, rpc)
	payer := types.NewAccount()

	_, err := c.MintToCollection(context.Background(), payer, types.NewAccount().PublicKey,
		types.NewAccount().PublicKey, types.NewAccount().PublicKey, types.NewAccount().PublicKey,
		bubblegum.MetadataArgs{Creators: []bubblegum.Creator{{Address: payer.PublicKey, Share: 50}}},
		types.NewAccount().PublicKey)
	require.ErrorIs(t, err, dropperr.ErrInvalidInput)
	require.ErrorIs(t, err, bubblegum.ErrInvalidCreatorShares)
	assert.Zero(t, rpc.sentCount())
}

func TestBalance(t *testing.T) {
	t.Parallel()
	rpc := newFakeRPC()
	acct := types.NewAccount().PublicKey
	rpc.balances[acct.ToBase58()] = 1_100_000_000
	rpc.balanceErrs = []error{errRefused}
	c := newTestClient(t, rpc)

	balance, err := c.Balance(context.Background(), acct)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_100_000_000), balance)

	rpc.balanceErrs = []error{errBadTx}
	_, err = c.Balance(context.Background(), acct)
	require.ErrorIs(t, err, dropperr.ErrNetworkError)
}
