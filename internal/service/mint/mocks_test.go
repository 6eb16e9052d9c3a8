package mint_test

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/mrz1836/cnftdrop/internal/claim"
	"github.com/mrz1836/cnftdrop/internal/solana"
	"github.com/mrz1836/cnftdrop/internal/solana/bubblegum"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

var (
	errUnexpectedProgram = errors.New("unexpected program")
	errTreeFull          = errors.New("tree is full")
	errEntropy           = errors.New("entropy unavailable")
)

// systemTransferIndex is the system program's Transfer instruction tag.
const systemTransferIndex = 2

// callLatency keeps each fake submission open long enough for an
// overlapping one to be counted.
const callLatency = time.Millisecond

// mintCall captures one MintToCollection invocation.
type mintCall struct {
	tree      common.PublicKey
	coll      common.PublicKey
	meta      common.PublicKey
	edition   common.PublicKey
	payload   bubblegum.MetadataArgs
	leafOwner common.PublicKey
}

// fakeChain is a ledger of lamport balances acting as both the connection
// and the mint submitter. It records every call and how many were in flight.
type fakeChain struct {
	mu sync.Mutex

	balances map[common.PublicKey]uint64
	// calls lists "fund" and "mint" in submission order.
	calls     []string
	mints     []mintCall
	transfers int

	inFlight    int
	maxInFlight int

	// mintErrAt fails the mint of these 0-based mint attempts.
	mintErrAt map[int]error
	// onFund runs before each funding transfer is applied.
	onFund func(attempt int)
}

func newFakeChain(payer common.PublicKey, payerLamports uint64) *fakeChain {
	return &fakeChain{
		balances:  map[common.PublicKey]uint64{payer: payerLamports},
		mintErrAt: map[int]error{},
	}
}

// enter marks a submission in flight and holds it open for callLatency.
// Only the counters are locked so concurrent submissions overlap.
func (f *fakeChain) enter() {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
	time.Sleep(callLatency)
}

func (f *fakeChain) leave() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
}

func (f *fakeChain) peakInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

func (f *fakeChain) SendAndConfirm(ctx context.Context, instructions []types.Instruction, feePayer types.Account, _ []types.Account, _ solana.Commitment) (string, error) {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	defer f.mu.Unlock()

	attempt := f.transfers
	f.transfers++
	f.calls = append(f.calls, "fund")

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.onFund != nil {
		f.onFund(attempt)
	}

	if len(instructions) != 1 || instructions[0].ProgramID != common.SystemProgramID {
		return "", errUnexpectedProgram
	}
	ix := instructions[0]
	if binary.LittleEndian.Uint32(ix.Data[:4]) != systemTransferIndex {
		return "", errUnexpectedProgram
	}
	amount := binary.LittleEndian.Uint64(ix.Data[4:12])
	from, to := ix.Accounts[0].PubKey, ix.Accounts[1].PubKey
	if from != feePayer.PublicKey {
		return "", errUnexpectedProgram
	}

	if f.balances[from] < amount {
		return "", dropperr.WithDetails(dropperr.ErrInsufficientFunds, map[string]string{
			"available": fmt.Sprint(f.balances[from]),
		})
	}
	f.balances[from] -= amount
	f.balances[to] += amount

	return fmt.Sprintf("fund-sig-%d", attempt), nil
}

func (f *fakeChain) MintToCollection(
	ctx context.Context,
	_ types.Account,
	merkleTree common.PublicKey,
	collectionMint common.PublicKey,
	collectionMetadata common.PublicKey,
	collectionEdition common.PublicKey,
	payload bubblegum.MetadataArgs,
	leafOwner common.PublicKey,
) (string, error) {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	defer f.mu.Unlock()

	attempt := len(f.mints)
	f.calls = append(f.calls, "mint")
	f.mints = append(f.mints, mintCall{
		tree:      merkleTree,
		coll:      collectionMint,
		meta:      collectionMetadata,
		edition:   collectionEdition,
		payload:   payload,
		leafOwner: leafOwner,
	})

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := f.mintErrAt[attempt]; ok {
		return "", dropperr.WithCause(dropperr.ErrTxRejected, err)
	}
	if payload.ShareTotal() != 100 {
		return "", bubblegum.ErrInvalidCreatorShares
	}
	return fmt.Sprintf("mint-sig-%d", attempt), nil
}

func (f *fakeChain) balance(key common.PublicKey) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[key]
}

func (f *fakeChain) submissions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeFactory hands out random keypairs with numbered handles.
type fakeFactory struct {
	mu      sync.Mutex
	created []*claim.Wallet
	errAt   map[int]bool
}

func (f *fakeFactory) Create() (*claim.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.created)
	if f.errAt[n] {
		f.created = append(f.created, nil)
		return nil, errEntropy
	}
	w := &claim.Wallet{
		Account: types.NewAccount(),
		Handle:  fmt.Sprintf("https://claim.test/i#wallet-%d", n),
	}
	f.created = append(f.created, w)
	return w, nil
}

// fakeRecorder counts metrics hooks.
type fakeRecorder struct {
	mu      sync.Mutex
	funded  uint64
	entries map[string]int
}

func (r *fakeRecorder) Funded(lamports uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funded += lamports
}

func (r *fakeRecorder) EntryDone(kind string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = map[string]int{}
	}
	if kind == "" {
		kind = "ok"
	}
	r.entries[kind]++
}
