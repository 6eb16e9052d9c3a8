package solana_test

import (
	"context"
	"sync"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"

	"github.com/mrz1836/cnftdrop/internal/solana"
)

// fakeRPC is an in-memory node. Each submitted signature walks through
// statuses (nil entries mean "not seen yet"), repeating the last one.
// Signatures of the sends listed in dropped (1-based) are never seen.
// Block height walks through heights the same way; once it passes
// lastValid, signatures the node has not seen leave pending.
type fakeRPC struct {
	mu sync.Mutex

	blockhash      string
	lastValid      uint64
	heights        []uint64
	heightCalls    int
	dropped        map[int]bool
	droppedSigs    map[string]bool
	unseen         map[string]bool
	blockhashErrs  []error
	sendErr        error
	statuses       []*solana.SignatureStatus
	statusErrs     []error
	balances       map[string]uint64
	balanceErrs    []error
	sent           []types.Transaction
	statusCalls    map[string]int
	pending        map[string]bool
	maxInFlight    int
	blockhashCalls int
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{
		blockhash:   types.NewAccount().PublicKey.ToBase58(),
		lastValid:   150,
		heights:     []uint64{151},
		dropped:     map[int]bool{},
		droppedSigs: map[string]bool{},
		unseen:      map[string]bool{},
		balances:    map[string]uint64{},
		statusCalls: map[string]int{},
		pending:     map[string]bool{},
		statuses:    []*solana.SignatureStatus{{ConfirmationStatus: "confirmed"}},
	}
}

func (f *fakeRPC) LatestBlockhash(context.Context) (solana.Blockhash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockhashCalls++
	if len(f.blockhashErrs) > 0 {
		err := f.blockhashErrs[0]
		f.blockhashErrs = f.blockhashErrs[1:]
		return solana.Blockhash{}, err
	}
	return solana.Blockhash{Hash: f.blockhash, LastValidBlockHeight: f.lastValid}, nil
}

func (f *fakeRPC) BlockHeight(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.heightCalls
	f.heightCalls++
	if n >= len(f.heights) {
		n = len(f.heights) - 1
	}
	height := f.heights[n]
	if height > f.lastValid {
		for signature := range f.unseen {
			delete(f.pending, signature)
		}
	}
	return height, nil
}

func (f *fakeRPC) SendTransaction(_ context.Context, tx types.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, tx)
	signature := base58.Encode(tx.Signatures[0])
	f.pending[signature] = true
	f.unseen[signature] = true
	if f.dropped[len(f.sent)] {
		f.droppedSigs[signature] = true
	}
	if len(f.pending) > f.maxInFlight {
		f.maxInFlight = len(f.pending)
	}
	return signature, nil
}

func (f *fakeRPC) SignatureStatus(_ context.Context, signature string) (*solana.SignatureStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statusErrs) > 0 {
		err := f.statusErrs[0]
		f.statusErrs = f.statusErrs[1:]
		return nil, err
	}

	n := f.statusCalls[signature]
	f.statusCalls[signature] = n + 1
	if f.droppedSigs[signature] {
		return nil, nil
	}
	if n >= len(f.statuses) {
		n = len(f.statuses) - 1
	}
	status := f.statuses[n]
	if status == nil {
		return nil, nil
	}
	delete(f.unseen, signature)
	if status.Err != nil || status.ConfirmationStatus != "processed" {
		delete(f.pending, signature)
	}
	return status, nil
}

func (f *fakeRPC) Balance(_ context.Context, address string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.balanceErrs) > 0 {
		err := f.balanceErrs[0]
		f.balanceErrs = f.balanceErrs[1:]
		return 0, err
	}
	return f.balances[address], nil
}

func (f *fakeRPC) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeRPC) inFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

func (f *fakeRPC) blockHeightCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heightCalls
}
