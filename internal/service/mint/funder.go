package mint

import (
	"context"

	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/mrz1836/cnftdrop/internal/claim"
	"github.com/mrz1836/cnftdrop/internal/solana"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// Funder creates claim wallets and funds them from the payer.
type Funder struct {
	conn       Connection
	factory    ClaimWalletFactory
	commitment solana.Commitment
	logger     LogWriter
}

// NewFunder creates a Funder confirming transfers at commitment.
func NewFunder(conn Connection, factory ClaimWalletFactory, commitment solana.Commitment, logger LogWriter) *Funder {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Funder{conn: conn, factory: factory, commitment: commitment, logger: logger}
}

// Fund creates a claim wallet and transfers minLamports to it from payer,
// returning once the transfer is confirmed. The wallet is returned on a
// failed transfer as well: a timed-out transfer may still land.
// Failures wrap ErrFunding and are not retried.
func (f *Funder) Fund(ctx context.Context, payer types.Account, minLamports uint64) (*claim.Wallet, string, error) {
	wallet, err := f.factory.Create()
	if err != nil {
		return nil, "", dropperr.WithCause(dropperr.ErrFunding, err)
	}

	ix := system.Transfer(system.TransferParam{
		From:   payer.PublicKey,
		To:     wallet.PublicKey(),
		Amount: minLamports,
	})

	sig, err := f.conn.SendAndConfirm(ctx, []types.Instruction{ix}, payer, nil, f.commitment)
	if err != nil {
		f.logger.Error("funding %s failed: %v", solana.MaskKey(wallet.PublicKey().ToBase58()), err)
		return wallet, "", dropperr.WithCause(dropperr.ErrFunding, err)
	}

	f.logger.Debug("funded %s with %d lamports: %s", solana.MaskKey(wallet.PublicKey().ToBase58()), minLamports, sig)
	return wallet, sig, nil
}
