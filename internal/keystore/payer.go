// Package keystore loads the key material a run needs: the payer keypair
// and the identifiers of the target tree and collection.
package keystore

import (
	"context"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/types"

	"github.com/mrz1836/cnftdrop/internal/config"
	"github.com/mrz1836/cnftdrop/internal/solana"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// Payer sources other than a file path.
const (
	SecretManagerScheme = "secretmanager://"
	SourceMnemonic      = "mnemonic"
)

// Options supplies what non-file payer sources need.
type Options struct {
	// Secrets resolves secretmanager:// sources. A Secret Manager client is
	// dialed with default credentials when nil.
	Secrets SecretAccessor
	// Mnemonic is the BIP39 phrase for the "mnemonic" source.
	Mnemonic string
	// Passphrase is the optional BIP39 passphrase.
	Passphrase string
}

// LoadPayer resolves source to the payer keypair. source is a
// solana-keygen JSON file path, "secretmanager://<secret version>" holding
// the same JSON, or "mnemonic".
func LoadPayer(ctx context.Context, source string, opts Options) (types.Account, error) {
	source = strings.TrimSpace(source)

	switch {
	case source == "":
		return types.Account{}, dropperr.WithSuggestion(
			dropperr.WithDetails(dropperr.ErrInvalidKeypair, map[string]string{"source": "empty"}),
			"Set keys.payer in the config or pass --payer",
		)

	case source == SourceMnemonic:
		return AccountFromMnemonic(opts.Mnemonic, opts.Passphrase)

	case strings.HasPrefix(source, SecretManagerScheme):
		return loadFromSecretManager(ctx, strings.TrimPrefix(source, SecretManagerScheme), opts.Secrets)

	default:
		path, err := config.ExpandPath(source)
		if err != nil {
			return types.Account{}, err
		}
		return solana.LoadKeypairFile(path)
	}
}

func loadFromSecretManager(ctx context.Context, name string, secrets SecretAccessor) (types.Account, error) {
	name, err := SecretVersionName(name)
	if err != nil {
		return types.Account{}, err
	}

	if secrets == nil {
		sm, err := NewSecretManager(ctx)
		if err != nil {
			return types.Account{}, err
		}
		defer func() { _ = sm.Close() }()
		secrets = sm
	}

	data, err := secrets.AccessSecret(ctx, name)
	if err != nil {
		return types.Account{}, err
	}

	acc, err := solana.DecodeKeypairJSON([]byte(strings.TrimSpace(string(data))))
	if err != nil {
		return types.Account{}, fmt.Errorf("secret %s: %w", name, err)
	}
	return acc, nil
}
