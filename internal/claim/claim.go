// Package claim creates claim wallets: throwaway keypairs whose secret travels
// in the fragment of a shareable link, so whoever holds the link holds the key.
package claim

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/hkdf"

	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// SecretSize is the length of the random secret behind a link.
const SecretSize = 32

// DefaultBaseURL prefixes links when no base is configured.
const DefaultBaseURL = "https://tiplink.io/i"

// HKDF parameters binding a link secret to its ed25519 seed.
var (
	seedSalt = []byte("cnftdrop/claim-link/v1")
	seedInfo = []byte("ed25519 seed")
)

// Wallet is a claim keypair plus the link that redeems it.
type Wallet struct {
	Account types.Account
	Handle  string
}

// PublicKey returns the wallet address.
func (w *Wallet) PublicKey() common.PublicKey {
	return w.Account.PublicKey
}

// Factory creates claim wallets.
type Factory interface {
	Create() (*Wallet, error)
}

// LinkFactory creates wallets from fresh random secrets.
type LinkFactory struct {
	baseURL string
	rand    io.Reader
}

// NewLinkFactory returns a factory producing links under baseURL.
func NewLinkFactory(baseURL string) *LinkFactory {
	return NewLinkFactoryWithReader(baseURL, rand.Reader)
}

// NewLinkFactoryWithReader is NewLinkFactory with an explicit entropy source.
func NewLinkFactoryWithReader(baseURL string, r io.Reader) *LinkFactory {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/#")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &LinkFactory{baseURL: baseURL, rand: r}
}

// Create draws a secret and derives the wallet behind it.
func (f *LinkFactory) Create() (*Wallet, error) {
	secret := make([]byte, SecretSize)
	if _, err := io.ReadFull(f.rand, secret); err != nil {
		return nil, fmt.Errorf("reading claim secret: %w", err)
	}

	acc, err := DeriveAccount(secret)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		Account: acc,
		Handle:  f.baseURL + "#" + base58.Encode(secret),
	}, nil
}

// DeriveAccount maps a link secret to its keypair.
func DeriveAccount(secret []byte) (types.Account, error) {
	if len(secret) != SecretSize {
		return types.Account{}, dropperr.WithDetails(dropperr.ErrInvalidHandle, map[string]string{
			"secret": fmt.Sprintf("%d bytes (want %d)", len(secret), SecretSize),
		})
	}

	seed := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, seedSalt, seedInfo), seed); err != nil {
		return types.Account{}, fmt.Errorf("deriving claim seed: %w", err)
	}

	acc, err := types.AccountFromSeed(seed)
	if err != nil {
		return types.Account{}, fmt.Errorf("claim keypair: %w", err)
	}
	return acc, nil
}

// ParseHandle recovers the wallet from a link or from its bare fragment.
func ParseHandle(handle string) (*Wallet, error) {
	handle = strings.TrimSpace(handle)
	fragment := handle
	if strings.Contains(handle, "#") {
		u, err := url.Parse(handle)
		if err != nil {
			return nil, dropperr.WithCause(dropperr.ErrInvalidHandle, err)
		}
		fragment = u.Fragment
	}

	secret, err := base58.Decode(fragment)
	if err != nil || len(secret) == 0 {
		return nil, dropperr.WithDetails(dropperr.ErrInvalidHandle, map[string]string{"fragment": "not base58"})
	}

	acc, err := DeriveAccount(secret)
	if err != nil {
		return nil, err
	}
	return &Wallet{Account: acc, Handle: handle}, nil
}
