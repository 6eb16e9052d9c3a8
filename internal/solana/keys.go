package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"

	"github.com/mrz1836/cnftdrop/internal/fileutil"
	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// ParsePublicKey decodes a base58 public key.
// Unlike common.PublicKeyFromString it rejects malformed input.
func ParsePublicKey(s string) (common.PublicKey, error) {
	s = strings.TrimSpace(s)
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return common.PublicKey{}, dropperr.WithDetails(dropperr.ErrInvalidAddress, map[string]string{"key": MaskKey(s)})
	}
	return common.PublicKeyFromBytes(raw), nil
}

// DecodeKeypairJSON restores an account from solana-keygen JSON ([u8;64]).
func DecodeKeypairJSON(data []byte) (types.Account, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return types.Account{}, dropperr.WithCause(dropperr.ErrInvalidKeypair, fmt.Errorf("keypair json: %w", err))
	}
	if len(ints) != ed25519.PrivateKeySize {
		return types.Account{}, dropperr.WithDetails(dropperr.ErrInvalidKeypair, map[string]string{
			"length": fmt.Sprintf("%d (want %d)", len(ints), ed25519.PrivateKeySize),
		})
	}

	raw := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return types.Account{}, dropperr.WithDetails(dropperr.ErrInvalidKeypair, map[string]string{
				"byte": fmt.Sprintf("index %d out of range", i),
			})
		}
		raw[i] = byte(v)
	}

	acc, err := types.AccountFromBytes(raw)
	if err != nil {
		return types.Account{}, dropperr.WithCause(dropperr.ErrInvalidKeypair, err)
	}

	// The trailing 32 bytes must be the public half of the seed
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize]).Public().(ed25519.PublicKey)
	if !bytes.Equal(derived, raw[ed25519.SeedSize:]) {
		return types.Account{}, dropperr.WithDetails(dropperr.ErrInvalidKeypair, map[string]string{"public key": "does not match secret"})
	}
	return acc, nil
}

// EncodeKeypairJSON renders an account in solana-keygen JSON.
func EncodeKeypairJSON(acc types.Account) ([]byte, error) {
	ints := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// LoadKeypairFile reads a solana-keygen keypair file.
func LoadKeypairFile(path string) (types.Account, error) {
	// #nosec G304 -- keypair path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Account{}, dropperr.WithDetails(dropperr.ErrNotFound, map[string]string{"keypair": path})
		}
		return types.Account{}, fmt.Errorf("reading keypair: %w", err)
	}
	return DecodeKeypairJSON(data)
}

// WriteKeypairFile stores an account as a new solana-keygen file.
// An existing file is never replaced.
func WriteKeypairFile(path string, acc types.Account) error {
	data, err := EncodeKeypairJSON(acc)
	if err != nil {
		return err
	}
	return fileutil.WriteNew(path, data, 0o600)
}

// MaskKey shortens a key for logs: first and last four characters.
func MaskKey(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 10 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}
