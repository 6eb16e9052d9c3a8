package keystore

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/tyler-smith/go-bip39"

	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// MaxTypoDistance is the largest edit distance offered as a correction.
const MaxTypoDistance = 2

var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)
	bulletListRegex   = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// AccountFromMnemonic derives the payer the way solana-keygen does for a
// phrase without a derivation path: the first 32 bytes of the BIP39 seed
// are the ed25519 seed.
func AccountFromMnemonic(mnemonic, passphrase string) (types.Account, error) {
	normalized := NormalizeMnemonic(mnemonic)
	if err := ValidateMnemonic(normalized); err != nil {
		return types.Account{}, err
	}

	seed, err := bip39.NewSeedWithErrorChecking(normalized, passphrase)
	if err != nil {
		return types.Account{}, dropperr.WithCause(dropperr.ErrInvalidMnemonic, err)
	}

	acc, err := types.AccountFromSeed(seed[:32])
	if err != nil {
		return types.Account{}, dropperr.WithCause(dropperr.ErrInvalidKeypair, err)
	}
	return acc, nil
}

// ValidateMnemonic checks word count, words and checksum. Misspelled words
// come back as a suggestion on the error.
func ValidateMnemonic(mnemonic string) error {
	normalized := NormalizeMnemonic(mnemonic)
	if normalized == "" {
		return dropperr.WithSuggestion(dropperr.ErrInvalidMnemonic, "Set CNFTDROP_PAYER_MNEMONIC")
	}

	words := strings.Fields(normalized)
	switch len(words) {
	case 12, 15, 18, 21, 24:
	default:
		return dropperr.WithDetails(dropperr.ErrInvalidMnemonic, map[string]string{
			"words": strconv.Itoa(len(words)),
		})
	}

	if bip39.IsMnemonicValid(normalized) {
		return nil
	}

	if hints := typoHints(words); len(hints) > 0 {
		return dropperr.WithSuggestion(dropperr.ErrInvalidMnemonic, strings.Join(hints, "; "))
	}
	return dropperr.WithDetails(dropperr.ErrInvalidMnemonic, map[string]string{"checksum": "mismatch"})
}

// NormalizeMnemonic lowercases a pasted phrase and strips list markers,
// commas and extra whitespace.
func NormalizeMnemonic(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// SuggestWord returns the closest BIP39 word within MaxTypoDistance, or "".
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	best, bestDist := "", math.MaxInt
	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < bestDist {
			best, bestDist = word, dist
		}
	}

	if bestDist <= MaxTypoDistance {
		return best
	}
	return ""
}

func typoHints(words []string) []string {
	valid := make(map[string]struct{}, 2048)
	for _, w := range bip39.GetWordList() {
		valid[w] = struct{}{}
	}

	var hints []string
	for i, word := range words {
		if _, ok := valid[word]; ok {
			continue
		}
		hint := "word " + strconv.Itoa(i+1) + " '" + word + "'"
		if s := SuggestWord(word); s != "" {
			hint += " - did you mean '" + s + "'?"
		} else {
			hint += " is not a BIP39 word"
		}
		hints = append(hints, hint)
	}
	return hints
}
