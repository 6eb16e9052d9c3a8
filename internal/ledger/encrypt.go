package ledger

import (
	"bytes"
	"io"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"

	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// Sealing selects how a results file is encrypted. The zero value writes
// plaintext.
type Sealing struct {
	// Recipients are age public keys ("age1...").
	Recipients []string
	// Passphrase seals with an scrypt recipient. It cannot be combined with Recipients.
	Passphrase string
}

// Enabled reports whether output is encrypted.
func (s Sealing) Enabled() bool {
	return len(s.Recipients) > 0 || s.Passphrase != ""
}

// Validate parses the recipients without encrypting anything.
func (s Sealing) Validate() error {
	if !s.Enabled() {
		return nil
	}
	_, err := s.recipients()
	return err
}

func (s Sealing) recipients() ([]age.Recipient, error) {
	if s.Passphrase != "" {
		if len(s.Recipients) > 0 {
			return nil, dropperr.WithDetails(dropperr.ErrInvalidInput, map[string]string{
				"encryption": "passphrase and recipients are exclusive",
			})
		}
		r, err := age.NewScryptRecipient(s.Passphrase)
		if err != nil {
			return nil, dropperr.WithCause(dropperr.ErrInvalidInput, err)
		}
		return []age.Recipient{r}, nil
	}

	out := make([]age.Recipient, 0, len(s.Recipients))
	for _, text := range s.Recipients {
		r, err := age.ParseX25519Recipient(strings.TrimSpace(text))
		if err != nil {
			return nil, dropperr.WithDetails(dropperr.WithCause(dropperr.ErrInvalidInput, err), map[string]string{"recipient": text})
		}
		out = append(out, r)
	}
	return out, nil
}

// seal encrypts plaintext to an ASCII-armored age file.
func seal(plaintext []byte, recipients []age.Recipient) ([]byte, error) {
	buf := &bytes.Buffer{}
	aw := armor.NewWriter(buf)

	w, err := age.Encrypt(aw, recipients...)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	if err := aw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// isSealed reports whether data looks like an age file, armored or binary.
func isSealed(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return bytes.HasPrefix(trimmed, []byte(armor.Header)) || bytes.HasPrefix(trimmed, []byte("age-encryption.org/v1"))
}

// open decrypts an armored or binary age file.
func open(data []byte, identities []age.Identity) ([]byte, error) {
	var src io.Reader = bytes.NewReader(data)
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(armor.Header)) {
		src = armor.NewReader(bytes.NewReader(bytes.TrimSpace(data)))
	}

	r, err := age.Decrypt(src, identities...)
	if err != nil {
		return nil, dropperr.WithCause(dropperr.ErrDecryptionFailed, err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, dropperr.WithCause(dropperr.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// ParseIdentities reads age identities from a key file's contents.
func ParseIdentities(data []byte) ([]age.Identity, error) {
	ids, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, dropperr.WithCause(dropperr.ErrInvalidKeypair, err)
	}
	return ids, nil
}

// PassphraseIdentity opens files sealed with a passphrase.
func PassphraseIdentity(passphrase string) ([]age.Identity, error) {
	id, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, dropperr.WithCause(dropperr.ErrInvalidInput, err)
	}
	return []age.Identity{id}, nil
}
