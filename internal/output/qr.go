package output

import (
	"io"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"

	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// QRConfig configures QR code rendering.
type QRConfig struct {
	Level      qr.Level
	QuietZone  int
	HalfBlocks bool
	// Force renders even when the writer is not a terminal.
	Force bool
}

// DefaultQRConfig suits claim links: medium correction survives a phone
// camera on a cramped terminal.
func DefaultQRConfig() QRConfig {
	return QRConfig{
		Level:      qr.M,
		QuietZone:  1,
		HalfBlocks: true,
	}
}

// RenderQR draws data as a QR code. Nothing is written to a non-terminal
// unless cfg.Force is set. Data too long for a QR code is an error.
func RenderQR(w io.Writer, data string, cfg QRConfig) error {
	if _, err := qr.Encode(data, cfg.Level); err != nil {
		return dropperr.WithDetails(dropperr.WithCause(dropperr.ErrInvalidInput, err), map[string]string{
			"qr": "data does not fit",
		})
	}
	if !cfg.Force && !IsTerminal(w) {
		return nil
	}

	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:          cfg.Level,
		Writer:         w,
		QuietZone:      cfg.QuietZone,
		HalfBlocks:     cfg.HalfBlocks,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
	return nil
}
