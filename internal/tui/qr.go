package tui

import (
	"strings"

	"github.com/mdp/qrterminal/v3"
)

// qrCode renders uri as a half-block QR code for authenticator apps.
func qrCode(uri string) string {
	var b strings.Builder
	qrterminal.GenerateHalfBlock(uri, qrterminal.L, &b)
	return b.String()
}
