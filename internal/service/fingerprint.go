package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// FingerprintTransfer hashes the fields that make two keyed requests the
// same transfer. Notes and counterparty names are cosmetic and excluded.
func FingerprintTransfer(req TransferRequest) string {
	payload := fmt.Sprintf("%d|%s|%s|%s",
		req.SourceAccountID,
		req.Amount.StringFixed(2),
		strings.ToUpper(strings.TrimSpace(string(req.Rail))),
		strings.ToUpper(strings.TrimSpace(req.Destination)),
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
