package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ComputeListEventID computes a deterministic event_id for a
// Dragon-Tiger disclosure using SHA256.
// Formula: SHA256(code|listed_date|reasons|analysis)
// Returns hex-encoded hash (64 characters).
//
// Reasons and analysis are part of the key on purpose: the same
// instrument can be listed multiple times on one day under different
// disclosed reasons, and those must hash to different ids.
func ComputeListEventID(code, listedDate, reasons, analysis string) string {
	data := strings.Join([]string{code, listedDate, reasons, analysis}, "|")
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
