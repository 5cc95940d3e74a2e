package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed hashing. Version suffix enables
// future algorithm migration.
const (
	DomainReceipt = "weft/receipt/v1"
	DomainDelta   = "weft/delta/v1"
)

// GenesisHash is the root of every receipt chain: the prev_hash of the
// first transaction on a graph instance.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + part + 0x00 + part ...)
// The null separators prevent boundary ambiguity between parts.
func hashWithDomain(domain string, parts ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DeltaHash computes the content-addressed hash of a delta. Equal deltas
// (as sets) always hash identically because serialization canonicalizes.
func DeltaHash(d QuadDelta) (string, error) {
	canonical, err := MarshalDeltaCanonical(d)
	if err != nil {
		return "", fmt.Errorf("DeltaHash: %w", err)
	}
	return hashWithDomain(DomainDelta, canonical), nil
}

// ReceiptHash computes new_hash = H(prev_hash, serialize(delta), tx_id)
// for a committed receipt. Rolled-back receipts do not advance the chain
// and never call this.
func ReceiptHash(prevHash string, d QuadDelta, txID string) (string, error) {
	if err := ValidateHashHex(prevHash); err != nil {
		return "", fmt.Errorf("ReceiptHash: prev: %w", err)
	}
	canonical, err := MarshalDeltaCanonical(d)
	if err != nil {
		return "", fmt.Errorf("ReceiptHash: %w", err)
	}
	return hashWithDomain(DomainReceipt, []byte(prevHash), canonical, []byte(txID)), nil
}

// ValidateHashHex checks that s is a 64-character lowercase hex string.
func ValidateHashHex(s string) error {
	if len(s) != 64 {
		return fmt.Errorf("hash must be 64 hex characters, got %d", len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("hash contains non-hex character %q at %d", c, i)
		}
	}
	return nil
}

// MustReceiptHash is like ReceiptHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustReceiptHash(prevHash string, d QuadDelta, txID string) string {
	h, err := ReceiptHash(prevHash, d, txID)
	if err != nil {
		panic(err)
	}
	return h
}
