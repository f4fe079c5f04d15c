package value

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm changes.
const (
	DomainRecord = "xmsync/record/v1"
	DomainConfig = "xmsync/config/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordHash computes the content hash of a resolved record.
// Two records with the same fields and values always hash the same,
// regardless of map iteration order.
func RecordHash(rec Object) (string, error) {
	canonical, err := MarshalCanonical(rec)
	if err != nil {
		return "", fmt.Errorf("RecordHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// ConfigHash computes the content hash of raw configuration bytes.
func ConfigHash(data []byte) string {
	return hashWithDomain(DomainConfig, data)
}

// MustRecordHash is like RecordHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRecordHash(rec Object) string {
	h, err := RecordHash(rec)
	if err != nil {
		panic(err)
	}
	return h
}
