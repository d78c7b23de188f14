// Package cryptox computes content fingerprints for upload candidates.
//
// Fingerprints identify identical image bytes across retries and sessions:
// the compressor cache is keyed by them and the upload ledger stores them so
// orphaned remote objects can be matched back to local files.
package cryptox

import (
	"encoding/hex"
	"io"

	"golang.org/x/crypto/blake2b"
)

// DigestSize is the length in bytes of a raw fingerprint.
const DigestSize = blake2b.Size256

// Digest returns the hex encoded BLAKE2b-256 hash of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestReader hashes everything read from r.
func DigestReader(r io.Reader) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
