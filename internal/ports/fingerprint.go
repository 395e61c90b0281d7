package ports

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// Alphabet is the number of fingerprint slots, one per ASCII letter a-z.
const Alphabet = 26

// FingerprintSize is the byte length of Fingerprint.Bytes.
const FingerprintSize = Alphabet * 4

// Fingerprint is an order-independent letter histogram: slot i counts the
// ASCII letter 'a'+i, case-folded. Equal fingerprints mean equal letter
// multisets. It is comparable and usable as a map key.
type Fingerprint [Alphabet]uint32

// Bytes returns the deterministic raw encoding (26 × uint32, little-endian).
// This is the key under which the bbolt store persists a bucket.
func (f Fingerprint) Bytes() []byte {
	buf := make([]byte, FingerprintSize)
	for i, n := range f {
		binary.LittleEndian.PutUint32(buf[i*4:], n)
	}
	return buf
}

// ParseFingerprint decodes the output of Bytes.
func ParseFingerprint(b []byte) (Fingerprint, error) {
	var f Fingerprint
	if len(b) != FingerprintSize {
		return f, fmt.Errorf("fingerprint: want %d bytes, got %d", FingerprintSize, len(b))
	}
	for i := range f {
		f[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return f, nil
}

// Hash returns SHA-256 over Bytes. Downstream persistence keys hits by it.
func (f Fingerprint) Hash() []byte {
	sum := sha256.Sum256(f.Bytes())
	return sum[:]
}

// Letters returns the total number of letters counted.
func (f Fingerprint) Letters() int {
	total := 0
	for _, n := range f {
		total += int(n)
	}
	return total
}

// String renders the non-zero slots, e.g. "a2e1l1".
func (f Fingerprint) String() string {
	var sb strings.Builder
	for i, n := range f {
		if n == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%c%d", 'a'+i, n)
	}
	if sb.Len() == 0 {
		return "∅"
	}
	return sb.String()
}
