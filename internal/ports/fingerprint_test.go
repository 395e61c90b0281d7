package ports

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_BytesRoundTrip(t *testing.T) {
	var fp Fingerprint
	fp[0] = 1
	fp[25] = 0x01020304

	b := fp.Bytes()
	require.Len(t, b, FingerprintSize)
	assert.Equal(t, []byte{1, 0, 0, 0}, b[:4])
	assert.Equal(t, []byte{4, 3, 2, 1}, b[100:])

	back, err := ParseFingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fp, back)
}

func TestParseFingerprint_WrongLength(t *testing.T) {
	_, err := ParseFingerprint(make([]byte, 10))
	assert.ErrorContains(t, err, "want 104 bytes, got 10")
}

func TestFingerprint_Hash(t *testing.T) {
	var zero Fingerprint
	h := zero.Hash()
	assert.Len(t, h, 32)
	// SHA-256 of 104 zero bytes.
	assert.Equal(t, sha256Zero104, hex.EncodeToString(h))

	var other Fingerprint
	other[4] = 1
	assert.NotEqual(t, h, other.Hash())
}

func TestFingerprint_LettersAndString(t *testing.T) {
	var fp Fingerprint
	assert.Equal(t, "∅", fp.String())
	assert.Equal(t, 0, fp.Letters())

	fp['a'-'a'] = 2
	fp['e'-'a'] = 1
	fp['z'-'a'] = 3
	assert.Equal(t, "a2e1z3", fp.String())
	assert.Equal(t, 6, fp.Letters())
}

const sha256Zero104 = "39f37f8d1931b3bdf767e7510dd69509fbf23af1f7654933d0a4d291cbdd4418"
