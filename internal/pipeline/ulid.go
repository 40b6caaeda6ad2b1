package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Dependency-free ULID generator. ULIDs are 26-character Crockford Base32
// strings with a 48-bit millisecond timestamp prefix, so they sort by
// creation time.

var (
	ulidMu  sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewID returns a fresh ULID for jobs and documents.
func NewID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts == lastTS {
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	// Timestamp in first 6 bytes (big-endian 48-bit).
	b[0] = byte(ts >> 40)
	b[1] = byte(ts >> 32)
	b[2] = byte(ts >> 24)
	b[3] = byte(ts >> 16)
	b[4] = byte(ts >> 8)
	b[5] = byte(ts)
	// Random in remaining 10 bytes.
	rand.Read(b[6:])
	// Embed sequence in bytes 6-7 to ensure uniqueness within same ms.
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encodeCrockford(b)
}

// encodeCrockford maps 128 bits to 26 base32 characters. The first two
// bits of the value are padding, matching the canonical ULID layout.
func encodeCrockford(b [16]byte) string {
	var out [26]byte
	i := len(out) - 1
	var acc uint16
	var bits uint
	for j := len(b) - 1; j >= 0; j-- {
		acc |= uint16(b[j]) << bits
		bits += 8
		for bits >= 5 {
			out[i] = crockford[acc&31]
			acc >>= 5
			bits -= 5
			i--
		}
	}
	out[0] = crockford[acc&31]
	return string(out[:])
}
