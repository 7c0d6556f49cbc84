// Package seed derives independent, reproducible noise generators from the identity of a
// dataset cell. The mapping is a pure function of the key: no process-wide random state is read
// or written, so any (file, SNR, repeat) cell can be regenerated in isolation, in any order, on
// any machine.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"
	"strconv"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// Seed is the 128-bit generator state derived from a key.
type Seed struct {
	Hi uint64
	Lo uint64
}

// Uint64 returns the high word, used as the short seed in manifests and logs.
func (s Seed) Uint64() uint64 { return s.Hi }

// String renders the full seed as 32 hex digits.
func (s Seed) String() string {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], s.Hi)
	binary.BigEndian.PutUint64(b[8:], s.Lo)
	return hex.EncodeToString(b[:])
}

// KeyString renders the canonical key "{global}_{file}_{snr}_{repeat}".
// SNR values use the shortest representation that round-trips, so 30 renders as "30".
func KeyString(key types.SeedKey) string {
	b := make([]byte, 0, 32+len(key.FileID))
	b = strconv.AppendInt(b, key.GlobalSeed, 10)
	b = append(b, '_')
	b = append(b, key.FileID...)
	b = append(b, '_')
	b = strconv.AppendFloat(b, key.SNRdB, 'f', -1, 64)
	b = append(b, '_')
	b = strconv.AppendInt(b, int64(key.Repeat), 10)
	return string(b)
}

// Derive hashes the key with SHA-256 and keeps the first 128 bits.
func Derive(key types.SeedKey) Seed {
	sum := sha256.Sum256([]byte(KeyString(key)))
	return Seed{
		Hi: binary.BigEndian.Uint64(sum[0:8]),
		Lo: binary.BigEndian.Uint64(sum[8:16]),
	}
}

// NewRand returns a fresh PCG-backed generator for s. Callers own the generator; it must not be
// shared across goroutines.
func NewRand(s Seed) *rand.Rand {
	return rand.New(rand.NewPCG(s.Hi, s.Lo))
}

// ForKey is Derive followed by NewRand.
func ForKey(key types.SeedKey) (*rand.Rand, Seed) {
	s := Derive(key)
	return NewRand(s), s
}
