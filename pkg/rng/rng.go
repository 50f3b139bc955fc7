package rng

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/big"
	rand "math/rand/v2"
	"sync"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Source is the single source of uniform randomness used by the games.
// Implementations must be safe for concurrent use.
type Source interface {
	// Intn returns a uniform int in [0, n). It panics if n <= 0.
	Intn(n int) int
	// Float64 returns a uniform float64 in [0, 1).
	Float64() float64
}

type cryptoSource struct{}

// Crypto returns a Source backed by crypto/rand.
func Crypto() Source { return cryptoSource{} }

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to Intn")
	}
	v, err := cryptorand.Int(cryptorand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("rng: crypto source failed: " + err.Error())
	}
	return int(v.Int64())
}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		panic("rng: crypto source failed: " + err.Error())
	}
	// 53 bits of mantissa
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

type seededSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a deterministic Source seeded from seed. The same seed
// always yields the same sequence, which makes shuffles and spins replayable.
func NewSeeded(seed int64) Source {
	u := uint64(seed)
	return &seededSource{r: rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))}
}

func (s *seededSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// IntRange returns a uniform integer in [lo, hi]. If hi < lo it returns lo.
func IntRange(src Source, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	span := hi - lo + 1
	if span > int64(^uint(0)>>1) {
		panic("rng: range too large")
	}
	return lo + int64(src.Intn(int(span)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
