package session

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/robalobadob/battleship/apps/go-server/internal/fleet"
)

// lockedRand lets sessions running on different goroutines share one source.
type lockedRand struct {
	mu sync.Mutex
	r  fleet.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a math/rand source seeded with seed, or with a fresh
// crypto seed when seed is zero.
func NewRand(seed int64) (*rand.Rand, error) {
	if seed == 0 {
		var err error
		if seed, err = NewSeed(); err != nil {
			return nil, err
		}
	}
	return rand.New(rand.NewSource(seed)), nil
}
