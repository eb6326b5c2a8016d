// Package id mints the request ids that tie together the log lines of one
// operation call.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Source hands out ULIDs that sort in the order they were minted, even
// within one millisecond.
type Source struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// NewSource seeds a Source. A zero seed is replaced by one from
// crypto/rand.
func NewSource(seed int64, now func() time.Time) *Source {
	if seed == 0 {
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if now == nil {
		now = time.Now
	}
	return &Source{
		now:     now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
}

// Next returns the next id.
func (s *Source) Next() ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(s.now().UTC()), s.entropy)
	if err != nil {
		// monotonic entropy ran out inside one millisecond
		return ulid.Make()
	}
	return id
}

var std = NewSource(0, nil)

// New returns the next request id from the process-wide Source.
func New() string {
	return std.Next().String()
}
