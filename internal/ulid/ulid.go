// Package ulid provides run identifiers built on github.com/oklog/ulid/v2.
//
// ULIDs sort lexicographically by creation time, which keeps log lines from
// consecutive pr-review invocations in order when grepping a shared log file.
package ulid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// PrefixRun is the prefix for review run IDs
	PrefixRun = "run"

	// PrefixSeparator is used to separate the prefix from the ULID
	PrefixSeparator = "-"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// ULID wraps ulid.ULID with an optional prefix
type ULID struct {
	ulid.ULID
	prefix string
}

// Generate creates a new ULID with the current timestamp
func Generate() ULID {
	return NewWithTime(time.Now())
}

// NewWithTime creates a new ULID with a specific timestamp
func NewWithTime(t time.Time) ULID {
	entropyLock.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	entropyLock.Unlock()
	return ULID{id, ""}
}

// GenerateWithPrefix creates a new ULID carrying a prefix such as "run"
func GenerateWithPrefix(prefix string) ULID {
	id := Generate()
	id.prefix = prefix
	return id
}

// String returns the ULID with its prefix, if any
func (u ULID) String() string {
	if u.prefix == "" {
		return u.ULID.String()
	}
	return u.prefix + PrefixSeparator + u.ULID.String()
}

// RunID returns a new prefixed identifier for a single review run
func RunID() string {
	return GenerateWithPrefix(PrefixRun).String()
}
