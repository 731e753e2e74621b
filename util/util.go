package util

import (
	crand "crypto/rand"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var R *rand.Rand
var guidTracker map[string]int
var lock *sync.Mutex

func init() {
	R = rand.New(rand.NewSource(time.Now().UnixNano()))
	ResetGuids()
	lock = &sync.Mutex{}
}

// ResetGuids resets the deterministic per-prefix counters. Simulation runs
// call it between scenarios so ids stay stable.
func ResetGuids() {
	guidTracker = map[string]int{}
}

// NewGuid returns a deterministic sequential guid for a prefix.
func NewGuid(prefix string) string {
	guidTracker[prefix] = guidTracker[prefix] + 1
	return fmt.Sprintf("%s-%d", prefix, guidTracker[prefix])
}

// RandomIntIn returns a random int in [min, max].
func RandomIntIn(min, max int) int {
	return R.Intn(max-min+1) + min
}

// RandomGuid returns a random guid.
func RandomGuid() string {
	b := make([]byte, 8)
	lock.Lock()
	_, err := crand.Read(b)
	lock.Unlock()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x-%x-%x-%x", b[0:2], b[2:4], b[4:6], b[6:8])
}
