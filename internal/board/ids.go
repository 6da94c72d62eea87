package board

import (
	"fmt"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IDFunc returns a new opaque id with the given prefix ("node", "edge",
// "case", "cat"). Ids are never reused.
type IDFunc func(prefix string) string

// Clock returns the current time; every mutation stamps Case.UpdatedAt
// with it.
type Clock func() time.Time

var fallbackSeq atomic.Uint64

// NanoID is the default IDFunc.
func NanoID(prefix string) string {
	id, err := gonanoid.New()
	if err != nil {
		// crypto/rand failure; keep ids unique within the process anyway
		return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), fallbackSeq.Add(1))
	}
	return prefix + "-" + id
}

// SequentialIDs returns an IDFunc producing prefix-1, prefix-2, ... per
// prefix. Useful for deterministic output.
func SequentialIDs() IDFunc {
	counters := map[string]int{}
	return func(prefix string) string {
		counters[prefix]++
		return fmt.Sprintf("%s-%d", prefix, counters[prefix])
	}
}
