// Package token mints capability tokens and tracks which capability paths
// are currently live.
package token //nolint:revive // intentional: does not conflict at import path level

import (
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
)

// Generator mints a capability token.
type Generator func() string

// Generate returns a decimal rendering of a pseudo-random non-negative
// 31-bit integer.
//
// The source is math/rand/v2's process-seeded generator. Tokens are not
// secret and collisions are not detected: minting a token that is already
// live overwrites the earlier capability.
func Generate() string {
	return strconv.FormatInt(int64(rand.Int32N(math.MaxInt32)), 10)
}

// GenerateWide is like Generate but draws from the full uint64 range,
// making collisions between live capabilities practically impossible.
func GenerateWide() string {
	return strconv.FormatUint(rand.Uint64(), 10)
}

// Sequence returns a Generator that yields the given tokens in order and
// then repeats the last one. It is meant for tests that need to predict
// minted paths.
func Sequence(tokens ...string) Generator {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		if len(tokens) == 0 {
			return "0"
		}
		tok := tokens[i]
		if i < len(tokens)-1 {
			i++
		}
		return tok
	}
}
