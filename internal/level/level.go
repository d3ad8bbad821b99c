// Package level generates the obstacle sequence of a course and lays out
// the static geometry around it.
package level

import (
	"math/rand"
	"sync"

	"github.com/zeebo/xxh3"
)

// Kind tags the motion pattern of one obstacle segment.
type Kind string

const (
	KindSpinner Kind = "spinner"
	KindLimbo   Kind = "limbo"
	KindAxe     Kind = "axe"
)

// DefaultKinds is the built-in sampling set, in sampling order.
var DefaultKinds = []Kind{KindSpinner, KindAxe, KindLimbo}

// Level is an immutable obstacle sequence for one (count, seed) pair.
type Level struct {
	Count int
	Seed  int64
	Kinds []Kind
}

// Generate draws count tags uniformly from kinds using a source seeded with
// seed, so identical arguments give identical sequences.
func Generate(count int, seed int64, kinds []Kind) []Kind {
	if count < 0 {
		count = 0
	}
	out := make([]Kind, 0, count)
	if len(kinds) == 0 {
		return out
	}
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < count; i++ {
		out = append(out, kinds[r.Intn(len(kinds))])
	}
	return out
}

// SeedFromPhrase turns a shareable seed phrase ("sunday-cup") into a seed.
func SeedFromPhrase(phrase string) int64 {
	return int64(xxh3.HashString(phrase) >> 1)
}

type cacheKey struct {
	count int
	seed  int64
}

// Cache holds the level of the most recent (count, seed) pair and only
// regenerates when either changes.
type Cache struct {
	mu          sync.Mutex
	kinds       func() []Kind
	key         cacheKey
	level       *Level
	generations int
}

// NewCache creates a cache sampling from the kinds returned by kinds at
// generation time.
func NewCache(kinds func() []Kind) *Cache {
	return &Cache{kinds: kinds}
}

// Get returns the level for (count, seed), generating it on a key change.
func (c *Cache) Get(count int, seed int64) *Level {
	if count < 0 {
		count = 0
	}
	key := cacheKey{count: count, seed: seed}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.level != nil && c.key == key {
		return c.level
	}
	c.key = key
	c.level = &Level{Count: count, Seed: seed, Kinds: Generate(count, seed, c.kinds())}
	c.generations++
	return c.level
}

// Generations counts how many times Get actually generated a level.
func (c *Cache) Generations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations
}
