package cache

import (
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/rs/zerolog/log"

	"github.com/domino14/freecell/solver"
)

const DefaultSize = 64

type solveFunc func() (solver.Scorecard, error)

// Solutions remembers recent solve results by position encoding, so that
// asking for a hint twice from the same position only searches once. The
// key is the full encoding rather than the canonical one because the cached
// moves name concrete slots.
type Solutions struct {
	sync.Mutex
	lru *simplelru.LRU
}

func NewSolutions(size int) *Solutions {
	if size <= 0 {
		size = DefaultSize
	}
	// NewLRU only fails on a non-positive size.
	l, _ := simplelru.NewLRU(size, nil)
	return &Solutions{lru: l}
}

func (c *Solutions) Get(key string) (solver.Scorecard, bool) {
	c.Lock()
	defer c.Unlock()
	obj, ok := c.lru.Get(key)
	if !ok {
		return solver.Scorecard{}, false
	}
	return obj.(solver.Scorecard), true
}

func (c *Solutions) Add(key string, sc solver.Scorecard) {
	c.Lock()
	defer c.Unlock()
	c.lru.Add(key, sc)
}

func (c *Solutions) Len() int {
	c.Lock()
	defer c.Unlock()
	return c.lru.Len()
}

// Load returns the cached result for key, or calls solve and caches what it
// returns. Failed solves are not cached. The lock is not held while solving.
func (c *Solutions) Load(key string, solve solveFunc) (solver.Scorecard, error) {
	if sc, ok := c.Get(key); ok {
		log.Debug().Str("key", key).Msg("getting solution from cache")
		return sc, nil
	}
	log.Debug().Str("key", key).Msg("loading solution into cache")
	sc, err := solve()
	if err != nil {
		return sc, err
	}
	c.Add(key, sc)
	return sc, nil
}
