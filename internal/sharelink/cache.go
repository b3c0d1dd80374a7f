// Package sharelink keeps the most recently shared sentences behind short ids
// so links carry an opaque reference instead of raw text.
package sharelink

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultCapacity is the number of sentences kept before the oldest is evicted
const DefaultCapacity = 100

const (
	idLayout      = "20060102150405"
	suffixSpace   = 10000
	maxIDAttempts = 16
)

// ErrIDSpaceExhausted is returned when no free id could be drawn for the current second
var ErrIDSpaceExhausted = errors.New("no free sentence id available")

// Cache is a fixed-capacity FIFO map from sentence id to sentence.
// Eviction follows insertion order; lookups do not refresh entries.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
	ring    []string
	next    int
	size    int
	now     func() time.Time
	suffix  func() int
	logger  *zap.Logger
}

// Option customises a Cache
type Option func(*Cache)

// WithClock overrides the time source used for ids
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithSuffixSource overrides the random id suffix source; values are reduced into [0, 10000)
func WithSuffixSource(suffix func() int) Option {
	return func(c *Cache) { c.suffix = suffix }
}

// New creates a cache holding at most capacity sentences
func New(capacity int, logger *zap.Logger, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		entries: make(map[string]string, capacity),
		ring:    make([]string, capacity),
		now:     time.Now,
		suffix:  func() int { return rand.Intn(suffixSpace) },
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewID formats a sentence id: UTC timestamp to the second followed by a
// zero-padded four digit suffix
func NewID(at time.Time, suffix int) string {
	return fmt.Sprintf("%s%04d", at.UTC().Format(idLayout), (suffix%suffixSpace+suffixSpace)%suffixSpace)
}

// Store saves text under a fresh id and evicts the oldest entry when full
func (c *Cache) Store(text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.freeID()
	if err != nil {
		return "", err
	}

	if c.size == len(c.ring) {
		evicted := c.ring[c.next]
		delete(c.entries, evicted)
		c.logger.Debug("Evicted shared sentence", zap.String("id", evicted))
	} else {
		c.size++
	}
	c.ring[c.next] = id
	c.next = (c.next + 1) % len(c.ring)
	c.entries[id] = text

	return id, nil
}

// freeID draws ids until one is not live; callers hold mu
func (c *Cache) freeID() (string, error) {
	at := c.now()
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := NewID(at, c.suffix())
		if _, taken := c.entries[id]; !taken {
			return id, nil
		}
		c.logger.Debug("Sentence id collision", zap.String("id", id), zap.Int("attempt", attempt))
	}
	return "", ErrIDSpaceExhausted
}

// Resolve returns the sentence stored under id or "" when it is unknown or evicted
func (c *Cache) Resolve(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id]
}

// Len reports how many sentences are currently held
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Capacity reports the eviction threshold
func (c *Cache) Capacity() int {
	return len(c.ring)
}

// BuildURL renders the link handed back to clients
func BuildURL(host, id string) string {
	return fmt.Sprintf("http://%s?auto_sentence_id=%s", host, url.QueryEscape(id))
}
