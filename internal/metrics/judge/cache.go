package judge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Cache stores raw judge-model completions keyed on (prompt, judge model),
// so identical judge prompts within one run are charged once. Both the
// metric dispatcher and the custom scorer runner consult it; since judge
// calls run at temperature 0, replaying the cached completion is
// equivalent to re-asking the model.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewCache creates an empty judge response cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

func cacheKey(prompt, judgeModel string) string {
	h := sha256.New()
	h.Write([]byte(fmt.Sprintf("%d:%s|%d:%s", len(prompt), prompt, len(judgeModel), judgeModel)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves the cached raw completion for prompt/judgeModel.
func (c *Cache) Get(prompt, judgeModel string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.entries[cacheKey(prompt, judgeModel)]
	return raw, ok
}

// Set stores a raw completion for prompt/judgeModel.
func (c *Cache) Set(prompt, judgeModel, raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(prompt, judgeModel)] = raw
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
