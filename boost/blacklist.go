package boost

import (
	"sync"

	"github.com/synaptiq/tagrank/core"
)

// Blacklist is a normalized set of tags excluded from registration.
type Blacklist struct {
	mu   sync.RWMutex
	tags map[string]bool
}

// NewBlacklist creates a blacklist seeded with the given tags.
func NewBlacklist(tags ...string) *Blacklist {
	b := &Blacklist{tags: make(map[string]bool, len(tags))}
	b.Add(tags...)
	return b
}

// Add inserts tags after normalization. Empty tags are ignored.
func (b *Blacklist) Add(tags ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tag := range tags {
		if normalized := core.NormalizeTag(tag); normalized != "" {
			b.tags[normalized] = true
		}
	}
}

// Remove deletes tags from the set.
func (b *Blacklist) Remove(tags ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tag := range tags {
		delete(b.tags, core.NormalizeTag(tag))
	}
}

// Contains reports whether the normalized tag is blacklisted.
func (b *Blacklist) Contains(tag string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tags[core.NormalizeTag(tag)]
}

// Filter returns tags with blacklisted entries removed.
func (b *Blacklist) Filter(tags []string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !b.tags[core.NormalizeTag(tag)] {
			out = append(out, tag)
		}
	}
	return out
}

// Len returns the number of blacklisted tags.
func (b *Blacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tags)
}
