package moderate

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tinyland-inc/slacksweep/pkg/event"
	"github.com/tinyland-inc/slacksweep/pkg/platform"
)

// EditTrackingStore remembers which original messages carried link
// attachments. Presence is the whole signal: an edit event is only worth
// re-checking when its identity was marked. Entries age out via LRU eviction
// rather than explicit deletes.
type EditTrackingStore struct {
	cache *lru.Cache[event.MessageIdentity, struct{}]
}

func NewEditTrackingStore(size int) (*EditTrackingStore, error) {
	c, err := lru.New[event.MessageIdentity, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &EditTrackingStore{cache: c}, nil
}

func (s *EditTrackingStore) Mark(id event.MessageIdentity) {
	s.cache.Add(id, struct{}{})
}

func (s *EditTrackingStore) WasMarked(id event.MessageIdentity) bool {
	return s.cache.Contains(id)
}

func (s *EditTrackingStore) Len() int {
	return s.cache.Len()
}

// ProfileCache caches user profile snippets for the impersonated thread
// replies. Purge is called from the maintenance schedule so display-name
// changes eventually propagate.
type ProfileCache struct {
	cache *lru.Cache[string, platform.Profile]
}

func NewProfileCache(size int) (*ProfileCache, error) {
	c, err := lru.New[string, platform.Profile](size)
	if err != nil {
		return nil, err
	}
	return &ProfileCache{cache: c}, nil
}

func (c *ProfileCache) Get(userID string) (platform.Profile, bool) {
	return c.cache.Get(userID)
}

func (c *ProfileCache) Put(userID string, p platform.Profile) {
	c.cache.Add(userID, p)
}

func (c *ProfileCache) Purge() {
	c.cache.Purge()
}

func (c *ProfileCache) Len() int {
	return c.cache.Len()
}
