package server

import (
	"sync"

	"github.com/SUP3RMASS1VE/parakeet-web/transcript"
)

// sessionCache holds the most recent transcripts so the CSV export and
// transcript re-fetch work after the page got its JSON response. Old
// entries fall out as new clips are transcribed; nothing survives a
// restart.
type sessionCache struct {
	mu    sync.Mutex
	max   int
	order []string
	byID  map[string]*transcript.Transcript
}

func newSessionCache(max int) *sessionCache {
	return &sessionCache{
		max:  max,
		byID: make(map[string]*transcript.Transcript),
	}
}

func (c *sessionCache) Put(t *transcript.Transcript) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[t.ID]; !ok {
		c.order = append(c.order, t.ID)
	}
	c.byID[t.ID] = t

	for len(c.order) > c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.byID, oldest)
	}
}

func (c *sessionCache) Get(id string) (*transcript.Transcript, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.byID[id]
	return t, ok
}

func (c *sessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.order)
}
