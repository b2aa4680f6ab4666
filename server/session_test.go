package server

import (
	"strconv"
	"testing"

	"github.com/SUP3RMASS1VE/parakeet-web/transcript"
)

func TestSessionCacheEviction(t *testing.T) {
	c := newSessionCache(3)

	for i := 0; i < 5; i++ {
		c.Put(&transcript.Transcript{ID: strconv.Itoa(i)})
	}

	if c.Len() != 3 {
		t.Fatalf("cache holds %d entries, want 3", c.Len())
	}

	if _, ok := c.Get("0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("1"); ok {
		t.Error("second-oldest entry should have been evicted")
	}
	for _, id := range []string{"2", "3", "4"} {
		if _, ok := c.Get(id); !ok {
			t.Errorf("entry %s missing", id)
		}
	}
}

func TestSessionCachePutSameID(t *testing.T) {
	c := newSessionCache(2)

	c.Put(&transcript.Transcript{ID: "a", Text: "one"})
	c.Put(&transcript.Transcript{ID: "a", Text: "two"})

	if c.Len() != 1 {
		t.Fatalf("cache holds %d entries, want 1", c.Len())
	}
	got, _ := c.Get("a")
	if got.Text != "two" {
		t.Errorf("got %q, want newest value", got.Text)
	}
}
