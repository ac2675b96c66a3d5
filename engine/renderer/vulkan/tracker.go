package vulkan

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spaghettifunk/vkforge/engine/core"
)

// LiveResource is one handle a Tracker still considers owned.
type LiveResource struct {
	ID      uuid.UUID
	Kind    string
	Handle  string
	Created time.Time

	seq uint64
}

// Tracker keeps a registry of owned handles so that leaks can be reported
// before the device goes away.
type Tracker struct {
	mu   sync.Mutex
	seq  uint64
	live map[uuid.UUID]LiveResource
}

func NewTracker() *Tracker {
	return &Tracker{live: make(map[uuid.UUID]LiveResource)}
}

func (t *Tracker) track(kind string, handle any) uuid.UUID {
	id := uuid.New()
	t.mu.Lock()
	t.seq++
	t.live[id] = LiveResource{
		ID:      id,
		Kind:    kind,
		Handle:  handleString(handle),
		Created: time.Now(),
		seq:     t.seq,
	}
	t.mu.Unlock()
	return id
}

func (t *Tracker) untrack(id uuid.UUID) {
	t.mu.Lock()
	delete(t.live, id)
	t.mu.Unlock()
}

// Live returns the number of handles still owned.
func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Leaks lists the handles still owned, oldest first.
func (t *Tracker) Leaks() []LiveResource {
	t.mu.Lock()
	out := make([]LiveResource, 0, len(t.live))
	for _, r := range t.live {
		out = append(out, r)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].seq < out[j].seq
	})
	return out
}

// Report logs every leaked handle and returns how many there were.
func (t *Tracker) Report() int {
	leaks := t.Leaks()
	for _, r := range leaks {
		core.LogWarn("leaked %s %s (id %s)", r.Kind, r.Handle, r.ID)
	}
	return len(leaks)
}
