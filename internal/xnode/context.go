package xnode

import (
	"sync"

	"github.com/xnodehq/xnode/behaviortree"
)

// Entry is one record in a Context: the last Result observed for a given leaf, and Seq, the leaf's position in
// first-insertion order (left unchanged by Update). No timestamp is recorded.
type Entry struct {
	LeafName string
	Result   Result
	Seq      uint64
}

// Context is a per-run log of leaf evaluations, keyed by leaf name with at most one entry per name, updated in
// place - the "one entry per leaf, updated in place" resolution of spec.md §9's context-semantics open question.
// Insertion order is preserved via Seq for auditability even though updates happen in place.
type Context struct {
	mu      sync.Mutex
	order   []string
	entries map[string]Entry
	next    uint64
}

// NewContext constructs an empty Context.
func NewContext() *Context {
	return &Context{entries: make(map[string]Entry)}
}

// Save inserts an entry for leafName if absent; a pre-existing entry is left untouched.
func (c *Context) Save(leafName string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[leafName]; ok {
		return
	}
	c.insertLocked(leafName, result)
}

// Update replaces the entry for leafName in place, inserting one if absent.
func (c *Context) Update(leafName string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[leafName]; ok {
		e.Result = result
		c.entries[leafName] = e
		return
	}
	c.insertLocked(leafName, result)
}

func (c *Context) insertLocked(leafName string, result Result) {
	c.next++
	c.entries[leafName] = Entry{LeafName: leafName, Result: result, Seq: c.next}
	c.order = append(c.order, leafName)
}

// Remove deletes the entry for leafName, if any.
func (c *Context) Remove(leafName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[leafName]; !ok {
		return
	}
	delete(c.entries, leafName)
	for i, name := range c.order {
		if name == leafName {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Query returns entries matching predicate, in insertion order; a nil predicate returns every entry.
func (c *Context) Query(predicate func(Entry) bool) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.order))
	for _, name := range c.order {
		e := c.entries[name]
		if predicate == nil || predicate(e) {
			out = append(out, e)
		}
	}
	return out
}

// HasCompleted reports whether leafName has an entry recording a Success status.
func (c *Context) HasCompleted(leafName string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[leafName]
	return ok && e.Result.Status == behaviortree.Success
}

// Clear empties the log.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.entries = make(map[string]Entry)
}
