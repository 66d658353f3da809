package xnode

import "sync"

// LeafKind distinguishes an Action leaf from a Condition leaf.
type LeafKind string

const (
	ActionLeaf    LeafKind = "action"
	ConditionLeaf LeafKind = "condition"
)

// LeafRecord is the registry's entry for one registered leaf name.
type LeafRecord struct {
	Name      string
	Kind      LeafKind
	SessionID string
}

// LeafRegistry is the single, process-wide, global namespace of registered leaf names, per spec.md §9's "leaf
// name scoping... this spec makes name uniqueness global across the coordinator" resolution.
type LeafRegistry struct {
	mu      sync.RWMutex
	records map[string]LeafRecord
	owned   map[string]map[string]struct{} // sessionID -> set of leaf names
}

// NewLeafRegistry constructs an empty LeafRegistry.
func NewLeafRegistry() *LeafRegistry {
	return &LeafRegistry{
		records: make(map[string]LeafRecord),
		owned:   make(map[string]map[string]struct{}),
	}
}

// Register adds name under kind, owned by sessionID. Returns DuplicateLeaf if name is already registered by any
// session (including the same one).
func (r *LeafRegistry) Register(name string, kind LeafKind, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[name]; ok {
		return NewError(DuplicateLeaf, name)
	}
	r.records[name] = LeafRecord{Name: name, Kind: kind, SessionID: sessionID}
	set, ok := r.owned[sessionID]
	if !ok {
		set = make(map[string]struct{})
		r.owned[sessionID] = set
	}
	set[name] = struct{}{}
	return nil
}

// Resolve returns the LeafRecord for name, or UnknownLeaf if it isn't registered.
func (r *LeafRegistry) Resolve(name string) (LeafRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[name]
	if !ok {
		return LeafRecord{}, NewError(UnknownLeaf, name)
	}
	return rec, nil
}

// List enumerates the registered names of the given kind, in no particular order.
func (r *LeafRegistry) List(kind LeafKind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for name, rec := range r.records {
		if rec.Kind == kind {
			out = append(out, name)
		}
	}
	return out
}

// RemoveSession deletes every leaf name owned by sessionID, as happens on session teardown.
func (r *LeafRegistry) RemoveSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range r.owned[sessionID] {
		delete(r.records, name)
	}
	delete(r.owned, sessionID)
}
