package xnode

import (
	"context"
	"sync"

	"github.com/xnodehq/xnode/behaviortree"
)

// RunState is the lifecycle state of a Tree's most recent run.
type RunState string

const (
	Idle        RunState = "idle"
	RunningST   RunState = "running"
	CancelledST RunState = "cancelled"
)

// Tree is one stored, runnable behavior tree: its declarative NodeSpec (kept for get_tree's round trip), the built
// Node graph, its leaf-evaluation History, the Timeout-decorator scopes threaded through it at build time, and the
// cancellation plumbing a run_tree/stop_tree pair needs.
type Tree struct {
	ID      string
	Spec    *NodeSpec
	Root    behaviortree.Node
	History *Context
	Scopes  []*behaviortree.Context

	mu        sync.Mutex
	state     RunState
	runCtx    context.Context
	runCancel context.CancelFunc
}

// RootCtx returns the tree's current run context, or context.Background() if no run is in flight - used as the
// rootCtxFn passed to Builder.Build for leaves not nested under a Timeout decorator.
func (t *Tree) RootCtx() context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.runCtx != nil {
		return t.runCtx
	}
	return context.Background()
}

// beginRun creates a fresh cancellable run context derived from parent, marks the tree Running, and returns a
// context plus a function that marks the run finished (Idle, unless the tree was stopped in the meantime in which
// case it stays Cancelled until the next beginRun).
func (t *Tree) beginRun(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	t.mu.Lock()
	t.runCtx = ctx
	t.runCancel = cancel
	t.state = RunningST
	t.mu.Unlock()
	return ctx, func() {
		t.mu.Lock()
		if t.state == RunningST {
			t.state = Idle
		}
		t.runCtx = nil
		t.runCancel = nil
		t.mu.Unlock()
		cancel()
	}
}

// Stop cancels the tree's in-flight run, if any, per stop_tree. Safe to call whether or not a run is active.
func (t *Tree) Stop() {
	t.mu.Lock()
	cancel := t.runCancel
	t.state = CancelledST
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// State reports the tree's current RunState.
func (t *Tree) State() RunState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// TreeStore owns the treeId -> Tree mapping, per spec.md §3/§4.6.
type TreeStore struct {
	mu      sync.RWMutex
	trees   map[string]*Tree
	builder *Builder
}

// NewTreeStore constructs an empty TreeStore that builds trees with builder.
func NewTreeStore(builder *Builder) *TreeStore {
	return &TreeStore{trees: make(map[string]*Tree), builder: builder}
}

// Create builds spec and stores it under treeId. Returns DuplicateTree if treeId is already in use.
func (s *TreeStore) Create(treeID string, spec *NodeSpec) (*Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trees[treeID]; ok {
		return nil, NewError(DuplicateTree, treeID)
	}
	history := NewContext()
	tree := &Tree{ID: treeID, state: Idle}
	built, err := s.builder.Build(spec, history, tree.RootCtx)
	if err != nil {
		return nil, err
	}
	tree.Spec = spec
	tree.Root = built.Root
	tree.History = history
	tree.Scopes = built.Scopes
	s.trees[treeID] = tree
	return tree, nil
}

// Update rebuilds treeId's structure in place. Returns UnknownTree if it doesn't exist.
func (s *TreeStore) Update(treeID string, spec *NodeSpec) (*Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.trees[treeID]
	if !ok {
		return nil, NewError(UnknownTree, treeID)
	}
	history := NewContext()
	built, err := s.builder.Build(spec, history, existing.RootCtx)
	if err != nil {
		return nil, err
	}
	existing.Spec = spec
	existing.Root = built.Root
	existing.History = history
	existing.Scopes = built.Scopes
	return existing, nil
}

// Delete removes treeId. Returns UnknownTree if it doesn't exist.
func (s *TreeStore) Delete(treeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trees[treeID]; !ok {
		return NewError(UnknownTree, treeID)
	}
	delete(s.trees, treeID)
	return nil
}

// DeleteAll removes every stored tree.
func (s *TreeStore) DeleteAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees = make(map[string]*Tree)
}

// Get returns the stored Tree for treeId, or UnknownTree.
func (s *TreeStore) Get(treeID string) (*Tree, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, ok := s.trees[treeID]
	if !ok {
		return nil, NewError(UnknownTree, treeID)
	}
	return tree, nil
}
