package xnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTreeStore(t *testing.T, invoker Invoker) (*TreeStore, *LeafRegistry) {
	t.Helper()
	reg := NewLeafRegistry()
	return NewTreeStore(NewBuilder(reg, invoker)), reg
}

func actionSpec(name string) *NodeSpec {
	return &NodeSpec{Type: NodeTypeAction, Action: name}
}

func TestTreeStore_createAndGet(t *testing.T) {
	store, reg := newTestTreeStore(t, &fakeInvoker{})
	require.NoError(t, reg.Register("a", ActionLeaf, "s1"))

	tree, err := store.Create("t1", actionSpec("a"))
	require.NoError(t, err)
	assert.Equal(t, "t1", tree.ID)
	assert.Equal(t, Idle, tree.State())

	got, err := store.Get("t1")
	require.NoError(t, err)
	assert.Same(t, tree, got)
}

func TestTreeStore_createDuplicateRejected(t *testing.T) {
	store, reg := newTestTreeStore(t, &fakeInvoker{})
	require.NoError(t, reg.Register("a", ActionLeaf, "s1"))

	_, err := store.Create("t1", actionSpec("a"))
	require.NoError(t, err)

	_, err = store.Create("t1", actionSpec("a"))
	assert.Equal(t, DuplicateTree, TagOf(err))
}

func TestTreeStore_createUnknownLeafDoesNotStore(t *testing.T) {
	store, _ := newTestTreeStore(t, &fakeInvoker{})

	_, err := store.Create("t1", actionSpec("missing"))
	assert.Equal(t, UnknownLeaf, TagOf(err))

	_, err = store.Get("t1")
	assert.Equal(t, UnknownTree, TagOf(err))
}

func TestTreeStore_getUnknown(t *testing.T) {
	store, _ := newTestTreeStore(t, &fakeInvoker{})
	_, err := store.Get("nope")
	assert.Equal(t, UnknownTree, TagOf(err))
}

func TestTreeStore_updateReplacesStructure(t *testing.T) {
	store, reg := newTestTreeStore(t, &fakeInvoker{})
	require.NoError(t, reg.Register("a", ActionLeaf, "s1"))
	require.NoError(t, reg.Register("b", ActionLeaf, "s1"))

	_, err := store.Create("t1", actionSpec("a"))
	require.NoError(t, err)

	updated, err := store.Update("t1", actionSpec("b"))
	require.NoError(t, err)
	assert.Equal(t, actionSpec("b"), updated.Spec)
}

func TestTreeStore_updateUnknown(t *testing.T) {
	store, _ := newTestTreeStore(t, &fakeInvoker{})
	_, err := store.Update("nope", actionSpec("a"))
	assert.Equal(t, UnknownTree, TagOf(err))
}

func TestTreeStore_deleteAndDeleteAll(t *testing.T) {
	store, reg := newTestTreeStore(t, &fakeInvoker{})
	require.NoError(t, reg.Register("a", ActionLeaf, "s1"))

	_, err := store.Create("t1", actionSpec("a"))
	require.NoError(t, err)
	_, err = store.Create("t2", actionSpec("a"))
	require.NoError(t, err)

	require.NoError(t, store.Delete("t1"))
	_, err = store.Get("t1")
	assert.Equal(t, UnknownTree, TagOf(err))

	store.DeleteAll()
	_, err = store.Get("t2")
	assert.Equal(t, UnknownTree, TagOf(err))
}

func TestTreeStore_deleteUnknown(t *testing.T) {
	store, _ := newTestTreeStore(t, &fakeInvoker{})
	assert.Equal(t, UnknownTree, TagOf(store.Delete("nope")))
}

func TestTree_stopCancelsInFlightRun(t *testing.T) {
	store, reg := newTestTreeStore(t, &fakeInvoker{})
	require.NoError(t, reg.Register("a", ActionLeaf, "s1"))
	tree, err := store.Create("t1", actionSpec("a"))
	require.NoError(t, err)

	ctx, finish := tree.beginRun(rootCtx())
	assert.Equal(t, RunningST, tree.State())

	tree.Stop()
	assert.Equal(t, CancelledST, tree.State())
	assert.Error(t, ctx.Err())

	finish()
	assert.Equal(t, CancelledST, tree.State(), "a run finishing after Stop must not clobber Cancelled back to Idle")
}

func TestTree_beginRunFinishReturnsToIdle(t *testing.T) {
	store, reg := newTestTreeStore(t, &fakeInvoker{})
	require.NoError(t, reg.Register("a", ActionLeaf, "s1"))
	tree, err := store.Create("t1", actionSpec("a"))
	require.NoError(t, err)

	_, finish := tree.beginRun(rootCtx())
	assert.Equal(t, RunningST, tree.State())
	finish()
	assert.Equal(t, Idle, tree.State())
}
