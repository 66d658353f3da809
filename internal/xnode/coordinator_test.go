package xnode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedWorker is a minimal synchronous dispatcher stand-in driving one end of a fakeChannel pair: it registers
// a fixed set of leaves against the coordinator and then answers each invoke_func in turn with a scripted bool
// (answer), or receives it without replying (recvInvoke) to model a vanished or silent worker.
type scriptedWorker struct {
	t       *testing.T
	channel *fakeChannel
}

func dialWorker(t *testing.T, coordinator *Coordinator) *scriptedWorker {
	t.Helper()
	coordSide, workerSide := newFakeChannelPair()
	coordinator.OnAccept(coordSide)
	return &scriptedWorker{t: t, channel: workerSide}
}

func (w *scriptedWorker) register(command, name string) {
	w.t.Helper()
	frame, err := Encode(Envelope{Command: command, Name: name})
	require.NoError(w.t, err)
	require.NoError(w.t, w.channel.Send(frame))
	reply, err := w.channel.Recv()
	require.NoError(w.t, err)
	env, err := Decode(reply)
	require.NoError(w.t, err)
	require.Equal(w.t, "ok", env.Status)
}

// answer blocks for the next invoke_func, requires it to be addressed to name, and replies with result.
func (w *scriptedWorker) answer(name string, result bool) {
	w.t.Helper()
	frame, err := w.channel.Recv()
	require.NoError(w.t, err)
	req, err := Decode(frame)
	require.NoError(w.t, err)
	require.Equal(w.t, "invoke_func", req.Command)
	require.Equal(w.t, name, req.Name)
	reply, err := Encode(Envelope{RequestID: req.RequestID, Result: &result})
	require.NoError(w.t, err)
	require.NoError(w.t, w.channel.Send(reply))
}

// recvInvoke blocks for the next invoke_func frame without answering it, used for scenarios where the worker
// disconnects or times out instead of replying.
func (w *scriptedWorker) recvInvoke() Envelope {
	w.t.Helper()
	frame, err := w.channel.Recv()
	require.NoError(w.t, err)
	req, err := Decode(frame)
	require.NoError(w.t, err)
	require.Equal(w.t, "invoke_func", req.Command)
	return req
}

func newTestCoordinator() *Coordinator {
	return NewCoordinator(50*time.Millisecond, time.Millisecond, newTestLogger())
}

func createTree(t *testing.T, client *scriptedWorker, treeID string, structure *NodeSpec) {
	t.Helper()
	frame, err := Encode(Envelope{Command: "create_tree", TreeID: treeID, TreeStructure: structure})
	require.NoError(t, err)
	require.NoError(t, client.channel.Send(frame))
	reply, err := client.channel.Recv()
	require.NoError(t, err)
	env, err := Decode(reply)
	require.NoError(t, err)
	require.Equal(t, "ok", env.Status)
}

func runTree(t *testing.T, client *scriptedWorker, treeID string) Envelope {
	t.Helper()
	frame, err := Encode(Envelope{Command: "run_tree", TreeID: treeID})
	require.NoError(t, err)
	require.NoError(t, client.channel.Send(frame))
	reply, err := client.channel.Recv()
	require.NoError(t, err)
	env, err := Decode(reply)
	require.NoError(t, err)
	return env
}

// Scenario 1: single action success.
func TestScenario_singleActionSuccess(t *testing.T) {
	coordinator := newTestCoordinator()
	worker := dialWorker(t, coordinator)
	worker.register("register_action", "greet")

	client := dialWorker(t, coordinator)
	createTree(t, client, "t1", &NodeSpec{Type: NodeTypeAction, Action: "greet"})

	done := make(chan Envelope, 1)
	go func() { done <- runTree(t, client, "t1") }()
	worker.answer("greet", true)

	env := <-done
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "success", env.RunStatus)
}

// Scenario 2: sequence fail-fast - c is never invoked once b fails.
func TestScenario_sequenceFailFast(t *testing.T) {
	coordinator := newTestCoordinator()
	worker := dialWorker(t, coordinator)
	worker.register("register_action", "a")
	worker.register("register_action", "b")
	worker.register("register_action", "c")

	client := dialWorker(t, coordinator)
	createTree(t, client, "t1", &NodeSpec{
		Type: NodeTypeSequence,
		Children: []*NodeSpec{
			{Type: NodeTypeAction, Action: "a"},
			{Type: NodeTypeAction, Action: "b"},
			{Type: NodeTypeAction, Action: "c"},
		},
	})

	done := make(chan Envelope, 1)
	go func() { done <- runTree(t, client, "t1") }()
	worker.answer("a", true)
	worker.answer("b", false)

	env := <-done
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "failure", env.RunStatus)
}

// Scenario 3: parallel threshold - success after the second success, regardless of the remaining children.
func TestScenario_parallelThreshold(t *testing.T) {
	coordinator := newTestCoordinator()
	worker := dialWorker(t, coordinator)
	for _, name := range []string{"a", "b", "c", "d"} {
		worker.register("register_action", name)
	}

	client := dialWorker(t, coordinator)
	createTree(t, client, "t1", &NodeSpec{
		Type:             NodeTypeParallel,
		SuccessThreshold: 2,
		Children: []*NodeSpec{
			{Type: NodeTypeAction, Action: "a"},
			{Type: NodeTypeAction, Action: "b"},
			{Type: NodeTypeAction, Action: "c"},
			{Type: NodeTypeAction, Action: "d"},
		},
	})

	done := make(chan Envelope, 1)
	go func() { done <- runTree(t, client, "t1") }()
	worker.answer("a", true)
	worker.answer("b", true)
	worker.answer("c", false)
	worker.answer("d", false)

	env := <-done
	assert.Equal(t, "success", env.RunStatus)
}

// Scenario 4: remote disconnect mid-tick - the worker vanishes before replying to "slow", so the invocation
// resolves as LeafUnavailable and the registry no longer lists it afterward.
func TestScenario_remoteDisconnectMidTick(t *testing.T) {
	coordinator := newTestCoordinator()
	worker := dialWorker(t, coordinator)
	worker.register("register_action", "slow")

	client := dialWorker(t, coordinator)
	createTree(t, client, "t1", &NodeSpec{Type: NodeTypeAction, Action: "slow"})

	done := make(chan Envelope, 1)
	go func() { done <- runTree(t, client, "t1") }()
	worker.recvInvoke()
	require.NoError(t, worker.channel.Close())

	env := <-done
	assert.Equal(t, "ok", env.Status, "a plain Failure from LeafUnavailable is not a protocol error")
	assert.Equal(t, "failure", env.RunStatus)

	assert.Eventually(t, func() bool {
		return len(coordinator.Registry.List(ActionLeaf)) == 0
	}, time.Second, time.Millisecond)
}

// Scenario 5: timeout decorator - the worker acknowledges registration but never answers the invoke; the tree
// must fail once the decorator's deadline elapses, and the worker's eventual late reply is dropped.
func TestScenario_timeoutDecorator(t *testing.T) {
	coordinator := newTestCoordinator()
	worker := dialWorker(t, coordinator)
	worker.register("register_action", "never_replies")

	client := dialWorker(t, coordinator)
	createTree(t, client, "t1", &NodeSpec{
		Type:      NodeTypeTimeout,
		TimeoutMS: 50,
		Child:     &NodeSpec{Type: NodeTypeAction, Action: "never_replies"},
	})

	start := time.Now()
	done := make(chan Envelope, 1)
	go func() { done <- runTree(t, client, "t1") }()
	req := worker.recvInvoke()

	env := <-done
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "failure", env.RunStatus)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	// the late reply must be dropped, not crash the worker's send
	result := true
	reply, err := Encode(Envelope{RequestID: req.RequestID, Result: &result})
	require.NoError(t, err)
	assert.NoError(t, worker.channel.Send(reply))
}

// Scenario 6: repeat with failure - flaky returns true, false, true; only the first two invocations occur.
func TestScenario_repeatWithFailure(t *testing.T) {
	coordinator := newTestCoordinator()
	worker := dialWorker(t, coordinator)
	worker.register("register_action", "flaky")

	client := dialWorker(t, coordinator)
	createTree(t, client, "t1", &NodeSpec{Type: NodeTypeRepeat, N: 3, Child: &NodeSpec{Type: NodeTypeAction, Action: "flaky"}})

	done := make(chan Envelope, 1)
	go func() { done <- runTree(t, client, "t1") }()
	worker.answer("flaky", true)
	worker.answer("flaky", false)

	env := <-done
	assert.Equal(t, "failure", env.RunStatus)
}
