package xnode

import (
	"bytes"
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xnodehq/xnode/behaviortree"
)

// printer renders a tree with each node's domain name (the action/condition it invokes, or its composite/decorator
// kind, as set by Builder) in place of the node/tick function names DefaultPrinterInspector prints after its
// address/call-site columns; those columns are kept.
var printer = behaviortree.TreePrinter{
	Inspector: func(node behaviortree.Node, tick behaviortree.Tick) ([]interface{}, interface{}) {
		meta, value := behaviortree.DefaultPrinterInspector(node, tick)
		if name := node.Name(); name != "" {
			return meta, name
		}
		return meta, value
	},
	Formatter: behaviortree.DefaultPrinterFormatter,
}

// ControlPlane dispatches inbound command Envelopes against a LeafRegistry, TreeStore and Engine, per spec.md
// §4.6's command table. One ControlPlane is shared by every Session on a coordinator; Handle is its Session.handle
// callback.
type ControlPlane struct {
	registry *LeafRegistry
	trees    *TreeStore
	engine   *Engine
	logger   *logrus.Logger
}

// NewControlPlane constructs a ControlPlane wired to registry, trees and engine.
func NewControlPlane(registry *LeafRegistry, trees *TreeStore, engine *Engine, logger *logrus.Logger) *ControlPlane {
	return &ControlPlane{registry: registry, trees: trees, engine: engine, logger: logger}
}

// Handle dispatches one inbound request envelope for sessionID, returning the response to send and whether one
// should be sent at all. invoke_func is coordinator-to-worker only and is never dispatched here - an inbound
// envelope with that command is rejected with UnknownCommand, since a peer should only ever send it as a reply
// (handled upstream by Session.dispatch, never reaching Handle).
func (cp *ControlPlane) Handle(sessionID string, req Envelope) (Envelope, bool) {
	switch req.Command {
	case "register_action":
		return cp.register(sessionID, req.Name, ActionLeaf), true
	case "register_condition":
		return cp.register(sessionID, req.Name, ConditionLeaf), true
	case "create_tree":
		return cp.createTree(req.TreeID, req.TreeStructure), true
	case "update_tree":
		return cp.updateTree(req.TreeID, req.TreeStructure), true
	case "delete_tree":
		return cp.deleteTree(req.TreeID), true
	case "delete_all_tree":
		cp.trees.DeleteAll()
		return ok(), true
	case "run_tree":
		return cp.runTree(req.TreeID), true
	case "stop_tree":
		return cp.stopTree(req.TreeID), true
	case "get_actions":
		return Envelope{Status: "ok", Actions: cp.registry.List(ActionLeaf)}, true
	case "get_conditions":
		return Envelope{Status: "ok", Conditions: cp.registry.List(ConditionLeaf)}, true
	case "get_tree":
		return cp.getTree(req.TreeID), true
	case "print_tree":
		return cp.printTree(req.TreeID), true
	default:
		return withTag(fail(UnknownCommand, req.Command), UnknownCommand), true
	}
}

func (cp *ControlPlane) register(sessionID, name string, kind LeafKind) Envelope {
	if name == "" {
		return withTag(fail(SchemaError, "register requires name"), SchemaError)
	}
	if err := cp.registry.Register(name, kind, sessionID); err != nil {
		return withTag(fail(TagOf(err), name), TagOf(err))
	}
	return ok()
}

func (cp *ControlPlane) createTree(treeID string, structure *NodeSpec) Envelope {
	if treeID == "" || structure == nil {
		return withTag(fail(SchemaError, "create_tree requires tree_id and tree_structure"), SchemaError)
	}
	if _, err := cp.trees.Create(treeID, structure); err != nil {
		return withTag(fail(TagOf(err), treeID), TagOf(err))
	}
	return ok()
}

func (cp *ControlPlane) updateTree(treeID string, structure *NodeSpec) Envelope {
	if treeID == "" || structure == nil {
		return withTag(fail(SchemaError, "update_tree requires tree_id and tree_structure"), SchemaError)
	}
	if _, err := cp.trees.Update(treeID, structure); err != nil {
		return withTag(fail(TagOf(err), treeID), TagOf(err))
	}
	return ok()
}

func (cp *ControlPlane) deleteTree(treeID string) Envelope {
	if err := cp.trees.Delete(treeID); err != nil {
		return withTag(fail(TagOf(err), treeID), TagOf(err))
	}
	return ok()
}

// runTree reports the engine's outcome as a plain business result, never as a protocol error: per spec.md §7's
// "transient invocation failures propagate as Failure into the tree" policy, LeafUnavailable/RemoteError/Timeout/
// Cancelled are all "tick sees Failure" - the tree's own composite semantics already folded them into its final
// Status by the time Engine.RunTree returns. The only protocol error run_tree can still report is treeID itself
// being unknown, caught before the engine ever runs.
func (cp *ControlPlane) runTree(treeID string) Envelope {
	tree, err := cp.trees.Get(treeID)
	if err != nil {
		return withTag(fail(TagOf(err), treeID), TagOf(err))
	}
	result := cp.engine.RunTree(context.Background(), tree)
	return Envelope{Status: "ok", RunStatus: result.Status.String()}
}

func (cp *ControlPlane) stopTree(treeID string) Envelope {
	tree, err := cp.trees.Get(treeID)
	if err != nil {
		return withTag(fail(TagOf(err), treeID), TagOf(err))
	}
	tree.Stop()
	return ok()
}

func (cp *ControlPlane) getTree(treeID string) Envelope {
	tree, err := cp.trees.Get(treeID)
	if err != nil {
		return withTag(fail(TagOf(err), treeID), TagOf(err))
	}
	return Envelope{Status: "ok", Tree: tree.Spec}
}

// printTree renders the tree's built Node graph as a human-readable outline (node/tick addresses and call sites,
// then the domain name where Builder set one via WithName, else the node/tick function names) - a debug aid
// distinct from get_tree's machine-readable NodeSpec.
func (cp *ControlPlane) printTree(treeID string) Envelope {
	tree, err := cp.trees.Get(treeID)
	if err != nil {
		return withTag(fail(TagOf(err), treeID), TagOf(err))
	}
	var b bytes.Buffer
	if err := printer.Fprint(&b, tree.Root); err != nil {
		return Envelope{Status: "ok", Message: tree.Root.String()}
	}
	return Envelope{Status: "ok", Message: b.String()}
}

// withTag stamps an error tag onto an Envelope built by fail, so callers can distinguish error kinds without
// re-parsing Message.
func withTag(e Envelope, tag ErrorTag) Envelope {
	e.Error = string(tag)
	return e
}
